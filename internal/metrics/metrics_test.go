package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))
	RecordHTTPRequest("GET", "/api/tags/", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordMembershipOutcome(t *testing.T) {
	ok := MembershipChanges.WithLabelValues("favorite", "add", "ok")
	conflict := MembershipChanges.WithLabelValues("favorite", "add", "conflict")
	okBefore, conflictBefore := testutil.ToFloat64(ok), testutil.ToFloat64(conflict)

	RecordMembership("favorite", "add", nil)
	RecordMembership("favorite", "add", errors.New("dup"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, conflictBefore+1, testutil.ToFloat64(conflict))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(HTTPActiveRequests))
}
