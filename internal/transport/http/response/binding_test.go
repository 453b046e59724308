package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=150,username"`
}

func bind(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	require.NoError(t, RegisterValidators())
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signup
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
	}

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestBindingErrorUsesJSONFieldNames(t *testing.T) {
	rec, body := bind(t, `{"email":"nope","username":"bad name!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"Enter a valid email address."}, body["email"])
	assert.Equal(t, []any{"Enter a valid username."}, body["username"])
}

func TestBindingErrorRequired(t *testing.T) {
	_, body := bind(t, `{}`)
	assert.Equal(t, []any{"This field is required."}, body["email"])
	assert.Equal(t, []any{"This field is required."}, body["username"])
}

func TestBindingErrorMalformedJSON(t *testing.T) {
	rec, body := bind(t, `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body, "detail")
}

func TestBindingAcceptsValid(t *testing.T) {
	rec, _ := bind(t, `{"email":"a@b.co","username":"a.b@c+d-e_f"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
