package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 6}},
		{"page=3&limit=10", Params{Page: 3, Limit: 10}},
		{"page=0&limit=-1", Params{Page: 1, Limit: 6}},
		{"page=x&limit=1000", Params{Page: 1, Limit: MaxLimit}},
	}
	for _, tc := range cases {
		q, err := url.ParseQuery(tc.query)
		require.NoError(t, err)
		assert.Equal(t, tc.want, Parse(q, 6), tc.query)
	}
	assert.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())
}

func TestNewLinks(t *testing.T) {
	base, err := url.Parse("http://host/api/recipes/?tags=lunch&page=2&limit=2")
	require.NoError(t, err)

	page := New(base, Params{Page: 2, Limit: 2}, 5, []int{3, 4})
	assert.EqualValues(t, 5, page.Count)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://host/api/recipes/?limit=2&page=3&tags=lunch", *page.Next)
	assert.Equal(t, "http://host/api/recipes/?limit=2&tags=lunch", *page.Previous)

	last := New(base, Params{Page: 3, Limit: 2}, 5, []int{5})
	assert.Nil(t, last.Next)

	empty := New[int](base, Params{Page: 1, Limit: 2}, 0, nil)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Previous)
	assert.NotNil(t, empty.Results)
}
