// Package pagination implements page-number pagination with a
// {count, next, previous, results} envelope.
package pagination

import (
	"net/url"
	"strconv"
)

const MaxLimit = 100

// Params is a resolved page request. Page starts at 1.
type Params struct {
	Page  int
	Limit int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads "page" and "limit" from q. Missing or malformed values fall back
// to page 1 and defaultLimit; limit is capped at MaxLimit.
func Parse(q url.Values, defaultLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Limit <= 0 {
		p.Limit = 1
	}
	return p
}

type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// New builds the envelope. base is the request URL; next and previous keep its
// query string and only swap the page number.
func New[T any](base *url.URL, p Params, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Limit) < total {
		link := pageURL(base, p.Page+1)
		page.Next = &link
	}
	if p.Page > 1 {
		link := pageURL(base, p.Page-1)
		page.Previous = &link
	}
	return page
}

func pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
