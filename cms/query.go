package cms

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query builds CMS-style nested query parameters (populate / filters /
// pagination / sort) in their bracketed wire form, e.g.
// filters[userId][$eq]=abc&pagination[page]=2&populate=*.
type Query struct {
	Populate string
	Filters  map[string]string
	Page     int
	PageSize int
	Sort     []string
}

// PopulateAll requests fully hydrated records with every relation attached.
func PopulateAll() Query {
	return Query{Populate: "*"}
}

func (q Query) Encode() string {
	values := url.Values{}

	if q.Populate != "" {
		values.Set("populate", q.Populate)
	}

	for field, value := range q.Filters {
		values.Set(fmt.Sprintf("filters[%s][$eq]", field), value)
	}

	if q.Page > 0 {
		values.Set("pagination[page]", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("pagination[pageSize]", strconv.Itoa(q.PageSize))
	}

	for i, s := range q.Sort {
		values.Set(fmt.Sprintf("sort[%d]", i), s)
	}

	return values.Encode()
}
