package api

import (
	"context"
	"net/url"
	"strconv"
)

// PrefixSearch returns up to limit page titles starting with prefix.
func (c *Client) PrefixSearch(ctx context.Context, prefix string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("list", "prefixsearch")
	params.Set("pssearch", prefix)
	params.Set("pslimit", strconv.Itoa(limit))

	q, err := c.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(q.Search))
	for _, r := range q.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}
