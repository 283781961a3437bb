package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrPageNotFound is returned for missing or invalid titles.
var ErrPageNotFound = errors.New("page not found")

// GetPage returns the current revision of a page, following redirects.
func (c *Client) GetPage(ctx context.Context, title string) (*Page, error) {
	return c.getPage(ctx, title, true)
}

// GetRawPage returns the current revision of a page without following
// redirects, so a redirect page yields its own #REDIRECT text.
func (c *Client) GetRawPage(ctx context.Context, title string) (*Page, error) {
	return c.getPage(ctx, title, false)
}

func (c *Client) getPage(ctx context.Context, title string, follow bool) (*Page, error) {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids|timestamp|content")
	params.Set("rvslots", "main")
	params.Set("titles", title)
	if follow {
		params.Set("redirects", "1")
	}

	q, err := c.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(q.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}

	page := q.Pages[0]
	if page.Missing || page.Invalid {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}
	return &page, nil
}
