package api

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// RemoteRegistry resolves templates by fetching their pages on first use.
// Fetched pages are defined in a local MemoryRegistry, so compilation and
// redirect handling are the same as for dump-loaded templates. Concurrent
// lookups of one title share a single request.
type RemoteRegistry struct {
	ctx    context.Context
	client *Client
	local  *wikitext.MemoryRegistry
	group  singleflight.Group

	mu      sync.Mutex
	fetched map[string]bool
}

// NewRemoteRegistry returns a registry fetching through client. ctx bounds
// every fetch.
func NewRemoteRegistry(ctx context.Context, client *Client) *RemoteRegistry {
	return &RemoteRegistry{
		ctx:     ctx,
		client:  client,
		local:   wikitext.NewMemoryRegistry(),
		fetched: map[string]bool{},
	}
}

// ensure fetches title once. Failures are remembered as misses.
func (r *RemoteRegistry) ensure(title string) {
	r.mu.Lock()
	done := r.fetched[title]
	r.mu.Unlock()
	if done {
		return
	}

	_, _, _ = r.group.Do(title, func() (interface{}, error) {
		r.mu.Lock()
		done := r.fetched[title]
		r.mu.Unlock()
		if done {
			return nil, nil
		}

		page, err := r.client.GetRawPage(r.ctx, title)
		switch {
		case errors.Is(err, ErrPageNotFound):
			log.Debug("template not found", "title", title)
		case err != nil:
			log.Warn("failed to fetch template", "title", title, "err", err)
		default:
			r.local.Define(title, page.Content())
		}
		r.mu.Lock()
		r.fetched[title] = true
		r.mu.Unlock()
		return nil, err
	})
}

// RedirectTarget implements wikitext.Registry.
func (r *RemoteRegistry) RedirectTarget(title string) (string, bool) {
	r.ensure(title)
	return r.local.RedirectTarget(title)
}

// Template implements wikitext.Registry.
func (r *RemoteRegistry) Template(title string, compile func(string) *wikitext.Template) (*wikitext.Template, bool) {
	r.ensure(title)
	return r.local.Template(title, compile)
}

// Fetched returns the number of titles looked up so far.
func (r *RemoteRegistry) Fetched() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fetched)
}
