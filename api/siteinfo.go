package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// SiteInfo holds the parts of meta=siteinfo the extractor uses.
type SiteInfo struct {
	General    General
	Namespaces map[string]Namespace
}

// GetSiteInfo returns the general site information and namespaces.
func (c *Client) GetSiteInfo(ctx context.Context) (*SiteInfo, error) {
	params := url.Values{}
	params.Set("meta", "siteinfo")
	params.Set("siprop", "general|namespaces")

	q, err := c.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	if q.General == nil {
		return nil, fmt.Errorf("siteinfo response has no general block")
	}
	return &SiteInfo{General: *q.General, Namespaces: q.Namespaces}, nil
}

// Apply installs the URL base and namespaces into opts. Call it before
// opts.Prepare.
func (s *SiteInfo) Apply(opts *wikitext.Options) {
	if s.General.Base != "" {
		opts.SetURLBase(s.General.Base)
	}
	for key, ns := range s.Namespaces {
		if ns.Name == "" {
			continue
		}
		opts.SetNamespace(ns.Name, key)
	}
}
