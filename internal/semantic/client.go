// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic is a client for the Semantic Scholar Graph API and a
// paper source that downloads open-access PDFs it links to.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/internal/httputil"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// Fields requests only what the Paper record uses.
const Fields = "title,abstract,year,citationCount,authors,url,publicationDate,externalIds,fieldsOfStudy,openAccessPdf"

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("semantic: empty search query")

// Client queries the Graph API with per-instance pacing and 429 retries.
type Client struct {
	http    *httputil.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient builds a Client from cfg. cfg.MinInterval spaces consecutive
// requests; zero disables pacing.
func NewClient(cfg types.SemanticConfig, log zerolog.Logger, opts ...httputil.Option) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = types.DefaultSemanticBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "paperfetch/1.0"
	}

	if cfg.APIKey != "" {
		log.Info().Msg("using authenticated Semantic Scholar access")
	} else {
		log.Warn().Msg("no " + types.EnvSemanticAPIKey + " set, using the shared rate limit")
	}

	return &Client{
		http: httputil.NewClient(httputil.ClientConfig{
			Timeout:     cfg.Timeout,
			MinInterval: cfg.MinInterval,
			Headers:     map[string]string{"User-Agent": ua, "Accept": "application/json"},
			APIKey:      cfg.APIKey,
			Retry:       httputil.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.BaseDelay},
		}, append([]httputil.Option{httputil.WithLogger(log)}, opts...)...),
		baseURL: strings.TrimRight(base, "/"),
		log:     log,
	}
}

// Paper fetches details for id. Accepted forms include a Semantic Scholar
// ID, "DOI:10.18653/v1/N18-3011", "ARXIV:2106.15928", "PMID:19872477",
// "ACL:W12-3903", and "URL:https://arxiv.org/abs/2106.15928".
func (c *Client) Paper(ctx context.Context, id string) (*types.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("paper ID: %w", types.ErrEmptyIdentifier)
	}

	var ap apiPaper
	if err := c.getJSON(ctx, "paper/"+id, url.Values{"fields": {Fields}}, &ap); err != nil {
		return nil, fmt.Errorf("fetching paper %s: %w", id, err)
	}
	p, ok := ap.toPaper()
	if !ok {
		return nil, fmt.Errorf("%w: Semantic Scholar returned no paper for %s", types.ErrNotFound, id)
	}
	return &p, nil
}

// Search runs a keyword search. year filters by publication year and
// accepts "2019", "2016-2020", "2010-", or "-2015"; empty means no filter.
// At most maxResults papers are returned, capped at 100.
func (c *Client) Search(ctx context.Context, query, year string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = defaultSearchLimit
	}
	limit := min(maxResults, maxSearchLimit)

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {Fields},
	}
	if year != "" {
		params.Set("year", year)
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "paper/search", params, &sr); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	var papers []types.Paper
	for _, ap := range sr.Data {
		if len(papers) == limit {
			break
		}
		if p, ok := ap.toPaper(); ok {
			papers = append(papers, p)
		}
	}
	c.log.Info().Int("count", len(papers)).Str("query", query).Msg("search complete")
	return papers, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, v any) error {
	resp, err := c.http.Get(ctx, c.baseURL+"/"+endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: Semantic Scholar returned HTTP 404", types.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: Semantic Scholar API returned HTTP %d", httputil.ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}
