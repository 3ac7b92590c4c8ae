// Package storefront implements the listing source against a storefront's
// HTML catalog grids and product pages.
package storefront

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/logger"
	"github.com/custodia-labs/stockwatch/internal/metrics"
)

// Ensure Source implements the interface.
var _ driven.ListingSource = (*Source)(nil)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Source fetches listings over HTTP and parses them with goquery.
type Source struct {
	http        *resty.Client
	baseURL     string
	concurrency int
	selectors   domain.Selectors
}

// NewSource creates a storefront source from settings.
func NewSource(settings domain.SourceSettings) *Source {
	client := resty.New()
	client.SetHeader("User-Agent", DefaultUserAgent)
	if settings.BaseURL != "" {
		client.SetHeader("Referer", settings.BaseURL)
	}
	if settings.Timeout > 0 {
		client.SetTimeout(settings.Timeout)
	}

	limit := rate.Inf
	if settings.RequestsPerSecond > 0 {
		limit = rate.Limit(settings.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Source{
		http:        client,
		baseURL:     settings.BaseURL,
		concurrency: settings.ClampedConcurrency(),
		selectors:   settings.Selectors,
	}
}

// job is one page to fetch.
type job struct {
	url   string
	query domain.CatalogQuery
}

// Fetch reads every page of every query with bounded parallelism.
// Observations keep query and page order.
func (s *Source) Fetch(ctx context.Context, queries []domain.CatalogQuery) ([]domain.ObservedListing, error) {
	jobs, err := expand(queries)
	if err != nil {
		return nil, err
	}

	// Each goroutine writes only its own slot.
	results := make([][]domain.ObservedListing, len(jobs))
	itemErrs := make([]error, len(jobs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], itemErrs[i] = s.fetchPage(ctx, j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var batch []domain.ObservedListing
	for _, r := range results {
		batch = append(batch, r...)
	}
	return batch, errors.Join(itemErrs...)
}

// expand turns queries into page jobs.
func expand(queries []domain.CatalogQuery) ([]job, error) {
	var jobs []job
	for _, q := range queries {
		switch q.Kind {
		case domain.QueryProduct:
			jobs = append(jobs, job{url: q.URL, query: q})
		case domain.QueryCatalog, "":
			for page := 1; page <= q.PageCount(); page++ {
				pageURL, err := withPage(q.URL, page)
				if err != nil {
					return nil, fmt.Errorf("%w: catalog %q: %w", domain.ErrInvalidInput, q.Name, err)
				}
				jobs = append(jobs, job{url: pageURL, query: q})
			}
		default:
			return nil, fmt.Errorf("%w: query kind %q", domain.ErrInvalidInput, q.Kind)
		}
	}
	return jobs, nil
}

// withPage sets the page query parameter.
func withPage(rawURL string, page int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchPage fetches and parses one page. Failures are per-item errors.
func (s *Source) fetchPage(ctx context.Context, j job) ([]domain.ObservedListing, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(j.url)
	if err != nil {
		metrics.RecordFetch(metrics.FetchError)
		return nil, domain.NewItemError(j.url, fmt.Errorf("%w: %w", domain.ErrFetch, err))
	}
	if !res.IsSuccess() {
		metrics.RecordFetch(metrics.FetchError)
		return nil, domain.NewItemError(j.url, fmt.Errorf("%w: HTTP %d", domain.ErrFetch, res.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		metrics.RecordFetch(metrics.FetchParseError)
		return nil, domain.NewItemError(j.url, fmt.Errorf("%w: %w", domain.ErrParse, err))
	}

	var listings []domain.ObservedListing
	if j.query.Kind == domain.QueryProduct {
		listings = []domain.ObservedListing{parseProductPage(doc, j.query.URL, s.selectors)}
	} else {
		listings = parseCatalogPage(doc, s.resolveBase(j.url), j.query.DefaultStatus, s.selectors)
		logger.Debug("storefront: %s yielded %d listings", j.url, len(listings))
	}

	metrics.RecordFetch(metrics.FetchOK)
	return listings, nil
}

// resolveBase is the configured base URL, or the page's own origin.
func (s *Source) resolveBase(pageURL string) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Concurrency returns the effective fetch parallelism.
func (s *Source) Concurrency() int {
	return s.concurrency
}
