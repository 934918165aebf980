// Package salesforce provides JWT-authenticated REST API access to Salesforce.
package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Salesforce API operations used by the reconciliation
// pipeline.
type Client interface {
	Query(ctx context.Context, soql string, out any) error
	// QueryPaged runs a SOQL query and invokes page once per result page,
	// following nextRecordsUrl until the result set is exhausted.
	QueryPaged(ctx context.Context, soql string, page func(records json.RawMessage) error) error
	UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

// ClientOption configures the Salesforce client.
type ClientOption func(*sfClient)

// WithRateLimit sets a per-second rate limit for SF API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sfClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// sfClient wraps the go-salesforce/v3 Salesforce struct.
//
// NOTE: The underlying go-salesforce/v3 library does not accept context.Context,
// so all methods discard the ctx parameter for the SF call itself. However, the
// ctx is used for rate limiter waiting, so callers can still cancel that wait.
type sfClient struct {
	sf      *salesforce.Salesforce
	limiter *rate.Limiter
}

// NewClient creates a new Salesforce Client wrapping the given go-salesforce instance.
func NewClient(sf *salesforce.Salesforce, opts ...ClientOption) Client {
	c := &sfClient{sf: sf}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *sfClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *sfClient) Query(ctx context.Context, soql string, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}
	if err := c.sf.Query(soql, out); err != nil {
		return eris.Wrap(err, "sf: query")
	}
	return nil
}

// queryPage is one page of a REST query response.
type queryPage struct {
	TotalSize      int             `json:"totalSize"`
	Done           bool            `json:"done"`
	NextRecordsURL string          `json:"nextRecordsUrl"`
	Records        json.RawMessage `json:"records"`
}

func (c *sfClient) QueryPaged(ctx context.Context, soql string, page func(records json.RawMessage) error) error {
	path := "/query/?q=" + url.QueryEscape(soql)

	for {
		if err := c.wait(ctx); err != nil {
			return eris.Wrap(err, "sf: rate limit")
		}

		resp, err := c.sf.DoRequest(http.MethodGet, path, nil)
		if err != nil {
			return eris.Wrap(err, "sf: query page")
		}

		var p queryPage
		err = decodeJSON(resp.Body, &p)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			return eris.Wrap(err, "sf: decode query page")
		}

		if err := page(p.Records); err != nil {
			return err
		}

		if p.Done || p.NextRecordsURL == "" {
			return nil
		}
		path = trimAPIPrefix(p.NextRecordsURL)
	}
}

func (c *sfClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}
	fields["Id"] = id
	if err := c.sf.UpdateOne(sObjectName, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update %s %s", sObjectName, id))
	}
	return nil
}

// trimAPIPrefix strips the /services/data/vXX.X prefix that Salesforce
// includes in nextRecordsUrl; DoRequest prepends it again.
func trimAPIPrefix(next string) string {
	if i := strings.Index(next, "/query"); i >= 0 {
		return next[i:]
	}
	return next
}
