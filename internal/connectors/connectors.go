// Package connectors fetches tabular data from external systems. A job
// names its source with a URL-style locator and the registry dispatches on
// the scheme:
//
//	airtable://<baseID>/<table>        Airtable REST API
//	sqlite:///path/to.db?table=<name>  local SQLite database
//	https://host/export.csv           CSV document over HTTP
package connectors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tabreport/internal/dataset"
	logx "tabreport/pkg/logx"
)

// ErrUnsupportedScheme marks a locator no registered source can handle.
var ErrUnsupportedScheme = errors.New("connectors: unsupported source scheme")

// SourceError wraps a fetch failure with the source scheme and operation.
type SourceError struct {
	Scheme string
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("connectors: %s %s: %v", e.Scheme, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// AuthError reports rejected credentials for a source.
type AuthError struct {
	Scheme string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("connectors: %s authentication failed (status %d)", e.Scheme, e.Status)
}

// Source fetches a dataset for one locator scheme.
type Source interface {
	Scheme() string
	Fetch(ctx context.Context, u *url.URL, creds map[string]string) (*dataset.Dataset, error)
}

// Registry routes locators to sources by scheme.
type Registry struct {
	sources map[string]Source
	log     logx.Logger
}

// NewRegistry builds a registry with the built-in sources attached.
func NewRegistry(log logx.Logger) *Registry {
	httpc := &http.Client{Timeout: 60 * time.Second}
	r := &Registry{sources: map[string]Source{}, log: log}
	r.Register(&airtableSource{httpc: httpc, log: log})
	r.Register(&sqliteSource{log: log})
	csv := &csvSource{httpc: httpc, log: log}
	r.sources["http"] = csv
	r.sources["https"] = csv
	return r
}

// Register adds or replaces the source for its scheme.
func (r *Registry) Register(s Source) {
	r.sources[s.Scheme()] = s
}

// Fetch resolves locator to a source and retrieves the dataset.
func (r *Registry) Fetch(ctx context.Context, locator string, creds map[string]string) (*dataset.Dataset, error) {
	u, err := url.Parse(strings.TrimSpace(locator))
	if err != nil {
		return nil, &SourceError{Scheme: "?", Op: "parse locator", Err: err}
	}
	src, ok := r.sources[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	started := time.Now()
	d, err := src.Fetch(ctx, u, creds)
	if err != nil {
		return nil, err
	}
	r.log.Debug("source fetched",
		logx.String("scheme", u.Scheme),
		logx.Int("rows", d.NumRows()),
		logx.Int("columns", d.NumCols()),
		logx.Duration("took", time.Since(started)),
	)
	return d, nil
}
