package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"tabreport/internal/dataset"
	logx "tabreport/pkg/logx"
)

// CredAirtableToken is the credentials key holding the Airtable API token.
const CredAirtableToken = "airtable_token"

const defaultAirtableAPI = "https://api.airtable.com/v0"

// airtableSource reads a table through the Airtable REST API, following
// offset pagination until the listing is exhausted.
type airtableSource struct {
	httpc *http.Client
	log   logx.Logger

	// apiBase overrides the API endpoint in tests.
	apiBase string
}

func (s *airtableSource) Scheme() string { return "airtable" }

func (s *airtableSource) Fetch(ctx context.Context, u *url.URL, creds map[string]string) (*dataset.Dataset, error) {
	baseID := u.Host
	table := strings.Trim(u.Path, "/")
	if baseID == "" || table == "" {
		return nil, &SourceError{Scheme: "airtable", Op: "parse locator",
			Err: fmt.Errorf("want airtable://<baseID>/<table>, got %q", u.String())}
	}
	token := creds[CredAirtableToken]
	if token == "" {
		return nil, &AuthError{Scheme: "airtable", Status: 0}
	}

	api := s.apiBase
	if api == "" {
		api = defaultAirtableAPI
	}

	var records []airtableRecord
	offset := ""
	for {
		page, next, err := s.fetchPage(ctx, api, baseID, table, token, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if next == "" {
			break
		}
		offset = next
	}
	return recordsToDataset(records), nil
}

func (s *airtableSource) fetchPage(ctx context.Context, api, baseID, table, token, offset string) ([]airtableRecord, string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", strings.TrimRight(api, "/"), baseID, url.PathEscape(table))
	if offset != "" {
		endpoint += "?offset=" + url.QueryEscape(offset)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", &SourceError{Scheme: "airtable", Op: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, "", &SourceError{Scheme: "airtable", Op: "list records", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", &AuthError{Scheme: "airtable", Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, "", &SourceError{Scheme: "airtable", Op: "list records",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body struct {
		Records []airtableRecord `json:"records"`
		Offset  string           `json:"offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", &SourceError{Scheme: "airtable", Op: "decode response", Err: err}
	}
	return body.Records, body.Offset, nil
}

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// recordsToDataset flattens records into a rectangular dataset. Columns
// are the sorted union of field names so sparse records line up.
func recordsToDataset(records []airtableRecord) *dataset.Dataset {
	nameSet := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec.Fields {
			nameSet[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(nameSet))
	for k := range nameSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = stringify(rec.Fields[col])
		}
		rows = append(rows, row)
	}
	return dataset.New(columns, rows)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
