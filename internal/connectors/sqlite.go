package connectors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"

	_ "modernc.org/sqlite"

	"tabreport/internal/dataset"
	logx "tabreport/pkg/logx"
)

// sqliteSource reads a whole table from a local SQLite file. The locator
// names the database path and the table as a query parameter:
//
//	sqlite:///var/lib/app/data.db?table=orders
type sqliteSource struct {
	log logx.Logger
}

func (s *sqliteSource) Scheme() string { return "sqlite" }

// Table names come from job configs, so they are validated as bare
// identifiers rather than interpolated blindly.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *sqliteSource) Fetch(ctx context.Context, u *url.URL, _ map[string]string) (*dataset.Dataset, error) {
	path := u.Path
	if u.Host != "" {
		// url.Parse puts the first segment of a relative path in Host.
		path = u.Host + path
	}
	table := u.Query().Get("table")
	switch {
	case path == "":
		return nil, &SourceError{Scheme: "sqlite", Op: "parse locator", Err: errors.New("database path missing")}
	case table == "":
		return nil, &SourceError{Scheme: "sqlite", Op: "parse locator", Err: errors.New("table parameter missing")}
	case !identRe.MatchString(table):
		return nil, &SourceError{Scheme: "sqlite", Op: "parse locator", Err: fmt.Errorf("invalid table name %q", table)}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &SourceError{Scheme: "sqlite", Op: "open database", Err: err}
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, &SourceError{Scheme: "sqlite", Op: "open database", Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		return nil, &SourceError{Scheme: "sqlite", Op: "query table", Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &SourceError{Scheme: "sqlite", Op: "read columns", Err: err}
	}

	var data [][]string
	for rows.Next() {
		raw := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &SourceError{Scheme: "sqlite", Op: "scan row", Err: err}
		}
		row := make([]string, len(columns))
		for i, v := range raw {
			if v.Valid {
				row[i] = v.String
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &SourceError{Scheme: "sqlite", Op: "iterate rows", Err: err}
	}
	return dataset.New(columns, data), nil
}
