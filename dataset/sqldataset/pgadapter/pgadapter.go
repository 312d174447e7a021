package pgadapter

import (
	"database/sql"
	"fmt"
	"strings"

	// Import of postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pbanos/sapling/dataset/sqldataset"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL connection URL (postgres://...) and returns an Adapter
that works on its database or an error if the connection cannot be set up.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrapf(err, "opening postgres database")
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return fmt.Sprintf(`"%s"`, featureName), nil
}

func (a *adapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (a *adapter) ColumnType(continuous bool) string {
	if continuous {
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}

// OrderBy returns no order: postgres tables keep no insertion order.
func (a *adapter) OrderBy() string {
	return ""
}

func (a *adapter) Close() error {
	return a.db.Close()
}
