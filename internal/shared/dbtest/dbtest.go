// Package dbtest opens gorm over sqlmock with the postgres dialect and
// inspects model schemas, for repository tests.
package dbtest

import (
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Open returns a gorm handle that renders postgres SQL into sqlmock. A nil
// matcher matches expectations as regular expressions.
func Open(t *testing.T, matcher sqlmock.QueryMatcher) (*gorm.DB, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	if matcher == nil {
		matcher = sqlmock.QueryMatcherRegexp
	}

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, sqlDB, mock
}

// Indexes parses model the way AutoMigrate does and returns its indexes by name.
func Indexes(t *testing.T, model any) map[string]schema.Index {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s.ParseIndexes()
}

// Columns lists the index columns in priority order.
func Columns(idx schema.Index) []string {
	cols := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		cols = append(cols, f.DBName)
	}
	return cols
}

// Capture is a query matcher that records the last SQL it saw and then
// matches it as a regular expression.
type Capture struct {
	mu   sync.Mutex
	last string
}

func (c *Capture) Match(expectedSQL, actualSQL string) error {
	c.mu.Lock()
	c.last = actualSQL
	c.mu.Unlock()
	return sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
}

func (c *Capture) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
