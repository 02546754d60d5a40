package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogmirror/pkg/logging"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"products.db", "products.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
		{"file:products.db?mode=rwc", "file:products.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
		{"products.db?_pragma=busy_timeout(100)", "products.db?_pragma=busy_timeout(100)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.in), tt.in)
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{
		Driver:       DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "products.db"),
		MaxOpenConns: 4,
		Logger:       logging.NewNopLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sqlDB, err := s.db.DB()
	require.NoError(t, err)

	// Holding the first connection forces the pool to open a second one.
	first, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout, "connection %d", i)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", strings.ToLower(mode), "connection %d", i)
	}
	assert.Equal(t, 4, sqlDB.Stats().MaxOpenConnections)
}
