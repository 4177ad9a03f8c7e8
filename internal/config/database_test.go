package config

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func openTestDatabase(t *testing.T, pool PoolConfig, level slog.Level) (*bytes.Buffer, error) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))

	db, err := OpenDatabase(&DatabaseConfig{
		Driver: "sqlite",
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "sessions.db")},
		Pool:   pool,
	}, logger)
	if err != nil {
		return &buf, err
	}
	t.Cleanup(func() { _ = CloseDatabase(db) })

	if err := PingDatabase(context.Background(), db); err != nil {
		t.Fatalf("PingDatabase() error = %v", err)
	}
	sqlDB, _ := db.DB()
	if want := pool.MaxOpenConns; want > 0 && sqlDB.Stats().MaxOpenConnections != want {
		t.Errorf("MaxOpenConnections = %d; want %d", sqlDB.Stats().MaxOpenConnections, want)
	}
	return &buf, nil
}

func TestOpenDatabase_SQLite(t *testing.T) {
	buf, err := openTestDatabase(t, PoolConfig{MaxIdleConns: 5, MaxOpenConns: 50, ConnMaxLifetime: "30m"}, slog.LevelDebug)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	if !strings.Contains(buf.String(), "database connected") || !strings.Contains(buf.String(), "max_open_conns=50") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestOpenDatabase_PoolDefaults(t *testing.T) {
	buf, err := openTestDatabase(t, PoolConfig{}, slog.LevelInfo)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	for _, want := range []string{"max_idle_conns=10", "max_open_conns=100", "conn_max_lifetime=1h0m0s"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in log %s", want, buf.String())
		}
	}
}

func TestOpenDatabase_InvalidConnMaxLifetime(t *testing.T) {
	for _, lifetime := range []string{"not-a-duration", "-1s"} {
		_, err := openTestDatabase(t, PoolConfig{ConnMaxLifetime: lifetime}, slog.LevelInfo)
		if err == nil || !strings.Contains(err.Error(), "pool.conn_max_lifetime") {
			t.Errorf("lifetime %q: error = %v", lifetime, err)
		}
	}
}

func TestOpenDatabase_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if _, err := OpenDatabase(nil, logger); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := OpenDatabase(&DatabaseConfig{Driver: "sqlite"}, nil); err == nil {
		t.Error("expected error for nil logger")
	}
	_, err := OpenDatabase(&DatabaseConfig{Driver: "mysql"}, logger)
	if err == nil || err.Error() != "unsupported database driver: mysql" {
		t.Errorf("error = %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := sqliteDSN(filepath.Join(t.TempDir(), "a.db"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "_pragma=busy_timeout") || !strings.Contains(dsn, "journal_mode") {
		t.Errorf("dsn = %q", dsn)
	}
	if dsn, _ := sqliteDSN(":memory:"); dsn != ":memory:" {
		t.Errorf("memory dsn = %q", dsn)
	}
}

func TestPostgresDSN(t *testing.T) {
	got := postgresDSN(&PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "park", SSLMode: "require"})
	want := "postgres://u:p%40ss@db:5432/park?sslmode=require"
	if got != want {
		t.Errorf("postgresDSN() = %q; want %q", got, want)
	}
	if postgresDSN(nil) != "" {
		t.Error("nil config should give an empty DSN")
	}
}
