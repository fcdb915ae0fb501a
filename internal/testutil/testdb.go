package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"chat-casino/internal/config"
	"chat-casino/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var upMigrations = []string{
	"000001_init.up.sql",
	"000002_transfers_roll_proofs.up.sql",
}

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore opens a store on a fresh schema with every up migration
// applied. It skips the test when TEST_POSTGRES_DSN is unset.
func OpenTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	schema := fmt.Sprintf("%s_%d", cfg.SchemaPrefix, time.Now().UnixNano())
	if err := execSchemaDDL(cfg.TestPostgresDSN, "CREATE SCHEMA %s", schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	st, err := store.New(withSearchPath(cfg.TestPostgresDSN, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := migrate(st); err != nil {
		st.Close()
		t.Fatalf("apply schema: %v", err)
	}
	return st, func() {
		st.Close()
		_ = execSchemaDDL(cfg.TestPostgresDSN, "DROP SCHEMA %s CASCADE", schema)
	}
}

func execSchemaDDL(dsn, format, schema string) error {
	if !schemaNamePattern.MatchString(schema) {
		return fmt.Errorf("schema %q does not match required pattern", schema)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	_, err = pool.Exec(ctx, fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()))
	return err
}

func migrate(st *store.Store) error {
	for _, name := range upMigrations {
		path, err := findMigration(name)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := st.Pool.Exec(context.Background(), string(b)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// findMigration walks up from the working directory, since go test runs
// each package in its own directory.
func findMigration(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	start := dir
	for i := 0; i < 6; i++ {
		p := filepath.Join(dir, "migrations", name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s not found from %s", name, start)
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
