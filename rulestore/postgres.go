// Package rulestore persists header rules in PostgreSQL.
package rulestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devmarvs/secureheaders/policy"
	"github.com/devmarvs/secureheaders/rules"
)

// Driver is the database/sql driver name registered by pgx.
const Driver = "pgx"

// DefaultTable holds rules when no table is configured.
const DefaultTable = "secure_header_rules"

// PoolOptions configures database connection pooling.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Open opens a PostgreSQL database through pgx and checks the connection.
func Open(dsn string, options PoolOptions) (*sql.DB, error) {
	return open(Driver, dsn, options)
}

func open(driver, dsn string, options PoolOptions) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if options.MaxOpenConns > 0 {
		db.SetMaxOpenConns(options.MaxOpenConns)
	}
	if options.MaxIdleConns > 0 {
		db.SetMaxIdleConns(options.MaxIdleConns)
	}
	if options.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(options.ConnMaxLifetime)
	}

	pingTimeout := options.PingTimeout
	if pingTimeout == 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Options configures a PostgresStore.
type Options struct {
	DB      *sql.DB
	Table   string
	Timeout time.Duration
}

// PostgresStore keeps an ordered rule list in one table.
type PostgresStore struct {
	db      *sql.DB
	table   string
	timeout time.Duration
}

// NewPostgresStore builds a Postgres-backed rule store.
func NewPostgresStore(options Options) (*PostgresStore, error) {
	if options.DB == nil {
		return nil, errors.New("postgres db is required")
	}
	table := strings.TrimSpace(options.Table)
	if table == "" {
		table = DefaultTable
	}
	if !validTable(table) {
		return nil, fmt.Errorf("invalid postgres table name: %s", table)
	}
	return &PostgresStore{db: options.DB, table: table, timeout: options.Timeout}, nil
}

// Table returns the table name.
func (s *PostgresStore) Table() string {
	return s.table
}

// EnsureTable creates the rules table if it does not exist.
func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		position INT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		directives JSONB NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return err
	}
	createIndex := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_position_idx ON %s (position)", indexPrefix(s.table), s.table)
	_, err := s.db.ExecContext(ctx, createIndex)
	return err
}

// Load returns every stored rule in position order.
func (s *PostgresStore) Load(ctx context.Context) ([]rules.Rule, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT source, description, directives FROM %s ORDER BY position, id", s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []rules.Rule
	for rows.Next() {
		var rule rules.Rule
		var payload []byte
		if err := rows.Scan(&rule.Source, &rule.Description, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &rule.Directives); err != nil {
			return nil, fmt.Errorf("decode directives of rule %d: %w", len(list), err)
		}
		dropUnset(rule.Directives)
		list = append(list, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Replace swaps the stored rules for list in a single transaction.
func (s *PostgresStore) Replace(ctx context.Context, list []rules.Rule) (err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return err
	}

	insert := fmt.Sprintf("INSERT INTO %s (position, source, description, directives) VALUES ($1, $2, $3, $4)", s.table)
	for i, rule := range list {
		directives := rule.Directives
		if directives == nil {
			directives = policy.Directives{}
		}
		var payload []byte
		payload, err = json.Marshal(directives)
		if err != nil {
			return fmt.Errorf("encode directives of rule %d: %w", i, err)
		}
		if _, err = tx.ExecContext(ctx, insert, i, rule.Source, rule.Description, payload); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func dropUnset(directives policy.Directives) {
	for name, value := range directives {
		if !value.IsSet() {
			delete(directives, name)
		}
	}
}

func indexPrefix(table string) string {
	return strings.ReplaceAll(table, ".", "_")
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)?$`)

func validTable(name string) bool {
	return tableNamePattern.MatchString(name)
}
