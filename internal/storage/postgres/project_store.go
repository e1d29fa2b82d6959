// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cdoyle/beacon/internal/project"
)

// PoolConfig controls the Postgres connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

func newPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// ProjectStore reads project configuration rows from Postgres. It assumes
// the schema:
//
//	CREATE TABLE projects (
//	    projectid              SERIAL PRIMARY KEY,
//	    projecturl             TEXT NOT NULL UNIQUE,
//	    projectcode            TEXT,
//	    enabled                BOOLEAN NOT NULL DEFAULT FALSE,
//	    obfuscate_enable       BOOLEAN NOT NULL DEFAULT FALSE,
//	    obfuscate_code         TEXT,
//	    telegram_notice_enable BOOLEAN NOT NULL DEFAULT FALSE,
//	    telegram_notice_token  TEXT,
//	    telegram_notice_chatid TEXT
//	);
//	CREATE TABLE modules (
//	    moduleid             SERIAL PRIMARY KEY,
//	    module_extra_argname TEXT
//	);
//	CREATE TABLE project_modules (
//	    projectid INT REFERENCES projects,
//	    moduleid  INT REFERENCES modules
//	);
type ProjectStore struct {
	pool querier
}

// NewProjectStore creates a Postgres-backed ProjectStore.
func NewProjectStore(ctx context.Context, cfg PoolConfig) (*ProjectStore, error) {
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ProjectStore{pool: pool}, nil
}

// NewProjectStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewProjectStoreWithPool(pool querier) (*ProjectStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &ProjectStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *ProjectStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// GetProject returns the config for an enabled project, with the served
// code already selected (obfuscated variant when enabled and non-empty).
// A missing row, a disabled project, or a null code all return nil.
func (s *ProjectStore) GetProject(ctx context.Context, slug string) (*project.Config, error) {
	query := `
SELECT projectcode, obfuscate_enable, obfuscate_code,
       telegram_notice_enable, telegram_notice_token, telegram_notice_chatid
FROM projects
WHERE projecturl = $1 AND enabled`

	var (
		code            *string
		obfuscateEnable bool
		obfuscateCode   *string
		noticeEnable    bool
		noticeToken     *string
		noticeChatID    *string
	)
	err := s.pool.QueryRow(ctx, query, slug).Scan(
		&code,
		&obfuscateEnable,
		&obfuscateCode,
		&noticeEnable,
		&noticeToken,
		&noticeChatID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query project %q: %w", slug, err)
	}
	if code == nil {
		return nil, nil
	}

	served := *code
	if obfuscateEnable && obfuscateCode != nil && *obfuscateCode != "" {
		served = *obfuscateCode
	}
	return &project.Config{
		Code: served,
		Notification: project.Notification{
			Enabled: noticeEnable,
			Token:   deref(noticeToken),
			ChatID:  deref(noticeChatID),
		},
	}, nil
}

// ListExtraArgNames returns the extra-argument names of every module bound
// to the project, in join order. Duplicates across modules are preserved.
func (s *ProjectStore) ListExtraArgNames(ctx context.Context, slug string) ([]string, error) {
	query := `
SELECT modules.module_extra_argname
FROM modules
JOIN project_modules ON modules.moduleid = project_modules.moduleid
JOIN projects ON project_modules.projectid = projects.projectid
WHERE projects.projecturl = $1 AND modules.module_extra_argname IS NOT NULL`

	rows, err := s.pool.Query(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("query module args for %q: %w", slug, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan module arg row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate module arg rows: %w", err)
	}
	return names, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
