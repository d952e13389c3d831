package output

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dataextractor/data-extractor/pkg/logger"
	"github.com/dataextractor/data-extractor/pkg/project"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 10 * time.Second

// PostgresSink upserts projects keyed by (source, id) and appends one row
// per run to the logs table.
type PostgresSink struct {
	pool          *pgxpool.Pool
	source        Source
	projectsTable pgx.Identifier
	logsTable     pgx.Identifier
	tablesReady   bool
}

func OpenPostgres(ctx context.Context, dbURL string, source Source, projectsTable, logsTable string) (*PostgresSink, error) {
	if strings.TrimSpace(dbURL) == "" {
		return nil, fmt.Errorf("postgres output requires a db url")
	}
	projectsID, err := parseIdentifier(projectsTable)
	if err != nil {
		return nil, err
	}
	logsID, err := parseIdentifier(logsTable)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresSink{
		pool:          pool,
		source:        source,
		projectsTable: projectsID,
		logsTable:     logsID,
	}, nil
}

func (s *PostgresSink) Close() {
	s.pool.Close()
}

func (s *PostgresSink) ensureTables(ctx context.Context) error {
	if s.tablesReady {
		return nil
	}
	for _, q := range []string{createProjectsTableSQL(s.projectsTable), createLogsTableSQL(s.logsTable)} {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create output table: %w", err)
		}
	}
	s.tablesReady = true
	return nil
}

// StoreProjects upserts all projects in a single transaction.
func (s *PostgresSink) StoreProjects(ctx context.Context, projects []project.ProjectInfo) error {
	if err := s.ensureTables(ctx); err != nil {
		return err
	}
	if len(projects) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := upsertProjectSQL(s.projectsTable)
	fetchedAt := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, p := range projects {
		batch.Queue(q, string(s.source), p.ID, p.Name, p.PathWithNamespace, p.HTTPURL,
			accessLevelArg(p.AccessLevel), p.AccessLevelName(), fetchedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for range projects {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to store project: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to store projects: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit projects: %w", err)
	}

	logger.Info("Stored projects", "table", s.projectsTable.Sanitize(), "count", len(projects))
	return nil
}

func (s *PostgresSink) StoreRunLog(ctx context.Context, projectCount int, runErr error) error {
	if err := s.ensureTables(ctx); err != nil {
		return err
	}
	status, message := "ok", ""
	if runErr != nil {
		status, message = "error", runErr.Error()
	}
	if _, err := s.pool.Exec(ctx, insertRunLogSQL(s.logsTable), string(s.source), status, projectCount, message); err != nil {
		return fmt.Errorf("failed to store run log: %w", err)
	}
	return nil
}

// parseIdentifier splits an optionally schema-qualified table name.
func parseIdentifier(name string) (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}

func accessLevelArg(l *project.AccessLevel) any {
	if l == nil {
		return nil
	}
	return int(*l)
}

func createProjectsTableSQL(t pgx.Identifier) string {
	return `CREATE TABLE IF NOT EXISTS ` + t.Sanitize() + ` (
    source              text        NOT NULL,
    id                  bigint      NOT NULL,
    name                text        NOT NULL,
    path_with_namespace text        NOT NULL,
    http_url            text        NOT NULL,
    access_level        integer,
    access_level_name   text        NOT NULL,
    fetched_at          timestamptz NOT NULL,
    PRIMARY KEY (source, id)
)`
}

func upsertProjectSQL(t pgx.Identifier) string {
	return `INSERT INTO ` + t.Sanitize() + `(source, id, name, path_with_namespace, http_url,
        access_level, access_level_name, fetched_at)
    VALUES($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (source, id) DO UPDATE SET
        name=EXCLUDED.name,
        path_with_namespace=EXCLUDED.path_with_namespace,
        http_url=EXCLUDED.http_url,
        access_level=EXCLUDED.access_level,
        access_level_name=EXCLUDED.access_level_name,
        fetched_at=EXCLUDED.fetched_at`
}

func createLogsTableSQL(t pgx.Identifier) string {
	return `CREATE TABLE IF NOT EXISTS ` + t.Sanitize() + ` (
    id            bigserial   PRIMARY KEY,
    source        text        NOT NULL,
    status        text        NOT NULL,
    project_count integer     NOT NULL,
    message       text        NOT NULL DEFAULT '',
    created_at    timestamptz NOT NULL DEFAULT now()
)`
}

func insertRunLogSQL(t pgx.Identifier) string {
	return `INSERT INTO ` + t.Sanitize() + `(source, status, project_count, message) VALUES($1,$2,$3,$4)`
}
