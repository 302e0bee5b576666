package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/devraulu/sitegraph/pkg/graph"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

var placeholder = regexp.MustCompile(`\$\d+`)

// SQLStorage writes runs to Postgres or SQLite. Queries are written with
// Postgres placeholders and rebound for SQLite.
type SQLStorage struct {
	db     *sql.DB
	driver string
}

func NewSQLStorage(db *sql.DB, driver string) *SQLStorage {
	return &SQLStorage{db: db, driver: driver}
}

// Open connects to dsn, runs the migrations and returns the storage.
func Open(driver, dsn string) (*SQLStorage, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLStorage(db, driver), nil
}

func (s *SQLStorage) rebind(query string) string {
	if s.driver != DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

func (s *SQLStorage) SaveRun(ctx context.Context, run Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO runs (id, site_root, sitemap, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5)`),
		run.ID.String(), run.SiteRoot, run.Sitemap, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	recordStmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO records (run_id, position, loc, changefreq, priority, domain, sitemap_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`))
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer recordStmt.Close()

	for i, r := range run.Records {
		if _, err = recordStmt.ExecContext(ctx, run.ID.String(), i, r.Loc, r.ChangeFreq, r.Priority, r.Domain, r.SitemapName); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO nodes (run_id, tree, position, name, parent_position, depth)
		VALUES ($1, $2, $3, $4, $5, $6)`))
	if err != nil {
		return fmt.Errorf("prepare nodes: %w", err)
	}
	defer nodeStmt.Close()

	trees := []struct {
		name string
		rows []NodeRow
	}{
		{TreeHierarchy, flattenOrNil(run.Hierarchy)},
		{TreeSequence, flattenOrNil(run.Sequence)},
	}
	for _, t := range trees {
		for _, n := range t.rows {
			parent := sql.NullInt64{Int64: int64(n.ParentPosition), Valid: n.ParentPosition >= 0}
			if _, err = nodeStmt.ExecContext(ctx, run.ID.String(), t.name, n.Position, n.Name, parent, n.Depth); err != nil {
				return fmt.Errorf("insert %s node %d: %w", t.name, n.Position, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	slog.Info("saved run",
		slog.String("id", run.ID.String()),
		slog.Int("records", len(run.Records)),
		slog.Int("hierarchy_nodes", len(trees[0].rows)),
		slog.Int("sequence_nodes", len(trees[1].rows)),
	)
	return nil
}

func (s *SQLStorage) Nodes(ctx context.Context, runID uuid.UUID, tree string) ([]NodeRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT position, name, parent_position, depth
		FROM nodes
		WHERE run_id = $1 AND tree = $2
		ORDER BY position`),
		runID.String(), tree,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		var (
			n      NodeRow
			parent sql.NullInt64
		)
		if err := rows.Scan(&n.Position, &n.Name, &parent, &n.Depth); err != nil {
			return nil, err
		}
		n.ParentPosition = -1
		if parent.Valid {
			n.ParentPosition = int(parent.Int64)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}

func flattenOrNil(t *graph.Tree) []NodeRow {
	if t == nil {
		return nil
	}
	return FlattenTree(t)
}
