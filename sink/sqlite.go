// CLAUDE:SUMMARY SQLite sink: runs/categories/subcategories/links tables, overwrite-in-one-transaction Save, ordered Load.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/linkdex/dbopen"
	"github.com/hazyhaar/linkdex/idgen"
	"github.com/hazyhaar/linkdex/linklist"
)

// Schema holds exactly one run at a time; children cascade with it.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    saved_at        INTEGER NOT NULL,
    categories      INTEGER NOT NULL DEFAULT 0,
    subcategories   INTEGER NOT NULL DEFAULT 0,
    links           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
    id              INTEGER PRIMARY KEY,
    run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    title           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_run ON categories(run_id, position);

CREATE TABLE IF NOT EXISTS subcategories (
    id              INTEGER PRIMARY KEY,
    category_id     INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    title           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_subcategories_category ON subcategories(category_id, position);

CREATE TABLE IF NOT EXISTS links (
    id              INTEGER PRIMARY KEY,
    subcategory_id  INTEGER NOT NULL REFERENCES subcategories(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    title           TEXT NOT NULL,
    url             TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_links_subcategory ON links(subcategory_id, position);
`

// SQLite stores the tree in four tables.
type SQLite struct {
	db     *sql.DB
	owned  bool
	newID  idgen.Generator
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("sink: open sqlite: %w", err)
	}
	s := newSQLite(db, logger)
	s.owned = true
	return s, nil
}

// NewSQLite wraps an open database and applies the schema. Close does not
// close a database passed in here.
func NewSQLite(db *sql.DB, logger *slog.Logger) (*SQLite, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("sink: apply schema: %w", err)
	}
	return newSQLite(db, logger), nil
}

func newSQLite(db *sql.DB, logger *slog.Logger) *SQLite {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{db: db, newID: idgen.NewRunID, logger: logger}
}

// Save replaces the stored run with categories in a single transaction.
// The run id comes from WithRunID, else a fresh one is generated.
// Child rows are cleared explicitly: foreign_keys is a per-connection
// pragma and the pool may hand out a connection without it.
func (s *SQLite) Save(ctx context.Context, categories []linklist.Category) error {
	runID := RunIDFrom(ctx)
	if runID == "" {
		runID = s.newID()
	}
	if !idgen.ValidRunID(runID) {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	stats := linklist.Count(categories)

	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range []string{"links", "subcategories", "categories", "runs"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, saved_at, categories, subcategories, links) VALUES (?, ?, ?, ?, ?)`,
			runID, time.Now().UnixMilli(), stats.Categories, stats.Subcategories, stats.Links,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for ci, c := range categories {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO categories (run_id, position, title) VALUES (?, ?, ?)`, runID, ci, c.Title)
			if err != nil {
				return fmt.Errorf("insert category %q: %w", c.Title, err)
			}
			catID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for si, sub := range c.Subcategories {
				res, err := tx.ExecContext(ctx,
					`INSERT INTO subcategories (category_id, position, title) VALUES (?, ?, ?)`, catID, si, sub.Title)
				if err != nil {
					return fmt.Errorf("insert subcategory %q: %w", sub.Title, err)
				}
				subID, err := res.LastInsertId()
				if err != nil {
					return err
				}
				for li, l := range sub.Links {
					if _, err := tx.ExecContext(ctx,
						`INSERT INTO links (subcategory_id, position, title, url, description) VALUES (?, ?, ?, ?, ?)`,
						subID, li, l.Title, l.URL, l.Description,
					); err != nil {
						return fmt.Errorf("insert link %q: %w", l.Title, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sink: save sqlite: %w", err)
	}
	s.logger.Info("sink: saved", "format", "sqlite", "run_id", runID,
		"categories", stats.Categories, "links", stats.Links)
	return nil
}

// Load rebuilds the stored tree in its original order. ErrEmpty when no run exists.
func (s *SQLite) Load(ctx context.Context) ([]linklist.Category, error) {
	runID, err := s.LastRunID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, s.id, s.title, l.title, l.url, l.description
		FROM categories c
		LEFT JOIN subcategories s ON s.category_id = c.id
		LEFT JOIN links l ON l.subcategory_id = s.id
		WHERE c.run_id = ?
		ORDER BY c.position, s.position, l.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("sink: load sqlite: %w", err)
	}
	defer rows.Close()

	out := []linklist.Category{}
	var lastCat, lastSub int64 = -1, -1
	for rows.Next() {
		var (
			catID             int64
			catTitle          string
			subID             sql.NullInt64
			subTitle          sql.NullString
			title, url, descr sql.NullString
		)
		if err := rows.Scan(&catID, &catTitle, &subID, &subTitle, &title, &url, &descr); err != nil {
			return nil, fmt.Errorf("sink: scan: %w", err)
		}
		if catID != lastCat {
			out = append(out, linklist.Category{Title: catTitle, Subcategories: []linklist.Subcategory{}})
			lastCat, lastSub = catID, -1
		}
		if !subID.Valid {
			continue
		}
		cat := &out[len(out)-1]
		if subID.Int64 != lastSub {
			cat.Subcategories = append(cat.Subcategories, linklist.Subcategory{Title: subTitle.String, Links: []linklist.Link{}})
			lastSub = subID.Int64
		}
		if !title.Valid {
			continue
		}
		sub := &cat.Subcategories[len(cat.Subcategories)-1]
		sub.Links = append(sub.Links, linklist.Link{Title: title.String, URL: url.String, Description: descr.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sink: load sqlite: %w", err)
	}
	return out, nil
}

// LastRunID returns the id of the stored run, or ErrEmpty.
func (s *SQLite) LastRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY saved_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrEmpty
	}
	if err != nil {
		return "", fmt.Errorf("sink: last run: %w", err)
	}
	return id, nil
}

// Close closes the database if OpenSQLite opened it.
func (s *SQLite) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
