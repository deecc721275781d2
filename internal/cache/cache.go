package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id             TEXT PRIMARY KEY,
			source         TEXT NOT NULL,
			title          TEXT NOT NULL,
			link           TEXT NOT NULL,
			summary        TEXT NOT NULL DEFAULT '',
			published      DATETIME NOT NULL,
			fetched_at     DATETIME NOT NULL,
			tickers        TEXT NOT NULL DEFAULT '',
			primary_ticker TEXT NOT NULL DEFAULT '',
			prices         TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
		CREATE INDEX IF NOT EXISTS idx_articles_primary_ticker ON articles(primary_ticker);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (c *Cache) UpsertArticles(articles []Article) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (id, source, title, link, summary, published, fetched_at, tickers, primary_ticker, prices)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			fetched_at = excluded.fetched_at,
			tickers = excluded.tickers,
			primary_ticker = excluded.primary_ticker,
			prices = excluded.prices
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range articles {
		pricesJSON := ""
		if len(a.Prices) > 0 {
			data, err := json.Marshal(a.Prices)
			if err != nil {
				return fmt.Errorf("encoding prices for %s: %w", a.ID, err)
			}
			pricesJSON = string(data)
		}
		_, err := stmt.Exec(a.ID, a.Source, a.Title, a.Link, a.Summary, a.Published, a.FetchedAt,
			strings.Join(a.Tickers, ","), a.PrimaryTicker, pricesJSON)
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (c *Cache) GetArticles(opts QueryOpts) ([]Article, error) {
	var (
		where []string
		args  []interface{}
	)

	if !opts.Since.IsZero() {
		where = append(where, "published >= ?")
		args = append(args, opts.Since)
	}

	if len(opts.Sources) > 0 {
		placeholders := make([]string, len(opts.Sources))
		for i, s := range opts.Sources {
			placeholders[i] = "?"
			args = append(args, s)
		}
		where = append(where, "source IN ("+strings.Join(placeholders, ",")+")")
	}

	query := "SELECT id, source, title, link, summary, published, fetched_at, tickers, primary_ticker, prices FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var (
			a          Article
			tickers    string
			pricesJSON string
		)
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.Link, &a.Summary, &a.Published, &a.FetchedAt,
			&tickers, &a.PrimaryTicker, &pricesJSON); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if tickers != "" {
			a.Tickers = strings.Split(tickers, ",")
		}
		if pricesJSON != "" {
			// Corrupt price blobs are dropped, not fatal
			_ = json.Unmarshal([]byte(pricesJSON), &a.Prices)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (c *Cache) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := c.writeDB.Exec("DELETE FROM articles WHERE published < ? AND published > ?", cutoff, time.Time{})
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Cache) Stats(dbPath string) (int64, int64, error) {
	var count int64
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}

func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (c *Cache) SetLastRefresh() error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_refresh', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	return err
}
