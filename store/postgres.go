package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"
)

// validCollectionName guards table names built from collection names.
var validCollectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// PostgresCollection is a Collection backed by a postgres table. Records
// are stored as JSONB so every server shares one schema shape.
type PostgresCollection struct {
	db    *sql.DB
	table string
}

var _ Collection = (*PostgresCollection)(nil)

// NewPostgresCollection connects to postgres and ensures the collection's
// table exists.
func NewPostgresCollection(dsn, name string) (*PostgresCollection, error) {
	if !validCollectionName.MatchString(name) {
		return nil, fmt.Errorf("store: invalid collection name %q", name)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	c := &PostgresCollection{db: db, table: "mcp_" + name}
	if err := c.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *PostgresCollection) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id     INTEGER PRIMARY KEY,
			fields JSONB NOT NULL
		)`, c.table)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", c.table, err)
	}
	return nil
}

func (c *PostgresCollection) List(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(`SELECT id, fields FROM %s ORDER BY id`, c.table)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (c *PostgresCollection) Get(ctx context.Context, id int) (Record, error) {
	query := fmt.Sprintf(`SELECT id, fields FROM %s WHERE id = $1`, c.table)

	r, err := scanRecord(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (c *PostgresCollection) Create(ctx context.Context, fields map[string]any) (Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("marshal fields: %w", err)
	}

	// max(id)+1 inside one statement keeps concurrent creates from racing
	// on the id at the application level; the primary key backstops it.
	// Two creates can still read the same max under READ COMMITTED, so a
	// key collision claims the next id again, like the redis HSetNX loop.
	query := fmt.Sprintf(`
		INSERT INTO %s (id, fields)
		SELECT COALESCE(MAX(id), 0) + 1, $1 FROM %s
		RETURNING id`, c.table, c.table)

	for {
		var id int
		err := c.db.QueryRowContext(ctx, query, data).Scan(&id)
		if err == nil {
			return Record{ID: id, Fields: cloneFields(fields)}, nil
		}
		if isUniqueViolation(err) {
			if ctx.Err() != nil {
				return Record{}, fmt.Errorf("create in %s: %w", c.table, ctx.Err())
			}
			continue
		}
		return Record{}, fmt.Errorf("create in %s: %w", c.table, err)
	}
}

// isUniqueViolation reports whether err is a primary-key collision
// (postgres error class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (c *PostgresCollection) Update(ctx context.Context, id int, fields map[string]any) (Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("marshal fields: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET fields = $1 WHERE id = $2`, c.table)

	res, err := c.db.ExecContext(ctx, query, data, id)
	if err != nil {
		return Record{}, fmt.Errorf("update in %s: %w", c.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, fmt.Errorf("update in %s: %w", c.table, err)
	}
	if n == 0 {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Fields: cloneFields(fields)}, nil
}

func (c *PostgresCollection) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.table)

	res, err := c.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *PostgresCollection) Close() error {
	return c.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		id   int
		data []byte
	)
	if err := row.Scan(&id, &data); err != nil {
		return Record{}, err
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, fmt.Errorf("parse stored fields: %w", err)
	}
	return Record{ID: id, Fields: fields}, nil
}
