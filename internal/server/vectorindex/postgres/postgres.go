// Package postgres is a vectorindex.Index on PostgreSQL with the pgvector
// extension, accessed through database/sql and the pgx driver. The schema is
// managed by goose.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chatgate/internal/dbx"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type Store struct {
	db         *sql.DB
	collection string
}

var _ vectorindex.Index = (*Store)(nil)

func New(db *sql.DB, collection string) *Store {
	return &Store{db: db, collection: collection}
}

// Open connects with the pgx driver and applies pending migrations.
func Open(ctx context.Context, dsn, collection string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(db, collection), nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int, recreate bool) error {
	if dimension <= 0 {
		return vectorindex.ErrInvalidDimension
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if recreate {
			if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = $1`, s.collection); err != nil {
				return fmt.Errorf("drop collection: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collections (name, dimension) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			s.collection, dimension); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT dimension FROM collections WHERE name = $1`, s.collection).Scan(&existing); err != nil {
			return fmt.Errorf("read collection: %w", err)
		}
		if existing != dimension {
			return fmt.Errorf("%w: collection %q has %d, want %d", vectorindex.ErrDimensionMismatch, s.collection, existing, dimension)
		}
		return nil
	})
}

func (s *Store) dimension(ctx context.Context, db dbx.DBTX) (int, error) {
	var d int
	err := db.QueryRowContext(ctx, `SELECT dimension FROM collections WHERE name = $1`, s.collection).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("collection %q does not exist", s.collection)
	}
	return d, err
}

func (s *Store) Upsert(ctx context.Context, docs []vectorindex.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return vectorindex.ErrLengthMismatch
	}
	if len(docs) == 0 {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		dim, err := s.dimension(ctx, tx)
		if err != nil {
			return err
		}
		if err := vectorindex.CheckUpsert(docs, vectors, dim); err != nil {
			return err
		}

		for i, doc := range docs {
			meta, err := json.Marshal(doc.Metadata)
			if err != nil {
				return err
			}
			if doc.Metadata == nil {
				meta = []byte("{}")
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO documents (collection, id, content, metadata, embedding)
				 VALUES ($1, $2, $3, $4, $5::vector)
				 ON CONFLICT (collection, id) DO UPDATE
				 SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`,
				s.collection, doc.ID, doc.Content, string(meta), EncodeVector(vectors[i])); err != nil {
				return fmt.Errorf("upsert document %q: %w", doc.ID, err)
			}
		}
		return nil
	})
}

// Search orders by pgvector's cosine distance operator; score = 1 - distance.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorindex.SearchResult, error) {
	if k <= 0 {
		return []vectorindex.SearchResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, 1 - (embedding <=> $1::vector) AS score
		 FROM documents
		 WHERE collection = $2
		 ORDER BY embedding <=> $1::vector
		 LIMIT $3`,
		EncodeVector(vector), s.collection, k)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	results := []vectorindex.SearchResult{}
	for rows.Next() {
		var r vectorindex.SearchResult
		if err := rows.Scan(&r.ID, &r.Content, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// EncodeVector renders v in pgvector's text form, e.g. "[1,0.5,-2]".
func EncodeVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
