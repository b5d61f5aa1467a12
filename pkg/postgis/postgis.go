// Package postgis stores places in a PostGIS table so that the quadtree can
// be benchmarked against a GIST-indexed database.
package postgis

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/config"
	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	_ "github.com/lib/pq"
)

const batchSize = 10000

type Index struct {
	db *sql.DB
}

// DSN builds the lib/pq connection string for cfg.
func DSN(cfg *config.Config) string {
	pg := cfg.PostGIS
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pg.Host, pg.Port, pg.User, pg.Password, pg.Database)
}

// New opens and pings the database described by cfg.
func New(ctx context.Context, cfg *config.Config) (*Index, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conns := cfg.PostGIS.MaxConnections
	if conns <= 0 {
		conns = 25
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Index{db: db}, nil
}

// InitSchema recreates the places table.
func (p *Index) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`DROP TABLE IF EXISTS places;`,
		`CREATE TABLE places (
			id BIGSERIAL PRIMARY KEY,
			services SMALLINT NOT NULL,
			location GEOMETRY(POINT, 0) NOT NULL
		);`,
	}

	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// CreateSpatialIndex creates a GIST index on the location column and
// refreshes the planner statistics.
func (p *Index) CreateSpatialIndex(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `CREATE INDEX idx_places_location ON places USING GIST(location);`); err != nil {
		return fmt.Errorf("failed to create spatial index: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, `ANALYZE places;`); err != nil {
		return fmt.Errorf("failed to analyze table: %w", err)
	}
	return nil
}

// BulkInsertPlaces inserts places in transactions of batchSize rows.
func (p *Index) BulkInsertPlaces(ctx context.Context, places []*models.Place) error {
	stmt, err := p.db.PrepareContext(ctx, `
		INSERT INTO places (services, location)
		VALUES ($1, ST_MakePoint($2, $3))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for start := 0; start < len(places); start += batchSize {
		end := min(start+batchSize, len(places))
		if err := p.insertBatch(ctx, stmt, places[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Index) insertBatch(ctx context.Context, stmt *sql.Stmt, places []*models.Place) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStmt := tx.StmtContext(ctx, stmt)
	for _, place := range places {
		if _, err := txStmt.ExecContext(ctx, int16(place.Services), place.X, place.Y); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert place at (%g, %g): %w", place.X, place.Y, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// QueryBox returns up to limit places inside rng offering service. The
// envelope is closed like geo.Rectangle.Contains.
func (p *Index) QueryBox(ctx context.Context, rng geo.Rectangle, service models.ServiceType, limit int) ([]*models.Place, error) {
	if limit <= 0 {
		return []*models.Place{}, nil
	}

	query := `
		SELECT services, ST_X(location), ST_Y(location)
		FROM places
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 0)
		  AND ($5 = 0 OR services & $5 = $5)
		LIMIT $6
	`
	rows, err := p.db.QueryContext(ctx, query,
		rng.Left(), rng.Top(), rng.Right(), rng.Bottom(),
		int16(service), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	results := make([]*models.Place, 0)
	for rows.Next() {
		var services int16
		var x, y float64
		if err := rows.Scan(&services, &x, &y); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, models.NewPlace(models.ServiceSet(services), x, y))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of places in the table.
func (p *Index) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (p *Index) Close() error {
	return p.db.Close()
}
