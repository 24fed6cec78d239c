// Package persistence provides the PostgreSQL implementation of the
// snapshot store.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// PostgresDB implements the Database interface for PostgreSQL.
type PostgresDB struct {
	db           *sql.DB
	snapshots    SnapshotRepository
	keywords     KeywordRepository
	sources      SourceRepository
	aliases      AliasRepository
	searchCounts SearchCountRepository
}

// NewPostgresDB creates a new PostgreSQL database connection.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pg := &PostgresDB{db: db}
	pg.snapshots = &postgresSnapshotRepo{db: db}
	pg.keywords = &postgresKeywordRepo{db: db}
	pg.sources = &postgresSourceRepo{db: db}
	pg.aliases = &postgresAliasRepo{db: db}
	pg.searchCounts = &postgresSearchCountRepo{db: db}
	return pg, nil
}

func (p *PostgresDB) Snapshots() SnapshotRepository       { return p.snapshots }
func (p *PostgresDB) Keywords() KeywordRepository         { return p.keywords }
func (p *PostgresDB) Sources() SourceRepository           { return p.sources }
func (p *PostgresDB) Aliases() AliasRepository            { return p.aliases }
func (p *PostgresDB) SearchCounts() SearchCountRepository { return p.searchCounts }

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}
