package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"prediction-league/logging"
	"prediction-league/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var leagueSchema = []string{
	`CREATE TABLE IF NOT EXISTS states (
		league     text PRIMARY KEY,
		data       jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE states ADD COLUMN IF NOT EXISTS version bigint NOT NULL DEFAULT 1`,
}

// PostgresLeagueRepository stores league documents in the states table, one
// jsonb row per league
type PostgresLeagueRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLeagueRepository connects to Postgres and makes sure the table exists
func NewPostgresLeagueRepository(ctx context.Context, connString string) (*PostgresLeagueRepository, error) {
	logger := logging.WithPrefix("Postgres")

	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	repo := &PostgresLeagueRepository{pool: pool}
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Connected and schema ready")
	return repo, nil
}

// Migrate creates the states table or adds the version column to an existing one
func (r *PostgresLeagueRepository) Migrate(ctx context.Context) error {
	for _, stmt := range leagueSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate states table: %w", err)
		}
	}
	return nil
}

// Get loads a league document and its version
func (r *PostgresLeagueRepository) Get(ctx context.Context, leagueID string) (*models.LeagueDocument, int64, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var (
		data    []byte
		version int64
	)
	err := r.pool.QueryRow(ctx, `SELECT data, version FROM states WHERE league = $1`, leagueID).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, fmt.Errorf("%w: %s", models.ErrLeagueNotFound, leagueID)
		}
		return nil, 0, fmt.Errorf("failed to read league %s: %w", leagueID, err)
	}

	doc, err := decodeDocument(string(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode league %s: %w", leagueID, err)
	}
	return doc, version, nil
}

// Set writes a league document following the DocumentStore version rules
func (r *PostgresLeagueRepository) Set(ctx context.Context, leagueID string, doc *models.LeagueDocument, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to encode league %s: %w", leagueID, err)
	}
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var query string
	args := pgx.NamedArgs{"league": leagueID, "data": data}
	switch {
	case expectedVersion == 0:
		query = `INSERT INTO states (league, data, version, updated_at)
				 VALUES (@league, @data, 1, now())
				 ON CONFLICT (league) DO NOTHING
				 RETURNING version`
	case expectedVersion > 0:
		query = `UPDATE states SET data = @data, version = version + 1, updated_at = now()
				 WHERE league = @league AND version = @version
				 RETURNING version`
		args["version"] = expectedVersion
	case expectedVersion == models.AnyVersion:
		query = `INSERT INTO states (league, data, version, updated_at)
				 VALUES (@league, @data, 1, now())
				 ON CONFLICT (league) DO UPDATE
				 SET data = excluded.data, version = states.version + 1, updated_at = now()
				 RETURNING version`
	default:
		return 0, &models.ValidationError{Field: "version", Reason: fmt.Sprintf("invalid version %d", expectedVersion)}
	}

	var version int64
	if err := r.pool.QueryRow(ctx, query, args).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: league %s expected version %d", models.ErrVersionConflict, leagueID, expectedVersion)
		}
		return 0, fmt.Errorf("failed to save league %s: %w", leagueID, err)
	}
	return version, nil
}

// Ping checks the database connection
func (r *PostgresLeagueRepository) Ping(ctx context.Context) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()
	return r.pool.Ping(ctx)
}

// Count returns the number of stored leagues
func (r *PostgresLeagueRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM states`).Scan(&n)
	return n, err
}

// Close releases the pool
func (r *PostgresLeagueRepository) Close() {
	r.pool.Close()
}
