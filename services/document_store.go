package services

import (
	"context"

	"prediction-league/models"
)

// AnyVersion makes Set overwrite whatever is stored.
const AnyVersion = models.AnyVersion

// DocumentStore persists whole league documents under a league id.
//
// Set writes conditionally on expectedVersion: AnyVersion replaces
// unconditionally, 0 only creates, and a positive value replaces only when it
// matches the stored version. A failed condition returns
// models.ErrVersionConflict. Get returns models.ErrLeagueNotFound for an
// unknown league.
type DocumentStore interface {
	Get(ctx context.Context, leagueID string) (*models.LeagueDocument, int64, error)
	Set(ctx context.Context, leagueID string, doc *models.LeagueDocument, expectedVersion int64) (int64, error)
	Ping(ctx context.Context) error
}
