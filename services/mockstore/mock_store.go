package mockstore

import (
	"context"

	"prediction-league/models"

	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (s *Store) Get(ctx context.Context, leagueID string) (*models.LeagueDocument, int64, error) {
	args := s.Called(ctx, leagueID)

	var doc *models.LeagueDocument
	if args.Get(0) != nil {
		// Hand out a copy so a test can return the same document twice.
		doc = args.Get(0).(*models.LeagueDocument).Clone()
	}
	return doc, args.Get(1).(int64), args.Error(2)
}

func (s *Store) Set(ctx context.Context, leagueID string, doc *models.LeagueDocument, expectedVersion int64) (int64, error) {
	args := s.Called(ctx, leagueID, doc, expectedVersion)
	return args.Get(0).(int64), args.Error(1)
}

func (s *Store) Ping(ctx context.Context) error {
	args := s.Called(ctx)
	return args.Error(0)
}
