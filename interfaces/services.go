package interfaces

import (
	"context"

	"prediction-league/models"
	"prediction-league/services"
)

// LeagueService defines the league operations used by handlers
type LeagueService interface {
	// State
	GetState(ctx context.Context) (*models.LeagueDocument, int64, error)
	SaveState(ctx context.Context, doc *models.LeagueDocument, expectedVersion int64) (int64, error)

	// Picks
	RecordPick(ctx context.Context, in services.PickInput) error
	DeletePicks(ctx context.Context, email string, week, matchNumber int) error

	// Admin
	SetResult(ctx context.Context, week, matchNumber int, home, away models.Goals) error
	Players(ctx context.Context) (map[string]models.Player, error)
	AddPlayer(ctx context.Context, username, password, name string) (models.Player, error)
	RemovePlayer(ctx context.Context, username string) error
	RegenerateSchedule(ctx context.Context, teams []string, weeks int) ([]models.Fixture, error)
	ImportSchedule(ctx context.Context, csvText string) ([]models.Fixture, error)

	// Scores
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	WeeklySeries(ctx context.Context) (*models.WeeklySeries, error)

	LeagueID() string
	Ping(ctx context.Context) error
}

// AuthService defines token and credential operations
type AuthService interface {
	HasAdminPassword() bool
	CheckAdminPassword(password string) error
	AdminLogin(password string) (string, error)
	PlayerLogin(players map[string]models.Player, username, password string) (string, string, error)
	ValidateToken(tokenString string) (*services.JWTClaims, error)
}
