package interfaces

import (
	"prediction-league/database"
	"prediction-league/services"
)

// Interface compliance checks - these will fail to compile if implementations drift
var (
	// Document stores
	_ services.DocumentStore = (*services.MemoryDocumentStore)(nil)
	_ services.DocumentStore = (*database.MongoLeagueRepository)(nil)
	_ services.DocumentStore = (*database.PostgresLeagueRepository)(nil)

	_ DocumentCounter = (*services.MemoryDocumentStore)(nil)
	_ DocumentCounter = (*database.MongoLeagueRepository)(nil)
	_ DocumentCounter = (*database.PostgresLeagueRepository)(nil)

	// Services used by handlers
	_ LeagueService = (*services.LeagueService)(nil)
	_ AuthService   = (*services.AuthService)(nil)
)
