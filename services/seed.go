package services

import (
	"fmt"
	"os"
	"time"

	"prediction-league/models"

	"gopkg.in/yaml.v2"
)

// LeagueSeed is the starting shape of a league that has never been saved.
// It can be loaded from a YAML file such as:
//
//	teams: [Lions, Tigers, Bears, Wolves]
//	weeks: 6
//	matchesPerWeek: 2
//	pointsCorrect: 1
//	bonusPerfectWeek: 3
//	allowDraw: false
type LeagueSeed struct {
	Teams            []string `yaml:"teams"`
	Weeks            int      `yaml:"weeks"`
	MatchesPerWeek   int      `yaml:"matchesPerWeek"`
	PointsCorrect    *float64 `yaml:"pointsCorrect"`
	BonusPerfectWeek *float64 `yaml:"bonusPerfectWeek"`
	AllowDraw        *bool    `yaml:"allowDraw"`
}

// DefaultLeagueSeed returns ten placeholder teams over 38 weeks of 5 matches
func DefaultLeagueSeed() *LeagueSeed {
	settings := models.DefaultSettings()
	return &LeagueSeed{
		Teams:            models.DefaultTeams(models.DefaultNumTeams),
		Weeks:            settings.Weeks,
		MatchesPerWeek:   settings.MatchesPerWeek,
		PointsCorrect:    &settings.PointsCorrect,
		BonusPerfectWeek: &settings.BonusPerfectWeek,
		AllowDraw:        &settings.AllowDraw,
	}
}

// LoadLeagueSeed reads a YAML seed file. Fields left out keep their defaults.
func LoadLeagueSeed(path string) (*LeagueSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read league seed %s: %w", path, err)
	}

	seed := DefaultLeagueSeed()
	var fromFile LeagueSeed
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse league seed %s: %w", path, err)
	}
	if len(fromFile.Teams) > 0 {
		seed.Teams = fromFile.Teams
	}
	if fromFile.Weeks != 0 {
		seed.Weeks = fromFile.Weeks
	}
	if fromFile.MatchesPerWeek != 0 {
		seed.MatchesPerWeek = fromFile.MatchesPerWeek
	}
	if fromFile.PointsCorrect != nil {
		seed.PointsCorrect = fromFile.PointsCorrect
	}
	if fromFile.BonusPerfectWeek != nil {
		seed.BonusPerfectWeek = fromFile.BonusPerfectWeek
	}
	if fromFile.AllowDraw != nil {
		seed.AllowDraw = fromFile.AllowDraw
	}

	if _, err := seed.Document(time.Time{}); err != nil {
		return nil, fmt.Errorf("invalid league seed %s: %w", path, err)
	}
	return seed, nil
}

// Settings converts the seed to league settings
func (s *LeagueSeed) Settings() models.Settings {
	settings := models.DefaultSettings()
	settings.NumTeams = len(s.Teams)
	settings.Weeks = s.Weeks
	settings.MatchesPerWeek = s.MatchesPerWeek
	if s.PointsCorrect != nil {
		settings.PointsCorrect = *s.PointsCorrect
	}
	if s.BonusPerfectWeek != nil {
		settings.BonusPerfectWeek = *s.BonusPerfectWeek
	}
	if s.AllowDraw != nil {
		settings.AllowDraw = *s.AllowDraw
	}
	return settings
}

// Document builds the seeded league, schedule included
func (s *LeagueSeed) Document(now time.Time) (*models.LeagueDocument, error) {
	settings := s.Settings()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	doc := models.NewLeagueDocument(s.Teams, settings, now)
	schedule, err := GenerateSchedule(doc.Teams, settings.Weeks, settings.MatchesPerWeek)
	if err != nil {
		return nil, err
	}
	doc.Schedule = schedule
	return doc, nil
}
