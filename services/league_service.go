package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prediction-league/logging"
	"prediction-league/models"

	"github.com/itbasis/go-clock"
)

// maxWriteAttempts bounds the read-modify-write retries on version conflicts
const maxWriteAttempts = 3

// LeagueOptions configures a LeagueService
type LeagueOptions struct {
	LeagueID           string
	Seed               *LeagueSeed
	LockSubmittedWeeks bool
}

// LeagueService owns every mutation of a league document. Writes read the
// document with its version and write back against that version, re-applying
// the change when another writer got there first.
type LeagueService struct {
	store         DocumentStore
	leagueID      string
	seed          *LeagueSeed
	lockSubmitted bool
	clock         clock.Clock
	logger        *logging.Logger
}

// NewLeagueService creates a new league service
func NewLeagueService(store DocumentStore, clk clock.Clock, opts LeagueOptions) *LeagueService {
	if opts.LeagueID == "" {
		opts.LeagueID = "default"
	}
	if opts.Seed == nil {
		opts.Seed = DefaultLeagueSeed()
	}
	return &LeagueService{
		store:         store,
		leagueID:      opts.LeagueID,
		seed:          opts.Seed,
		lockSubmitted: opts.LockSubmittedWeeks,
		clock:         clk,
		logger:        logging.WithPrefix("LeagueService"),
	}
}

// LeagueID returns the key the service reads and writes
func (s *LeagueService) LeagueID() string {
	return s.leagueID
}

// GetState returns the league document and its version, creating the seeded
// league on first read. An empty schedule is filled from the generator in the
// returned copy only.
func (s *LeagueService) GetState(ctx context.Context) (*models.LeagueDocument, int64, error) {
	doc, version, err := s.store.Get(ctx, s.leagueID)
	if errors.Is(err, models.ErrLeagueNotFound) {
		doc, version, err = s.createSeed(ctx)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load league %s: %w", s.leagueID, err)
	}

	doc.EnsureMaps()
	if len(doc.Schedule) == 0 {
		doc.Schedule = effectiveSchedule(doc)
	}
	return doc, version, nil
}

func (s *LeagueService) createSeed(ctx context.Context) (*models.LeagueDocument, int64, error) {
	doc, err := s.seed.Document(s.now())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build seed: %w", err)
	}

	version, err := s.store.Set(ctx, s.leagueID, doc, 0)
	if errors.Is(err, models.ErrVersionConflict) {
		// Someone else seeded it between our read and write
		return s.store.Get(ctx, s.leagueID)
	}
	if err != nil {
		return nil, 0, err
	}
	s.logger.Infof("Seeded league %s with %d teams and %d fixtures", s.leagueID, len(doc.Teams), len(doc.Schedule))
	return doc, version, nil
}

// SaveState replaces the whole document. expectedVersion follows the
// DocumentStore rules; AnyVersion overwrites unconditionally. Players sent
// without a password keep their stored one and plain passwords are hashed.
func (s *LeagueService) SaveState(ctx context.Context, doc *models.LeagueDocument, expectedVersion int64) (int64, error) {
	if doc == nil {
		return 0, &models.ValidationError{Field: "data", Reason: "missing data"}
	}
	next := doc.Clone()
	next.Settings.NumTeams = len(next.Teams)
	if err := models.ValidateTeams(next.Teams); err != nil {
		return 0, err
	}
	if err := next.Settings.Validate(); err != nil {
		return 0, err
	}
	if len(next.Schedule) == 0 {
		schedule, err := GenerateSchedule(next.Teams, next.Settings.Weeks, next.Settings.MatchesPerWeek)
		if err != nil {
			return 0, err
		}
		next.Schedule = schedule
	}
	if err := next.Validate(); err != nil {
		return 0, err
	}

	current, _, err := s.store.Get(ctx, s.leagueID)
	if err != nil && !errors.Is(err, models.ErrLeagueNotFound) {
		return 0, fmt.Errorf("failed to load league %s: %w", s.leagueID, err)
	}
	var stored map[string]models.Player
	if current != nil {
		stored = current.Settings.Players
	}
	players, err := mergePlayers(next.Settings.Players, stored)
	if err != nil {
		return 0, err
	}
	next.Settings.Players = players
	next.UpdatedAt = s.now()

	version, err := s.store.Set(ctx, s.leagueID, next, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to save league %s: %w", s.leagueID, err)
	}
	s.logger.Infof("League %s replaced (version %d)", s.leagueID, version)
	return version, nil
}

// PickInput is a single pick and/or week submission
type PickInput struct {
	Email       string
	Name        string
	Week        int
	MatchNumber int
	Pick        models.Sign
	Submit      bool
	SubmittedAt string
}

// HasPick reports whether the input carries a pick to record
func (in PickInput) HasPick() bool {
	return in.MatchNumber > 0 && in.Pick != models.SignUndecided
}

// RecordPick upserts one pick, stamps the week as submitted, or both in a
// single write.
func (s *LeagueService) RecordPick(ctx context.Context, in PickInput) error {
	email := models.NormalizeEmail(in.Email)
	if email == "" {
		return &models.ValidationError{Field: "email", Reason: "missing email"}
	}
	if !in.Submit && !in.HasPick() {
		return &models.ValidationError{Field: "pick", Reason: "nothing to record: need a pick or a submission"}
	}
	if in.HasPick() && !in.Pick.IsValid() {
		return &models.ValidationError{Field: "pick", Reason: fmt.Sprintf("invalid pick %q", in.Pick)}
	}
	submittedAt := in.SubmittedAt
	if in.Submit && submittedAt != "" {
		if _, err := time.Parse(time.RFC3339Nano, submittedAt); err != nil {
			return &models.ValidationError{Field: "submittedAt", Reason: "must be an RFC 3339 timestamp"}
		}
	}

	_, err := s.update(ctx, "pick", func(doc *models.LeagueDocument) (bool, error) {
		if in.Week < 1 || in.Week > doc.Settings.Weeks {
			return false, &models.ValidationError{Field: "week", Reason: fmt.Sprintf("week %d outside 1..%d", in.Week, doc.Settings.Weeks)}
		}
		if in.HasPick() {
			if in.Pick == models.SignDraw && !doc.Settings.AllowDraw {
				return false, &models.ValidationError{Field: "pick", Reason: "draws are not allowed in this league"}
			}
			if !hasFixture(doc, in.Week, in.MatchNumber) {
				return false, fmt.Errorf("%w: week %d match %d", models.ErrFixtureNotFound, in.Week, in.MatchNumber)
			}
		}

		user := doc.Picks[email]
		if user == nil {
			user = &models.UserPicks{Weeks: map[int]*models.WeekPicks{}}
			doc.Picks[email] = user
		}
		if user.Weeks == nil {
			user.Weeks = map[int]*models.WeekPicks{}
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			user.Name = name
		} else if user.Name == "" {
			user.Name = email
		}

		week := user.Weeks[in.Week]
		if week == nil {
			week = models.NewWeekPicks()
			user.Weeks[in.Week] = week
		}
		if week.Picks == nil {
			week.Picks = map[int]models.Sign{}
		}

		if s.lockSubmitted && week.IsSubmitted() {
			if in.HasPick() {
				return false, fmt.Errorf("%w: %s week %d", models.ErrWeekSubmitted, email, in.Week)
			}
			return false, nil
		}

		if in.HasPick() {
			week.Picks[in.MatchNumber] = in.Pick
		}
		if in.Submit {
			if submittedAt == "" {
				submittedAt = s.now().Format(time.RFC3339Nano)
			}
			week.SubmittedAt = submittedAt
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Debugf("Recorded pick for %s week %d (match %d, submit %t)", email, in.Week, in.MatchNumber, in.Submit)
	return nil
}

// DeletePicks removes a whole week of picks, submission included, or a single
// match when matchNumber is positive. Deleting something absent succeeds.
func (s *LeagueService) DeletePicks(ctx context.Context, email string, week, matchNumber int) error {
	email = models.NormalizeEmail(email)
	if email == "" || week <= 0 {
		return &models.ValidationError{Field: "delete", Reason: "missing email/week for delete"}
	}

	_, err := s.update(ctx, "delete", func(doc *models.LeagueDocument) (bool, error) {
		user := doc.Picks[email]
		wp := user.Week(week)
		if wp == nil {
			return false, nil
		}
		if matchNumber > 0 {
			if _, ok := wp.Picks[matchNumber]; !ok {
				return false, nil
			}
			delete(wp.Picks, matchNumber)
			return true, nil
		}
		delete(user.Weeks, week)
		return true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Infof("Deleted picks for %s week %d (match %d)", email, week, matchNumber)
	return nil
}

// SetResult stores the score of a scheduled match. Two empty values clear it.
func (s *LeagueService) SetResult(ctx context.Context, week, matchNumber int, home, away models.Goals) error {
	for field, g := range map[string]models.Goals{"hg": home, "ag": away} {
		if !g.IsSet() {
			continue
		}
		if v, ok := g.Value(); !ok || v < 0 {
			return &models.ValidationError{Field: field, Reason: fmt.Sprintf("invalid score %q", string(g))}
		}
	}

	_, err := s.update(ctx, "result", func(doc *models.LeagueDocument) (bool, error) {
		if !hasFixture(doc, week, matchNumber) {
			return false, fmt.Errorf("%w: week %d match %d", models.ErrFixtureNotFound, week, matchNumber)
		}
		key := models.ResultKey(week, matchNumber)
		if !home.IsSet() && !away.IsSet() {
			if _, ok := doc.Results[key]; !ok {
				return false, nil
			}
			delete(doc.Results, key)
			return true, nil
		}
		doc.Results[key] = models.Result{HomeGoals: home, AwayGoals: away}
		return true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Infof("Result %d_%d set to %s-%s", week, matchNumber, home, away)
	return nil
}

// Players returns the registered players of the league
func (s *LeagueService) Players(ctx context.Context) (map[string]models.Player, error) {
	doc, _, err := s.GetState(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Settings.Players, nil
}

// AddPlayer registers or replaces a player. The password is stored hashed.
func (s *LeagueService) AddPlayer(ctx context.Context, username, password, name string) (models.Player, error) {
	username = models.NormalizeEmail(username)
	if username == "" || password == "" {
		return models.Player{}, &models.ValidationError{Field: "user", Reason: "missing user/pwd"}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return models.Player{}, err
	}

	player := models.Player{Password: hashed, Name: name}
	_, err = s.update(ctx, "add player", func(doc *models.LeagueDocument) (bool, error) {
		if doc.Settings.Players == nil {
			doc.Settings.Players = map[string]models.Player{}
		}
		doc.Settings.Players[username] = player
		return true, nil
	})
	if err != nil {
		return models.Player{}, err
	}
	s.logger.Infof("Player %s saved", username)
	return player, nil
}

// RemovePlayer deletes a player's credentials; their picks stay.
func (s *LeagueService) RemovePlayer(ctx context.Context, username string) error {
	username = models.NormalizeEmail(username)
	_, err := s.update(ctx, "remove player", func(doc *models.LeagueDocument) (bool, error) {
		if _, ok := doc.Settings.Players[username]; !ok {
			return false, fmt.Errorf("%w: %s", models.ErrPlayerNotFound, username)
		}
		delete(doc.Settings.Players, username)
		return true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Infof("Player %s removed", username)
	return nil
}

// RegenerateSchedule replaces the schedule with a generated one. Empty teams
// or a zero week count keep the current values.
func (s *LeagueService) RegenerateSchedule(ctx context.Context, teams []string, weeks int) ([]models.Fixture, error) {
	var schedule []models.Fixture
	_, err := s.update(ctx, "regenerate", func(doc *models.LeagueDocument) (bool, error) {
		nextTeams := doc.Teams
		if len(teams) > 0 {
			nextTeams = make([]string, len(teams))
			for i, t := range teams {
				nextTeams[i] = strings.TrimSpace(t)
			}
		}
		nextWeeks := doc.Settings.Weeks
		if weeks != 0 {
			nextWeeks = weeks
		}

		generated, err := GenerateSchedule(nextTeams, nextWeeks, doc.Settings.MatchesPerWeek)
		if err != nil {
			return false, err
		}
		doc.Teams = nextTeams
		doc.Settings.NumTeams = len(nextTeams)
		doc.Settings.Weeks = nextWeeks
		doc.Schedule = generated
		schedule = generated
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Schedule regenerated: %d fixtures", len(schedule))
	return schedule, nil
}

// ImportSchedule replaces the schedule with fixtures parsed from CSV text
func (s *LeagueService) ImportSchedule(ctx context.Context, csvText string) ([]models.Fixture, error) {
	fixtures, err := ParseScheduleCSV(csvText)
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, &models.ValidationError{Field: "csv", Reason: "no valid rows"}
	}
	if err := models.ValidateSchedule(fixtures); err != nil {
		return nil, err
	}

	_, err = s.update(ctx, "import", func(doc *models.LeagueDocument) (bool, error) {
		doc.Schedule = fixtures
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Schedule imported: %d fixtures", len(fixtures))
	return fixtures, nil
}

// Leaderboard ranks every user with picks
func (s *LeagueService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	doc, _, err := s.GetState(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeLeaderboard(doc.Picks, doc.Results, doc.Settings)
}

// WeeklySeries returns every user's points week by week
func (s *LeagueService) WeeklySeries(ctx context.Context) (*models.WeeklySeries, error) {
	doc, _, err := s.GetState(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeWeeklySeries(doc.Picks, doc.Results, doc.Settings)
}

// Ping checks the backing store
func (s *LeagueService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// update runs fn against the current document and writes the result back
// against the version it was read at. fn returning false means nothing
// changed and nothing is written.
func (s *LeagueService) update(ctx context.Context, op string, fn func(doc *models.LeagueDocument) (bool, error)) (*models.LeagueDocument, error) {
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		doc, version, err := s.store.Get(ctx, s.leagueID)
		if errors.Is(err, models.ErrLeagueNotFound) {
			doc, err = s.seed.Document(s.now())
			version = 0
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load league %s: %w", s.leagueID, err)
		}
		doc.EnsureMaps()

		changed, err := fn(doc)
		if err != nil {
			return nil, err
		}
		if !changed {
			return doc, nil
		}

		doc.UpdatedAt = s.now()
		_, err = s.store.Set(ctx, s.leagueID, doc, version)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to save league %s: %w", s.leagueID, err)
		}
		lastErr = err
		s.logger.Warnf("Version conflict on %s (attempt %d/%d)", op, attempt, maxWriteAttempts)
	}
	return nil, lastErr
}

func (s *LeagueService) now() time.Time {
	return s.clock.Now().UTC()
}

// effectiveSchedule is the stored schedule, or a generated one when none is stored
func effectiveSchedule(doc *models.LeagueDocument) []models.Fixture {
	if len(doc.Schedule) > 0 {
		return doc.Schedule
	}
	schedule, err := GenerateSchedule(doc.Teams, doc.Settings.Weeks, doc.Settings.MatchesPerWeek)
	if err != nil {
		return []models.Fixture{}
	}
	return schedule
}

func hasFixture(doc *models.LeagueDocument, week, matchNumber int) bool {
	for _, f := range effectiveSchedule(doc) {
		if f.Week == week && f.MatchNumber == matchNumber {
			return true
		}
	}
	return false
}

// mergePlayers keeps stored passwords for players sent without one and hashes
// any password that is not already a bcrypt hash
func mergePlayers(incoming, stored map[string]models.Player) (map[string]models.Player, error) {
	if len(incoming) == 0 {
		return incoming, nil
	}
	out := make(map[string]models.Player, len(incoming))
	for username, p := range incoming {
		key := models.NormalizeEmail(username)
		if key == "" {
			return nil, &models.ValidationError{Field: "settings.players", Reason: "empty username"}
		}
		switch {
		case p.Password == "":
			prev, ok := stored[key]
			if !ok || prev.Password == "" {
				return nil, &models.ValidationError{Field: "settings.players", Reason: fmt.Sprintf("player %s has no password", key)}
			}
			p.Password = prev.Password
		case !isBcryptHash(p.Password):
			hashed, err := HashPassword(p.Password)
			if err != nil {
				return nil, err
			}
			p.Password = hashed
		}
		out[key] = p
	}
	return out, nil
}
