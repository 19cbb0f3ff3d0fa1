package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Default league shape used when a league is read for the first time.
const (
	DefaultNumTeams         = 10
	DefaultWeeks            = 38
	DefaultMatchesPerWeek   = 5
	DefaultPointsCorrect    = 1
	DefaultBonusPerfectWeek = 2
)

// AnyVersion as an expected version means "write whatever is stored".
const AnyVersion int64 = -1

// Player is a login credential stored in the league settings. Password holds a
// bcrypt hash; documents written before hashing may still carry plain text.
type Player struct {
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Settings are the rules of a league.
type Settings struct {
	NumTeams         int               `json:"numTeams"`
	Weeks            int               `json:"weeks"`
	MatchesPerWeek   int               `json:"matchesPerWeek"`
	PointsCorrect    float64           `json:"pointsCorrect"`
	BonusPerfectWeek float64           `json:"bonusPerfectWeek"`
	AllowDraw        bool              `json:"allowDraw"`
	Players          map[string]Player `json:"players,omitempty"`
}

// DefaultSettings returns the settings a freshly seeded league starts with.
func DefaultSettings() Settings {
	return Settings{
		NumTeams:         DefaultNumTeams,
		Weeks:            DefaultWeeks,
		MatchesPerWeek:   DefaultMatchesPerWeek,
		PointsCorrect:    DefaultPointsCorrect,
		BonusPerfectWeek: DefaultBonusPerfectWeek,
		AllowDraw:        true,
	}
}

// Validate checks the settings fields the engine depends on.
func (s Settings) Validate() error {
	if s.Weeks <= 0 {
		return &ValidationError{Field: "settings.weeks", Reason: fmt.Sprintf("must be positive, got %d", s.Weeks)}
	}
	if s.MatchesPerWeek <= 0 {
		return &ValidationError{Field: "settings.matchesPerWeek", Reason: fmt.Sprintf("must be positive, got %d", s.MatchesPerWeek)}
	}
	if s.NumTeams < 0 {
		return &ValidationError{Field: "settings.numTeams", Reason: "must not be negative"}
	}
	if !isFinite(s.PointsCorrect) {
		return &ValidationError{Field: "settings.pointsCorrect", Reason: "must be a finite number"}
	}
	if !isFinite(s.BonusPerfectWeek) {
		return &ValidationError{Field: "settings.bonusPerfectWeek", Reason: "must be a finite number"}
	}
	return nil
}

// Fixture is one scheduled match in a week slot.
type Fixture struct {
	Week        int    `json:"week"`
	MatchNumber int    `json:"matchNumber"`
	Home        string `json:"home"`
	Away        string `json:"away"`
}

// LeagueDocument is the whole persisted state of one league.
type LeagueDocument struct {
	Teams     []string          `json:"teams"`
	Settings  Settings          `json:"settings"`
	Schedule  []Fixture         `json:"schedule"`
	Results   map[string]Result `json:"results"`
	Picks     Picks             `json:"picks"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// DefaultTeams returns "Team 1".."Team n".
func DefaultTeams(n int) []string {
	teams := make([]string, n)
	for i := range teams {
		teams[i] = fmt.Sprintf("Team %d", i+1)
	}
	return teams
}

// NewLeagueDocument builds an empty league with the given teams and settings.
// The schedule is left empty; callers fill it from the fixture generator.
func NewLeagueDocument(teams []string, settings Settings, now time.Time) *LeagueDocument {
	settings.NumTeams = len(teams)
	return &LeagueDocument{
		Teams:     append([]string(nil), teams...),
		Settings:  settings,
		Schedule:  []Fixture{},
		Results:   map[string]Result{},
		Picks:     Picks{},
		UpdatedAt: now.UTC(),
	}
}

// EnsureMaps replaces nil collections with empty ones so the document always
// serialises with the full shape.
func (d *LeagueDocument) EnsureMaps() {
	if d.Teams == nil {
		d.Teams = []string{}
	}
	if d.Schedule == nil {
		d.Schedule = []Fixture{}
	}
	if d.Results == nil {
		d.Results = map[string]Result{}
	}
	if d.Picks == nil {
		d.Picks = Picks{}
	}
}

// Fixture looks up a scheduled slot.
func (d *LeagueDocument) Fixture(week, matchNumber int) (Fixture, bool) {
	for _, f := range d.Schedule {
		if f.Week == week && f.MatchNumber == matchNumber {
			return f, true
		}
	}
	return Fixture{}, false
}

// WeekFixtures returns the fixtures of one week in schedule order.
func (d *LeagueDocument) WeekFixtures(week int) []Fixture {
	out := make([]Fixture, 0, d.Settings.MatchesPerWeek)
	for _, f := range d.Schedule {
		if f.Week == week {
			out = append(out, f)
		}
	}
	return out
}

// UserPicks returns the entry for a user key, or ErrPlayerNotFound.
func (d *LeagueDocument) UserPicks(email string) (*UserPicks, error) {
	u, ok := d.Picks[NormalizeEmail(email)]
	if !ok || u == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, email)
	}
	return u, nil
}

// Validate checks the document before it is persisted.
func (d *LeagueDocument) Validate() error {
	if err := ValidateTeams(d.Teams); err != nil {
		return err
	}
	if err := d.Settings.Validate(); err != nil {
		return err
	}
	if err := ValidateSchedule(d.Schedule); err != nil {
		return err
	}
	for key, r := range d.Results {
		if _, _, err := ParseResultKey(key); err != nil {
			return err
		}
		if !validGoals(r.HomeGoals) || !validGoals(r.AwayGoals) {
			return &ValidationError{Field: "results", Reason: fmt.Sprintf("result %s has an invalid score %q-%q", key, r.HomeGoals, r.AwayGoals)}
		}
	}
	for id, u := range d.Picks {
		if u == nil {
			continue
		}
		for week, wp := range u.Weeks {
			if wp == nil {
				continue
			}
			for match, sign := range wp.Picks {
				if !sign.IsValid() {
					return &ValidationError{Field: "picks", Reason: fmt.Sprintf("%s week %d match %d has invalid sign %q", id, week, match, sign)}
				}
			}
		}
	}
	return nil
}

// validGoals accepts an unset score or a finite non-negative number.
func validGoals(g Goals) bool {
	if !g.IsSet() {
		return true
	}
	v, ok := g.Value()
	return ok && v >= 0
}

// Clone returns a deep copy.
func (d *LeagueDocument) Clone() *LeagueDocument {
	c := &LeagueDocument{
		Teams:     append([]string(nil), d.Teams...),
		Settings:  d.Settings,
		Schedule:  append([]Fixture(nil), d.Schedule...),
		Results:   make(map[string]Result, len(d.Results)),
		Picks:     d.Picks.Clone(),
		UpdatedAt: d.UpdatedAt,
	}
	if d.Settings.Players != nil {
		c.Settings.Players = make(map[string]Player, len(d.Settings.Players))
		for k, v := range d.Settings.Players {
			c.Settings.Players[k] = v
		}
	}
	for k, v := range d.Results {
		c.Results[k] = v
	}
	c.EnsureMaps()
	return c
}

// Redacted returns a copy with player passwords blanked, for public reads.
func (d *LeagueDocument) Redacted() *LeagueDocument {
	c := d.Clone()
	for k, p := range c.Settings.Players {
		p.Password = ""
		c.Settings.Players[k] = p
	}
	return c
}

// ValidateTeams rejects empty lists, blank names and duplicates.
func ValidateTeams(teams []string) error {
	if len(teams) < 2 {
		return &ValidationError{Field: "teams", Reason: fmt.Sprintf("need at least 2 teams, got %d", len(teams))}
	}
	seen := make(map[string]struct{}, len(teams))
	for i, t := range teams {
		if strings.TrimSpace(t) == "" {
			return &ValidationError{Field: "teams", Reason: fmt.Sprintf("team %d has an empty name", i+1)}
		}
		name := strings.TrimSpace(t)
		if _, dup := seen[name]; dup {
			return &ValidationError{Field: "teams", Reason: fmt.Sprintf("duplicate team %q", name)}
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ValidateSchedule checks every fixture and that no team is booked twice in a week.
func ValidateSchedule(schedule []Fixture) error {
	slots := make(map[string]struct{}, len(schedule))
	booked := make(map[int]map[string]struct{})
	for _, f := range schedule {
		if f.Week <= 0 || f.MatchNumber <= 0 {
			return &ValidationError{Field: "schedule", Reason: fmt.Sprintf("invalid slot week %d match %d", f.Week, f.MatchNumber)}
		}
		if strings.TrimSpace(f.Home) == "" || strings.TrimSpace(f.Away) == "" {
			return &ValidationError{Field: "schedule", Reason: fmt.Sprintf("week %d match %d is missing a team", f.Week, f.MatchNumber)}
		}
		if f.Home == f.Away {
			return &ValidationError{Field: "schedule", Reason: fmt.Sprintf("%s cannot play itself in week %d", f.Home, f.Week)}
		}
		key := ResultKey(f.Week, f.MatchNumber)
		if _, dup := slots[key]; dup {
			return &ValidationError{Field: "schedule", Reason: fmt.Sprintf("duplicate slot week %d match %d", f.Week, f.MatchNumber)}
		}
		slots[key] = struct{}{}

		if booked[f.Week] == nil {
			booked[f.Week] = make(map[string]struct{})
		}
		for _, team := range []string{f.Home, f.Away} {
			if _, dup := booked[f.Week][team]; dup {
				return &ValidationError{Field: "schedule", Reason: fmt.Sprintf("%s plays twice in week %d", team, f.Week)}
			}
			booked[f.Week][team] = struct{}{}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
