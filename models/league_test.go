package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTeams(t *testing.T) {
	assert.NoError(t, ValidateTeams([]string{"A", "B"}))
	assert.True(t, IsValidationError(ValidateTeams([]string{"A"})))
	assert.True(t, IsValidationError(ValidateTeams([]string{"A", " "})))
	assert.True(t, IsValidationError(ValidateTeams([]string{"A", "B", "A"})))
	assert.True(t, IsValidationError(ValidateTeams([]string{"A", "B", " A "})))
}

func TestLeagueDocument_ValidateScoresAndPicks(t *testing.T) {
	newDoc := func() *LeagueDocument {
		doc := NewLeagueDocument([]string{"A", "B"}, DefaultSettings(), time.Now())
		doc.Schedule = []Fixture{{Week: 1, MatchNumber: 1, Home: "A", Away: "B"}}
		doc.Results[ResultKey(1, 1)] = Result{HomeGoals: "2", AwayGoals: ""}
		wp := NewWeekPicks()
		wp.Picks[1] = SignDraw
		doc.Picks["ann@x.com"] = &UserPicks{Name: "Ann", Weeks: map[int]*WeekPicks{1: wp}}
		return doc
	}
	require.NoError(t, newDoc().Validate())

	for _, goals := range []Goals{"abc", "-1", "NaN", "Inf"} {
		doc := newDoc()
		doc.Results[ResultKey(1, 1)] = Result{HomeGoals: goals, AwayGoals: "0"}
		var verr *ValidationError
		require.ErrorAs(t, doc.Validate(), &verr, "goals %q", goals)
		assert.Equal(t, "results", verr.Field)
	}

	for _, sign := range []Sign{"3", "x", SignUndecided} {
		doc := newDoc()
		doc.Picks["ann@x.com"].Weeks[1].Picks[1] = sign
		var verr *ValidationError
		require.ErrorAs(t, doc.Validate(), &verr, "sign %q", sign)
		assert.Equal(t, "picks", verr.Field)
	}
}

func TestValidateSchedule(t *testing.T) {
	ok := []Fixture{
		{Week: 1, MatchNumber: 1, Home: "A", Away: "B"},
		{Week: 1, MatchNumber: 2, Home: "C", Away: "D"},
		{Week: 2, MatchNumber: 1, Home: "B", Away: "A"},
	}
	assert.NoError(t, ValidateSchedule(ok))

	tests := map[string][]Fixture{
		"zero week":      {{Week: 0, MatchNumber: 1, Home: "A", Away: "B"}},
		"missing team":   {{Week: 1, MatchNumber: 1, Home: "A", Away: ""}},
		"self match":     {{Week: 1, MatchNumber: 1, Home: "A", Away: "A"}},
		"duplicate slot": {{Week: 1, MatchNumber: 1, Home: "A", Away: "B"}, {Week: 1, MatchNumber: 1, Home: "C", Away: "D"}},
		"double booked":  {{Week: 1, MatchNumber: 1, Home: "A", Away: "B"}, {Week: 1, MatchNumber: 2, Home: "A", Away: "C"}},
	}
	for name, schedule := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, IsValidationError(ValidateSchedule(schedule)))
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())

	s.MatchesPerWeek = 0
	assert.True(t, IsValidationError(s.Validate()))

	s = DefaultSettings()
	s.Weeks = -1
	assert.True(t, IsValidationError(s.Validate()))
}

func TestLeagueDocument_CloneAndRedact(t *testing.T) {
	doc := NewLeagueDocument(DefaultTeams(4), DefaultSettings(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 4, doc.Settings.NumTeams)
	assert.Equal(t, []string{"Team 1", "Team 2", "Team 3", "Team 4"}, doc.Teams)

	doc.Settings.Players = map[string]Player{"ann@x.com": {Password: "secret", Name: "Ann"}}
	doc.Results["1_1"] = Result{HomeGoals: "1", AwayGoals: "0"}

	redacted := doc.Redacted()
	assert.Equal(t, "", redacted.Settings.Players["ann@x.com"].Password)
	assert.Equal(t, "Ann", redacted.Settings.Players["ann@x.com"].Name)
	assert.Equal(t, "secret", doc.Settings.Players["ann@x.com"].Password)

	clone := doc.Clone()
	clone.Results["1_1"] = Result{}
	clone.Teams[0] = "Other"
	assert.Equal(t, Goals("1"), doc.Results["1_1"].HomeGoals)
	assert.Equal(t, "Team 1", doc.Teams[0])
}

func TestLeagueDocument_Lookups(t *testing.T) {
	doc := NewLeagueDocument([]string{"A", "B", "C", "D"}, DefaultSettings(), time.Now())
	doc.Schedule = []Fixture{
		{Week: 1, MatchNumber: 1, Home: "A", Away: "B"},
		{Week: 1, MatchNumber: 2, Home: "C", Away: "D"},
		{Week: 2, MatchNumber: 1, Home: "B", Away: "C"},
	}

	f, ok := doc.Fixture(1, 2)
	require.True(t, ok)
	assert.Equal(t, "C", f.Home)
	_, ok = doc.Fixture(3, 1)
	assert.False(t, ok)
	assert.Len(t, doc.WeekFixtures(1), 2)

	_, err := doc.UserPicks("nobody@x.com")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	doc.Results["bad"] = Result{}
	assert.True(t, IsValidationError(doc.Validate()))
}
