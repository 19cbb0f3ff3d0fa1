package services

import (
	"testing"

	"prediction-league/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekResults(week int, scores ...[2]string) map[string]models.Result {
	out := map[string]models.Result{}
	for i, s := range scores {
		out[models.ResultKey(week, i+1)] = models.Result{HomeGoals: models.Goals(s[0]), AwayGoals: models.Goals(s[1])}
	}
	return out
}

func userWeek(name string, week int, signs ...models.Sign) *models.UserPicks {
	wp := models.NewWeekPicks()
	for i, s := range signs {
		if s != models.SignUndecided {
			wp.Picks[i+1] = s
		}
	}
	return &models.UserPicks{Name: name, Weeks: map[int]*models.WeekPicks{week: wp}}
}

// Results for week 1 resolve to 1, X, 2, 1, 2.
var weekOneResults = weekResults(1,
	[2]string{"2", "0"},
	[2]string{"1", "1"},
	[2]string{"0", "1"},
	[2]string{"3", "2"},
	[2]string{"0", "2"},
)

func TestComputeWeeklyScores_PerfectWeek(t *testing.T) {
	picks := models.Picks{
		"ann@x.com": userWeek("Ann", 1, "1", "X", "2", "1", "2"),
	}
	scores, err := ComputeWeeklyScores(picks, weekOneResults, models.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, scores, 1)

	assert.Equal(t, models.WeekScore{Identity: "ann@x.com", Name: "Ann", Week: 1, Correct: 5, Perfect: true, Points: 7}, scores[0])
}

func TestComputeWeeklyScores_PartialWeek(t *testing.T) {
	picks := models.Picks{
		"bob@x.com": userWeek("Bob", 1, "1", "1", "1", "1", "1"),
	}
	scores, err := ComputeWeeklyScores(picks, weekOneResults, models.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 2, scores[0].Correct)
	assert.False(t, scores[0].Perfect)
	assert.Equal(t, 2.0, scores[0].Points)
}

func TestComputeWeeklyScores_MissingResultsNeverCount(t *testing.T) {
	results := weekResults(1,
		[2]string{"2", "0"},
		[2]string{"", "1"},
		[2]string{"x", "1"},
	)
	picks := models.Picks{
		"ann@x.com": userWeek("Ann", 1, "1", "2", "1", "1", "X"),
	}
	scores, err := ComputeWeeklyScores(picks, results, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, scores[0].Correct)
}

func TestComputeWeeklyScores_IgnoresSlotsBeyondMatchesPerWeek(t *testing.T) {
	settings := models.DefaultSettings()
	settings.MatchesPerWeek = 2
	results := weekResults(1, [2]string{"1", "0"}, [2]string{"0", "0"}, [2]string{"0", "1"})
	picks := models.Picks{"ann@x.com": userWeek("Ann", 1, "1", "X", "2")}

	scores, err := ComputeWeeklyScores(picks, results, settings)
	require.NoError(t, err)
	assert.Equal(t, 2, scores[0].Correct)
	assert.True(t, scores[0].Perfect)
	assert.Equal(t, 4.0, scores[0].Points)
}

func TestComputeWeeklyScores_Ordering(t *testing.T) {
	picks := models.Picks{
		"b@x.com": {Weeks: map[int]*models.WeekPicks{2: models.NewWeekPicks(), 1: models.NewWeekPicks()}},
		"a@x.com": {Weeks: map[int]*models.WeekPicks{2: models.NewWeekPicks()}},
	}
	scores, err := ComputeWeeklyScores(picks, nil, models.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, 1, scores[0].Week)
	assert.Equal(t, "b@x.com", scores[0].Identity)
	assert.Equal(t, "b@x.com", scores[0].Name)
	assert.Equal(t, "a@x.com", scores[1].Identity)
	assert.Equal(t, "b@x.com", scores[2].Identity)
}

func TestComputeLeaderboard_Ranking(t *testing.T) {
	settings := models.DefaultSettings()
	settings.BonusPerfectWeek = 0

	results := weekResults(1,
		[2]string{"2", "0"},
		[2]string{"1", "1"},
		[2]string{"0", "1"},
		[2]string{"3", "2"},
		[2]string{"0", "2"},
	)
	picks := models.Picks{
		// 2 correct
		"carl@x.com": userWeek("Carl", 1, "1", "X", "1", "2", "1"),
		// 3 correct
		"dana@x.com": userWeek("Dana", 1, "1", "X", "2", "2", "1"),
		// 2 correct, same as carl, identity breaks the tie
		"beth@x.com": userWeek("Beth", 1, "1", "1", "1", "1", "1"),
		// no picks at all
		"zed@x.com": {Name: "Zed", Weeks: map[int]*models.WeekPicks{}},
	}

	board, err := ComputeLeaderboard(picks, results, settings)
	require.NoError(t, err)
	require.Len(t, board, 4)

	var order []string
	for _, e := range board {
		order = append(order, e.Identity)
	}
	assert.Equal(t, []string{"dana@x.com", "beth@x.com", "carl@x.com", "zed@x.com"}, order)
	for i, e := range board {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, 3, board[0].TotalCorrect)
	assert.Equal(t, 3.0, board[0].TotalPoints)
	assert.Equal(t, "Zed", board[3].Name)
	assert.Equal(t, 0.0, board[3].TotalPoints)
}

func TestComputeLeaderboard_CorrectBreaksPointsTie(t *testing.T) {
	settings := models.DefaultSettings()
	settings.MatchesPerWeek = 2
	settings.PointsCorrect = 1
	settings.BonusPerfectWeek = 1

	results := map[string]models.Result{}
	for k, v := range weekResults(1, [2]string{"1", "0"}, [2]string{"1", "0"}) {
		results[k] = v
	}
	for k, v := range weekResults(2, [2]string{"1", "0"}, [2]string{"1", "0"}) {
		results[k] = v
	}

	picks := models.Picks{
		// one perfect week: 2 correct + 1 bonus = 3 points
		"amy@x.com": userWeek("Amy", 1, "1", "1"),
		// one correct pick in each of three weeks: 3 points
		"ben@x.com": {Name: "Ben", Weeks: map[int]*models.WeekPicks{
			1: {Picks: map[int]models.Sign{1: "1", 2: "2"}},
			2: {Picks: map[int]models.Sign{1: "1", 2: "X"}},
		}},
	}
	picks["ben@x.com"].Weeks[3] = &models.WeekPicks{Picks: map[int]models.Sign{1: "1"}}
	results[models.ResultKey(3, 1)] = models.Result{HomeGoals: "2", AwayGoals: "1"}

	board, err := ComputeLeaderboard(picks, results, settings)
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, 3.0, board[0].TotalPoints)
	assert.Equal(t, 3.0, board[1].TotalPoints)
	assert.Equal(t, "ben@x.com", board[0].Identity)
	assert.Equal(t, 3, board[0].TotalCorrect)
	assert.Equal(t, "amy@x.com", board[1].Identity)
	assert.Equal(t, 1, board[1].PerfectWeeks)
}

func TestComputeLeaderboard_DoesNotMutateInputs(t *testing.T) {
	picks := models.Picks{
		"ann@x.com": userWeek("Ann", 1, "1", "X", "2", "1", "2"),
		"bob@x.com": userWeek("", 1, "2"),
	}
	before := picks.Clone()

	first, err := ComputeLeaderboard(picks, weekOneResults, models.DefaultSettings())
	require.NoError(t, err)
	second, err := ComputeLeaderboard(picks, weekOneResults, models.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, picks)
	assert.Equal(t, "bob@x.com", first[1].Name)
}

func TestScoring_AggregationError(t *testing.T) {
	settings := models.DefaultSettings()
	settings.MatchesPerWeek = 0

	_, err := ComputeWeeklyScores(models.Picks{}, nil, settings)
	assert.True(t, models.IsAggregationError(err))
	_, err = ComputeLeaderboard(models.Picks{}, nil, settings)
	assert.True(t, models.IsAggregationError(err))
	_, err = ComputeWeeklySeries(models.Picks{}, nil, settings)
	assert.True(t, models.IsAggregationError(err))
}

func TestComputeLeaderboard_Empty(t *testing.T) {
	board, err := ComputeLeaderboard(models.Picks{}, nil, models.DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestComputeWeeklySeries(t *testing.T) {
	settings := models.DefaultSettings()
	settings.Weeks = 3
	settings.Players = map[string]models.Player{
		"cat@x.com": {Name: "Cat"},
		"ann@x.com": {Name: "Annie"},
	}
	picks := models.Picks{
		"ann@x.com": userWeek("Ann", 1, "1", "X", "2", "1", "2"),
		"bob@x.com": userWeek("Bob", 2, "1"),
	}

	series, err := ComputeWeeklySeries(picks, weekOneResults, settings)
	require.NoError(t, err)

	assert.Equal(t, []models.SeriesUser{
		{Identity: "ann@x.com", Name: "Annie"},
		{Identity: "bob@x.com", Name: "Bob"},
		{Identity: "cat@x.com", Name: "Cat"},
	}, series.Users)
	require.Len(t, series.Rows, 3)

	week1 := series.Rows[0]
	assert.Equal(t, 1, week1.Week)
	require.NotNil(t, week1.Points["ann@x.com"])
	assert.Equal(t, 7.0, *week1.Points["ann@x.com"])
	assert.Nil(t, week1.Points["bob@x.com"])
	assert.Nil(t, week1.Points["cat@x.com"])

	week2 := series.Rows[1]
	require.NotNil(t, week2.Points["bob@x.com"])
	assert.Equal(t, 0.0, *week2.Points["bob@x.com"])

	for _, identity := range []string{"ann@x.com", "bob@x.com", "cat@x.com"} {
		assert.Contains(t, series.Rows[2].Points, identity)
		assert.Nil(t, series.Rows[2].Points[identity])
	}
}
