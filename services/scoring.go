package services

import (
	"fmt"
	"sort"

	"prediction-league/models"
)

// ComputeWeeklyScores scores every week that appears in each user's picks.
// Results are ordered by week, then by identity.
func ComputeWeeklyScores(picks models.Picks, results map[string]models.Result, settings models.Settings) ([]models.WeekScore, error) {
	if settings.MatchesPerWeek <= 0 {
		return nil, &models.AggregationError{Reason: fmt.Sprintf("matchesPerWeek must be positive, got %d", settings.MatchesPerWeek)}
	}

	var scores []models.WeekScore
	for _, identity := range picks.Identities() {
		user := picks[identity]
		for _, week := range user.WeekNumbers() {
			scores = append(scores, scoreWeek(identity, displayName(identity, user), week, user.Week(week), results, settings))
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Week != scores[j].Week {
			return scores[i].Week < scores[j].Week
		}
		return scores[i].Identity < scores[j].Identity
	})
	return scores, nil
}

// ComputeLeaderboard aggregates weekly scores per user and ranks them by total
// points, then correct picks, then perfect weeks, then identity.
func ComputeLeaderboard(picks models.Picks, results map[string]models.Result, settings models.Settings) ([]models.LeaderboardEntry, error) {
	weekly, err := ComputeWeeklyScores(picks, results, settings)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*models.LeaderboardEntry, len(picks))
	entries := make([]*models.LeaderboardEntry, 0, len(picks))
	for _, identity := range picks.Identities() {
		e := &models.LeaderboardEntry{Identity: identity, Name: displayName(identity, picks[identity])}
		totals[identity] = e
		entries = append(entries, e)
	}
	for _, s := range weekly {
		e := totals[s.Identity]
		e.TotalCorrect += s.Correct
		e.TotalPoints += s.Points
		if s.Perfect {
			e.PerfectWeeks++
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TotalCorrect != b.TotalCorrect {
			return a.TotalCorrect > b.TotalCorrect
		}
		if a.PerfectWeeks != b.PerfectWeeks {
			return a.PerfectWeeks > b.PerfectWeeks
		}
		return a.Identity < b.Identity
	})

	board := make([]models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		e.Rank = i + 1
		board[i] = *e
	}
	return board, nil
}

// ComputeWeeklySeries builds the board chart for weeks 1..settings.Weeks. Users
// come from the picks and from the registered players; a week the user never
// touched is left as nil.
func ComputeWeeklySeries(picks models.Picks, results map[string]models.Result, settings models.Settings) (*models.WeeklySeries, error) {
	if settings.MatchesPerWeek <= 0 {
		return nil, &models.AggregationError{Reason: fmt.Sprintf("matchesPerWeek must be positive, got %d", settings.MatchesPerWeek)}
	}

	names := make(map[string]string)
	for identity, user := range picks {
		names[identity] = displayName(identity, user)
	}
	for username, player := range settings.Players {
		if player.Name != "" {
			names[username] = player.Name
		} else if _, ok := names[username]; !ok {
			names[username] = username
		}
	}
	identities := make([]string, 0, len(names))
	for identity := range names {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	series := &models.WeeklySeries{
		Users: make([]models.SeriesUser, len(identities)),
		Rows:  make([]models.WeeklySeriesRow, 0, max(settings.Weeks, 0)),
	}
	for i, identity := range identities {
		series.Users[i] = models.SeriesUser{Identity: identity, Name: names[identity]}
	}

	for week := 1; week <= settings.Weeks; week++ {
		row := models.WeeklySeriesRow{Week: week, Points: make(map[string]*float64, len(identities))}
		for _, identity := range identities {
			wp := picks[identity].Week(week)
			if wp == nil {
				row.Points[identity] = nil
				continue
			}
			points := scoreWeek(identity, names[identity], week, wp, results, settings).Points
			row.Points[identity] = &points
		}
		series.Rows = append(series.Rows, row)
	}
	return series, nil
}

func scoreWeek(identity, name string, week int, wp *models.WeekPicks, results map[string]models.Result, settings models.Settings) models.WeekScore {
	correct := 0
	for m := 1; m <= settings.MatchesPerWeek; m++ {
		pick, ok := wp.Pick(m)
		if !ok || pick == models.SignUndecided {
			continue
		}
		res, ok := results[models.ResultKey(week, m)]
		if !ok {
			continue
		}
		if sign := res.Sign(); sign != models.SignUndecided && sign == pick {
			correct++
		}
	}

	perfect := correct == settings.MatchesPerWeek
	points := float64(correct) * settings.PointsCorrect
	if perfect {
		points += settings.BonusPerfectWeek
	}
	return models.WeekScore{
		Identity: identity,
		Name:     name,
		Week:     week,
		Correct:  correct,
		Perfect:  perfect,
		Points:   points,
	}
}

func displayName(identity string, user *models.UserPicks) string {
	if user != nil && user.Name != "" {
		return user.Name
	}
	return identity
}
