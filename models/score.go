package models

// WeekScore is one user's outcome for one week.
type WeekScore struct {
	Identity string  `json:"identity"`
	Name     string  `json:"name"`
	Week     int     `json:"week"`
	Correct  int     `json:"correct"`
	Perfect  bool    `json:"perfect"`
	Points   float64 `json:"points"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	Identity     string  `json:"identity"`
	Name         string  `json:"name"`
	TotalCorrect int     `json:"totalCorrect"`
	PerfectWeeks int     `json:"perfectWeeks"`
	TotalPoints  float64 `json:"totalPoints"`
}

// WeeklySeriesRow holds every user's points for one week. A nil value means the
// user entered nothing that week.
type WeeklySeriesRow struct {
	Week   int                 `json:"week"`
	Points map[string]*float64 `json:"points"`
}

// WeeklySeries is the board chart: the ordered users and one row per week.
type WeeklySeries struct {
	Users []SeriesUser      `json:"users"`
	Rows  []WeeklySeriesRow `json:"rows"`
}

// SeriesUser names a column of the weekly series.
type SeriesUser struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
}
