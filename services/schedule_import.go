package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"prediction-league/models"
)

var (
	headerWhitespace = regexp.MustCompile(`\s+`)
	headerInvalid    = regexp.MustCompile(`[^a-z0-9_]`)
)

// ParseScheduleCSV reads fixtures from CSV text with a header row. The
// delimiter is ';' when it occurs more often than ',' and ',' otherwise.
// Columns are found by the headers week, matchNumber (or match), home and away;
// without all four the first four columns are used in that order. Rows with a
// missing or non-positive week or match number, or a blank team, are skipped.
func ParseScheduleCSV(text string) ([]models.Fixture, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return []models.Fixture{}, nil
	}

	reader := csv.NewReader(strings.NewReader(clean))
	reader.Comma = ','
	if strings.Count(clean, ";") > strings.Count(clean, ",") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &models.ValidationError{Field: "csv", Reason: fmt.Sprintf("cannot read header: %v", err)}
	}
	weekIdx, matchIdx, homeIdx, awayIdx := scheduleColumns(header)

	fixtures := []models.Fixture{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.ValidationError{Field: "csv", Reason: fmt.Sprintf("line %d: %v", line, err)}
		}

		week, okWeek := positiveInt(column(record, weekIdx))
		match, okMatch := positiveInt(column(record, matchIdx))
		home := column(record, homeIdx)
		away := column(record, awayIdx)
		if !okWeek || !okMatch || home == "" || away == "" {
			continue
		}
		fixtures = append(fixtures, models.Fixture{Week: week, MatchNumber: match, Home: home, Away: away})
	}
	return fixtures, nil
}

func scheduleColumns(header []string) (week, match, home, away int) {
	week, match, home, away = -1, -1, -1, -1
	matchAlias := -1
	for i, h := range header {
		switch normalizeHeader(h) {
		case "week":
			if week < 0 {
				week = i
			}
		case "matchnumber":
			if match < 0 {
				match = i
			}
		case "match":
			if matchAlias < 0 {
				matchAlias = i
			}
		case "home":
			if home < 0 {
				home = i
			}
		case "away":
			if away < 0 {
				away = i
			}
		}
	}
	if match < 0 {
		match = matchAlias
	}
	if week < 0 || match < 0 || home < 0 || away < 0 {
		return 0, 1, 2, 3
	}
	return week, match, home, away
}

func normalizeHeader(h string) string {
	h = strings.ToLower(h)
	h = headerWhitespace.ReplaceAllString(h, "")
	return headerInvalid.ReplaceAllString(h, "")
}

func column(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
