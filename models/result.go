package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sign is the ternary outcome of a match: home win, draw or away win.
type Sign string

const (
	SignHome      Sign = "1"
	SignDraw      Sign = "X"
	SignAway      Sign = "2"
	SignUndecided Sign = ""
)

// IsValid reports whether s is one of the three pickable outcomes.
func (s Sign) IsValid() bool {
	return s == SignHome || s == SignDraw || s == SignAway
}

// Goals holds a score as entered by the admin. Stored documents carry either a
// JSON number or a string (the empty string meaning "not entered yet"), so the
// raw text is kept and only interpreted by Value.
type Goals string

// Value returns the numeric score and whether it is a usable finite number.
func (g Goals) Value() (float64, bool) {
	text := strings.TrimSpace(string(g))
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsSet reports whether a non-empty value was entered.
func (g Goals) IsSet() bool {
	return strings.TrimSpace(string(g)) != ""
}

// UnmarshalJSON accepts numbers, strings and null.
func (g *Goals) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*g = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("goals: %w", err)
		}
		*g = Goals(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("goals: %w", err)
		}
		*g = Goals(n.String())
	}
	return nil
}

// MarshalJSON writes numeric scores as JSON numbers and anything else as a string.
func (g Goals) MarshalJSON() ([]byte, error) {
	if v, ok := g.Value(); ok {
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	}
	return json.Marshal(string(g))
}

// Result is the score of one fixture.
type Result struct {
	HomeGoals Goals `json:"hg"`
	AwayGoals Goals `json:"ag"`
}

// Sign resolves the result to its outcome symbol.
func (r Result) Sign() Sign {
	return ResolveSign(r.HomeGoals, r.AwayGoals)
}

// ResolveSign maps a pair of scores to "1", "X" or "2". Missing, empty or
// non-numeric input on either side yields SignUndecided.
func ResolveSign(home, away Goals) Sign {
	hg, ok := home.Value()
	if !ok {
		return SignUndecided
	}
	ag, ok := away.Value()
	if !ok {
		return SignUndecided
	}
	switch {
	case hg > ag:
		return SignHome
	case hg < ag:
		return SignAway
	default:
		return SignDraw
	}
}

// ResultKey builds the results map key for a fixture slot.
func ResultKey(week, matchNumber int) string {
	return fmt.Sprintf("%d_%d", week, matchNumber)
}

// ParseResultKey is the inverse of ResultKey.
func ParseResultKey(key string) (week, matchNumber int, err error) {
	w, m, found := strings.Cut(key, "_")
	if !found {
		return 0, 0, &ValidationError{Field: "results", Reason: fmt.Sprintf("malformed key %q", key)}
	}
	if week, err = strconv.Atoi(w); err != nil || week <= 0 {
		return 0, 0, &ValidationError{Field: "results", Reason: fmt.Sprintf("malformed week in key %q", key)}
	}
	if matchNumber, err = strconv.Atoi(m); err != nil || matchNumber <= 0 {
		return 0, 0, &ValidationError{Field: "results", Reason: fmt.Sprintf("malformed match number in key %q", key)}
	}
	return week, matchNumber, nil
}
