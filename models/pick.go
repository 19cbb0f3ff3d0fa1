package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SubmittedAtKey is the reserved key inside a week's picks that records when
// the user sent the week in.
const SubmittedAtKey = "_submittedAt"

// WeekPicks is one user's predictions for one week, keyed by match number.
// On the wire it is a flat object: {"1":"1","2":"X","_submittedAt":"..."}.
type WeekPicks struct {
	Picks       map[int]Sign
	SubmittedAt string
}

// NewWeekPicks returns an empty week.
func NewWeekPicks() *WeekPicks {
	return &WeekPicks{Picks: make(map[int]Sign)}
}

// IsSubmitted reports whether the week carries a submission timestamp.
func (w *WeekPicks) IsSubmitted() bool {
	return w != nil && w.SubmittedAt != ""
}

// Pick returns the prediction for a match, if any.
func (w *WeekPicks) Pick(matchNumber int) (Sign, bool) {
	if w == nil {
		return SignUndecided, false
	}
	s, ok := w.Picks[matchNumber]
	return s, ok
}

// MatchNumbers returns the picked match numbers in ascending order.
func (w *WeekPicks) MatchNumbers() []int {
	if w == nil {
		return nil
	}
	out := make([]int, 0, len(w.Picks))
	for m := range w.Picks {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

func (w *WeekPicks) clone() *WeekPicks {
	if w == nil {
		return nil
	}
	c := &WeekPicks{Picks: make(map[int]Sign, len(w.Picks)), SubmittedAt: w.SubmittedAt}
	for m, s := range w.Picks {
		c.Picks[m] = s
	}
	return c
}

func (w WeekPicks) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(w.Picks)+1)
	for m, s := range w.Picks {
		out[strconv.Itoa(m)] = string(s)
	}
	if w.SubmittedAt != "" {
		out[SubmittedAtKey] = w.SubmittedAt
	}
	return json.Marshal(out)
}

func (w *WeekPicks) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("week picks: %w", err)
	}
	w.Picks = make(map[int]Sign, len(raw))
	w.SubmittedAt = ""
	for key, value := range raw {
		var s *string
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("week picks: value for %q: %w", key, err)
		}
		if s == nil {
			continue
		}
		if key == SubmittedAtKey {
			w.SubmittedAt = *s
			continue
		}
		m, err := strconv.Atoi(key)
		if err != nil || m <= 0 {
			return &ValidationError{Field: "picks", Reason: fmt.Sprintf("invalid match number %q", key)}
		}
		w.Picks[m] = Sign(*s)
	}
	return nil
}

// UserPicks holds everything one user predicted, keyed by week.
type UserPicks struct {
	Name  string             `json:"name"`
	Weeks map[int]*WeekPicks `json:"weeks"`
}

// Week returns the user's picks for a week, or nil.
func (u *UserPicks) Week(week int) *WeekPicks {
	if u == nil || u.Weeks == nil {
		return nil
	}
	return u.Weeks[week]
}

// WeekNumbers returns the weeks the user has entries for, ascending.
func (u *UserPicks) WeekNumbers() []int {
	if u == nil {
		return nil
	}
	out := make([]int, 0, len(u.Weeks))
	for w := range u.Weeks {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

// Picks maps a normalised email to that user's predictions.
type Picks map[string]*UserPicks

// Identities returns the user keys in ascending order, the stable order used
// wherever users are enumerated.
func (p Picks) Identities() []string {
	out := make([]string, 0, len(p))
	for id := range p {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (p Picks) Clone() Picks {
	if p == nil {
		return nil
	}
	c := make(Picks, len(p))
	for id, u := range p {
		if u == nil {
			c[id] = nil
			continue
		}
		cu := &UserPicks{Name: u.Name, Weeks: make(map[int]*WeekPicks, len(u.Weeks))}
		for w, wp := range u.Weeks {
			cu.Weeks[w] = wp.clone()
		}
		c[id] = cu
	}
	return c
}

// NormalizeEmail lower-cases and trims a user key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
