package services

import (
	"fmt"

	"prediction-league/models"
)

// byeTeam pads an odd team list; pairings against it are dropped.
const byeTeam = ""

type pairing struct {
	home string
	away string
}

// GenerateSchedule builds a double round robin over teams using the circle
// method, repeated with home and away swapped until weeksWanted weeks exist and
// then truncated. Each week keeps its first matchesPerWeek pairings, numbered
// from 1. The output depends only on the arguments.
func GenerateSchedule(teams []string, weeksWanted, matchesPerWeek int) ([]models.Fixture, error) {
	if err := models.ValidateTeams(teams); err != nil {
		return nil, err
	}
	if weeksWanted <= 0 {
		return nil, &models.ValidationError{Field: "weeks", Reason: fmt.Sprintf("must be positive, got %d", weeksWanted)}
	}
	if matchesPerWeek <= 0 {
		return nil, &models.ValidationError{Field: "matchesPerWeek", Reason: fmt.Sprintf("must be positive, got %d", matchesPerWeek)}
	}

	firstLeg := roundRobin(teams)
	weeks := append(firstLeg, swapLeg(roundRobin(teams))...)
	for len(weeks) < weeksWanted {
		weeks = append(weeks, swapLeg(weeks)...)
	}
	weeks = weeks[:weeksWanted]

	// A week never holds more than half the padded team count.
	perWeek := min(matchesPerWeek, (len(teams)+len(teams)%2)/2)
	schedule := make([]models.Fixture, 0, weeksWanted*perWeek)
	for wi, week := range weeks {
		matchNumber := 0
		for _, p := range week {
			if matchNumber == matchesPerWeek {
				break
			}
			if p.home == byeTeam || p.away == byeTeam {
				continue
			}
			matchNumber++
			schedule = append(schedule, models.Fixture{
				Week:        wi + 1,
				MatchNumber: matchNumber,
				Home:        p.home,
				Away:        p.away,
			})
		}
	}
	return schedule, nil
}

// roundRobin returns n-1 rounds for an even list (a bye is added to odd
// lists). Index 0 stays put while the rest rotate one step per round.
func roundRobin(teams []string) [][]pairing {
	arr := append([]string(nil), teams...)
	if len(arr)%2 == 1 {
		arr = append(arr, byeTeam)
	}
	n := len(arr)

	rounds := make([][]pairing, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make([]pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			round = append(round, pairing{home: arr[i], away: arr[n-1-i]})
		}
		rounds = append(rounds, round)

		last := arr[n-1]
		copy(arr[2:], arr[1:n-1])
		arr[1] = last
	}
	return rounds
}

func swapLeg(rounds [][]pairing) [][]pairing {
	out := make([][]pairing, len(rounds))
	for i, round := range rounds {
		swapped := make([]pairing, len(round))
		for j, p := range round {
			swapped[j] = pairing{home: p.away, away: p.home}
		}
		out[i] = swapped
	}
	return out
}
