// Package rating computes per-server skill ratings from match results.
package rating

import "math"

// Params are the rating constants. Baseline is both the rating new players
// start at and the Elo divisor; Lambda weighs team mean rating against the
// individual rating; StepSize scales each update.
type Params struct {
	Baseline int
	Lambda   float64
	StepSize int
}

// SkillRating returns a player's updated rating after one match.
//
// Team adaptation of standard Elo: the expected score comes from a weighted
// sum of the player's own rating and their team's mean rating versus the
// opposing mean. The update term is scaled inversely by the player's current
// rating, so the same result moves a high-rated player less.
func SkillRating(p Params, currentRating, meanTeamRating, meanOpponentRating, achievedScore float64) float64 {
	k := float64(p.Baseline)

	teamWeightedRating := p.Lambda*meanTeamRating + (1-p.Lambda)*currentRating
	qPlayer := math.Pow(10, teamWeightedRating/k)
	qOpponent := math.Pow(10, meanOpponentRating/k)

	expectedScore := qPlayer / (qPlayer + qOpponent)

	return currentRating + (k*float64(p.StepSize))/currentRating*(achievedScore-expectedScore)
}

// meanRating is the arithmetic mean of a team's current ratings. Kept
// separate so a weighted mean is a one-line change later.
func meanRating(ratings []float64) float64 {
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}
