// rating/rating.go
package rating

import (
	"math"
)

// DefaultK is the reference K factor of the rating update.
const DefaultK = 4

// Expected returns the expected score of a player rated ra against rb.
func Expected(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// apply computes a single updated rating given an actual score (1 win,
// 0.5 draw, 0 loss), rounded to the nearest integer and floored at zero.
func apply(r, opponent, actual, k float64) int {
	next := int(math.Round(r + k*(actual-Expected(r, opponent))))
	if next < 0 {
		next = 0
	}
	return next
}

// Win returns the new ratings after winner beats loser.
func Win(winner, loser float64, k float64) (newWinner, newLoser int) {
	return apply(winner, loser, 1, k), apply(loser, winner, 0, k)
}

// Draw returns the new ratings after a drawn match; both sides score 0.5.
func Draw(ra, rb float64, k float64) (newA, newB int) {
	return apply(ra, rb, 0.5, k), apply(rb, ra, 0.5, k)
}
