// Package quantity holds the pure dish-accounting math. Everything here is
// side-effect free; the ledger and admission services call into it while
// holding their own transactional state.
//
// No rounding happens in this package. Invariant checks must compare at full
// float64 precision; rounding for display is the client's problem.
package quantity

// Needed is the total amount of a dish required for the current headcount.
// totalParticipants is the sum of 1+numGuests over all participant rows and
// must be >= 0 (an empty party needs nothing).
func Needed(amountPerPerson float64, totalParticipants int) float64 {
	return amountPerPerson * float64(totalParticipants)
}

// Remaining is the portion of needed not yet pledged by others. Never
// negative: once a headcount drop leaves a dish over-pledged, the remainder
// is simply zero.
func Remaining(needed, contributedByOthers float64) float64 {
	if rem := needed - contributedByOthers; rem > 0 {
		return rem
	}
	return 0
}

// MaxAllowed is the largest amount a single pledge may take given what the
// others already bring. Alias of Remaining, named for the error path where
// the caller is told how far they can go.
func MaxAllowed(needed, contributedByOthers float64) float64 {
	return Remaining(needed, contributedByOthers)
}
