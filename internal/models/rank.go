package models

import "fmt"

// Rank is a member's rank within a clan. Stored as a string column; ordering
// goes through the weight table, never through string comparison.
type Rank string

const (
	RankMember Rank = "member"
	RankAdmin  Rank = "admin"
	RankOwner  Rank = "owner"
)

var rankWeight = map[Rank]int{
	RankMember: 0,
	RankAdmin:  1,
	RankOwner:  2,
}

// ParseRank converts a persisted or client-supplied string into a Rank.
func ParseRank(s string) (Rank, error) {
	r := Rank(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rank %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known ranks.
func (r Rank) Valid() bool {
	_, ok := rankWeight[r]
	return ok
}

// Weight returns r's position in the rank order. Unknown ranks weigh -1 so
// they sort below member instead of panicking.
func (r Rank) Weight() int {
	w, ok := rankWeight[r]
	if !ok {
		return -1
	}
	return w
}

// AtLeast reports whether r is equal to or above other.
func (r Rank) AtLeast(other Rank) bool {
	return r.Weight() >= other.Weight()
}

// Outranks reports whether r is strictly above other.
func (r Rank) Outranks(other Rank) bool {
	return r.Weight() > other.Weight()
}
