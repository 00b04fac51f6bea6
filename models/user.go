package models

import (
	"slices"
	"time"
)

// User represents a player of the decoding game keyed by their identity provider subject
type User struct {
	ID               int64     `db:"id"`
	Subject          string    `db:"clerk_id"`
	Name             string    `db:"name"`
	Username         string    `db:"username"`
	Score            int64     `db:"score"`
	SolvedChallenges []int     `db:"solved_challenges"`
	LastSolvedAt     int64     `db:"last_solved_at"` // epoch millis, ranking tie-breaker only
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// HasSolved reports whether the challenge is already in the user's solved set
func (u *User) HasSolved(challengeID int) bool {
	return slices.Contains(u.SolvedChallenges, challengeID)
}

// Clone returns a deep copy so callers never share the solved slice with the store
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.SolvedChallenges = slices.Clone(u.SolvedChallenges)
	if c.SolvedChallenges == nil {
		c.SolvedChallenges = []int{}
	}
	return &c
}
