package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortForLeaderboard_TieBreakOnEarliestSolve(t *testing.T) {
	a := &User{ID: 1, Username: "a", Score: 100, LastSolvedAt: 5}
	b := &User{ID: 2, Username: "b", Score: 100, LastSolvedAt: 3}
	c := &User{ID: 3, Username: "c", Score: 90, LastSolvedAt: 1}

	users := []*User{a, c, b}
	SortForLeaderboard(users)

	assert.Equal(t, []*User{b, a, c}, users)
}

func TestSortForLeaderboard_EqualRowsOrderedByID(t *testing.T) {
	first := &User{ID: 7, Score: 50, LastSolvedAt: 10}
	second := &User{ID: 9, Score: 50, LastSolvedAt: 10}

	users := []*User{second, first}
	SortForLeaderboard(users)

	assert.Equal(t, int64(7), users[0].ID)
	assert.Equal(t, int64(9), users[1].ID)
}

func TestNewLeaderboard(t *testing.T) {
	users := []*User{
		{ID: 4, Name: "Ada", Username: "ada", Score: 300, SolvedChallenges: []int{1, 2, 3}, LastSolvedAt: 42},
		{ID: 8, Name: "Bob", Username: "bob", Score: 100, SolvedChallenges: []int{5}, LastSolvedAt: 50},
	}

	entries := NewLeaderboard(users)

	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "ada", entries[0].Username)
	assert.Equal(t, 3, entries[0].SolvedCount)
	assert.Equal(t, int64(42), entries[0].LastSolvedAt)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, int64(8), entries[1].UserID)
}

func TestUser_HasSolvedAndClone(t *testing.T) {
	u := &User{ID: 1, SolvedChallenges: []int{3, 9}}

	assert.True(t, u.HasSolved(9))
	assert.False(t, u.HasSolved(4))

	c := u.Clone()
	c.SolvedChallenges[0] = 100
	assert.Equal(t, 3, u.SolvedChallenges[0])

	empty := (&User{ID: 2}).Clone()
	assert.NotNil(t, empty.SolvedChallenges)
	assert.Empty(t, empty.SolvedChallenges)
}
