package models

import "sort"

// LeaderboardSize is the fixed number of entries returned by the leaderboard
const LeaderboardSize = 10

// LeaderboardEntry represents a user's position on the leaderboard
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       int64  `json:"userId"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Score        int64  `json:"score"`
	SolvedCount  int    `json:"solvedCount"`
	LastSolvedAt int64  `json:"lastSolvedAt"`
}

// RanksBefore orders users by score descending, then by earliest last solve.
// The storage id only separates otherwise equal rows so the order is total.
func RanksBefore(a, b *User) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.LastSolvedAt != b.LastSolvedAt {
		return a.LastSolvedAt < b.LastSolvedAt
	}
	return a.ID < b.ID
}

// SortForLeaderboard sorts users in place using RanksBefore
func SortForLeaderboard(users []*User) {
	sort.SliceStable(users, func(i, j int) bool {
		return RanksBefore(users[i], users[j])
	})
}

// NewLeaderboard converts already ranked users into numbered entries
func NewLeaderboard(users []*User) []*LeaderboardEntry {
	entries := make([]*LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, &LeaderboardEntry{
			Rank:         i + 1,
			UserID:       u.ID,
			Name:         u.Name,
			Username:     u.Username,
			Score:        u.Score,
			SolvedCount:  len(u.SolvedChallenges),
			LastSolvedAt: u.LastSolvedAt,
		})
	}
	return entries
}
