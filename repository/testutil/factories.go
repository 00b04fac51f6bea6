package testutil

import (
	"fmt"

	"decryptzone/models"
)

// CreateTestUser creates a fresh player with no solves
func CreateTestUser(subject, username string) *models.User {
	return &models.User{
		Subject:          subject,
		Name:             "Test " + username,
		Username:         username,
		Score:            0,
		SolvedChallenges: []int{},
		LastSolvedAt:     0,
	}
}

// CreateTestUserWithScore creates a player that has already solved the given challenges
func CreateTestUserWithScore(subject, username string, score, lastSolvedAt int64, solved ...int) *models.User {
	user := CreateTestUser(subject, username)
	user.Score = score
	user.LastSolvedAt = lastSolvedAt
	user.SolvedChallenges = append(user.SolvedChallenges, solved...)
	return user
}

// CreateTestUsers creates n players with subjects user_1..user_n
func CreateTestUsers(n int) []*models.User {
	users := make([]*models.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, CreateTestUser(fmt.Sprintf("user_%d", i), fmt.Sprintf("player%d", i)))
	}
	return users
}
