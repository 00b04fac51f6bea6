package leaderboard

import (
	"decryptzone/render"
	"decryptzone/service"
)

const imageName = "leaderboard.png"

// Feature serves /leaderboard and the scheduled leaderboard post
type Feature struct {
	ledger   service.LedgerService
	renderer *render.LeaderboardRenderer
}

// NewFeature creates a new leaderboard feature instance
func NewFeature(ledger service.LedgerService, renderer *render.LeaderboardRenderer) *Feature {
	return &Feature{
		ledger:   ledger,
		renderer: renderer,
	}
}
