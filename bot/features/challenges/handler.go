package challenges

import (
	"context"
	"fmt"

	"decryptzone/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleChallenges answers /challenges with the catalog and the caller's progress
func (f *Feature) HandleChallenges(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	solved, err := f.ledger.GetMyProgress(ctx, common.IdentityFromInteraction(i))
	if err != nil {
		log.WithError(err).Error("Error getting progress")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildChallengesEmbed(f.catalog.All(), solved), true); err != nil {
		log.Errorf("Error sending challenges: %v", err)
	}
}

// HandleProgress answers /progress, registering the caller on first use
func (f *Feature) HandleProgress(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, err := f.ledger.EnsureUser(ctx, common.IdentityFromInteraction(i))
	if err != nil || user == nil {
		log.WithError(err).Error("Error ensuring user")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildProgressEmbed(user, f.catalog.Len()), true); err != nil {
		log.Errorf("Error sending progress: %v", err)
	}
}

// HandleSolve answers /solve challenge:<id> answer:<text>
func (f *Feature) HandleSolve(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	challengeID, answer, err := ParseSolveOptions(i.ApplicationCommandData().Options)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	correct, err := f.catalog.Check(challengeID, answer)
	if err != nil {
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}
	if !correct {
		common.RespondWithError(s, i, fmt.Sprintf("`%s` is not the answer to challenge #%d. Keep decoding!", answer, challengeID))
		return
	}

	who := common.IdentityFromInteraction(i)
	if _, err := f.ledger.EnsureUser(ctx, who); err != nil {
		log.WithError(err).Error("Error ensuring user")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	ch, _ := f.catalog.Get(challengeID)
	result, err := f.ledger.SubmitSolve(ctx, who, challengeID, ch.Points)
	if err != nil {
		log.WithFields(log.Fields{
			"subject":     who.Subject,
			"challengeID": challengeID,
			"error":       err,
		}).Error("Error submitting solve")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildSolveEmbed(ch, result.Accepted, result.User), true); err != nil {
		log.Errorf("Error sending solve result: %v", err)
	}
}

// ParseSolveOptions extracts the challenge id and answer from /solve options
func ParseSolveOptions(options []*discordgo.ApplicationCommandInteractionDataOption) (int, string, error) {
	var (
		challengeID int
		answer      string
		haveID      bool
	)
	for _, opt := range options {
		switch opt.Name {
		case "challenge":
			challengeID = int(opt.IntValue())
			haveID = true
		case "answer":
			answer = opt.StringValue()
		}
	}

	if !haveID {
		return 0, "", fmt.Errorf("please choose a challenge")
	}
	if answer == "" {
		return 0, "", fmt.Errorf("please provide an answer")
	}
	return challengeID, answer, nil
}
