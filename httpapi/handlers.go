package httpapi

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type solveRequest struct {
	ChallengeID *int   `json:"challengeId"`
	Points      *int64 `json:"points"`
}

type solveResponse struct {
	Accepted bool  `json:"accepted"`
	Score    int64 `json:"score"`
}

type attemptRequest struct {
	Answer string `json:"answer"`
}

type attemptResponse struct {
	Correct  bool   `json:"correct"`
	Accepted bool   `json:"accepted"`
	Score    *int64 `json:"score,omitempty"`
}

func (s *Server) ensureUser(c *fiber.Ctx) error {
	user, err := s.ledger.EnsureUser(c.UserContext(), caller(c))
	if err != nil {
		return err
	}

	var userID *int64
	if user != nil {
		userID = &user.ID
	}
	return c.JSON(fiber.Map{"userId": userID})
}

func (s *Server) leaderboard(c *fiber.Ctx) error {
	entries, err := s.ledger.GetLeaderboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

func (s *Server) leaderboardImage(c *fiber.Ctx) error {
	entries, err := s.ledger.GetLeaderboard(c.UserContext())
	if err != nil {
		return err
	}

	data, err := s.renderer.Render(entries)
	if err != nil {
		return fmt.Errorf("failed to render leaderboard: %w", err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}

func (s *Server) submitSolve(c *fiber.Ctx) error {
	var req solveRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if req.ChallengeID == nil || req.Points == nil {
		return fmt.Errorf("%w: challengeId and points are required", errBadBody)
	}

	result, err := s.ledger.SubmitSolve(c.UserContext(), caller(c), *req.ChallengeID, *req.Points)
	if err != nil {
		return err
	}

	return c.JSON(solveResponse{
		Accepted: result.Accepted,
		Score:    result.User.Score,
	})
}

func (s *Server) progress(c *fiber.Ctx) error {
	solved, err := s.ledger.GetMyProgress(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"solvedChallenges": solved})
}

func (s *Server) challenges(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Public())
}

// attempt checks an answer against the catalog and, when it is correct and the
// caller is signed in, records the solve with the catalog's points.
func (s *Server) attempt(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fmt.Errorf("%w: challenge id must be a number", errBadBody)
	}

	var req attemptRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}

	correct, err := s.catalog.Check(id, req.Answer)
	if err != nil {
		return err
	}
	if !correct {
		return c.JSON(attemptResponse{Correct: false})
	}

	who := caller(c)
	if who == nil {
		// anonymous players can still play, their solves are just not recorded
		return c.JSON(attemptResponse{Correct: true})
	}

	if _, err := s.ledger.EnsureUser(c.UserContext(), who); err != nil {
		return err
	}

	ch, _ := s.catalog.Get(id)
	result, err := s.ledger.SubmitSolve(c.UserContext(), who, id, ch.Points)
	if err != nil {
		return err
	}

	score := result.User.Score
	return c.JSON(attemptResponse{
		Correct:  true,
		Accepted: result.Accepted,
		Score:    &score,
	})
}
