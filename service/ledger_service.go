package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"decryptzone/events"
	"decryptzone/identity"
	"decryptzone/models"

	log "github.com/sirupsen/logrus"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
	policy     PointsPolicy
	now        func() time.Time
}

// Option configures a ledger service
type Option func(*ledgerService)

// WithPointsPolicy makes SubmitSolve validate client-supplied points
func WithPointsPolicy(policy PointsPolicy) Option {
	return func(s *ledgerService) {
		s.policy = policy
	}
}

// WithClock overrides the time source used for solve timestamps
func WithClock(now func() time.Time) Option {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new score ledger
func NewLedgerService(uowFactory UnitOfWorkFactory, opts ...Option) LedgerService {
	s := &ledgerService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func authenticated(who *identity.Identity) bool {
	return who != nil && who.Subject != ""
}

// EnsureUser retrieves the caller's record or creates it on first visit
func (s *ledgerService) EnsureUser(ctx context.Context, who *identity.Identity) (*models.User, error) {
	if !authenticated(who) {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.UserRepository()

	user, err := repo.GetBySubject(ctx, who.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	newUser := &models.User{
		Subject:          who.Subject,
		Name:             who.DisplayName(),
		Username:         who.Handle(),
		Score:            0,
		SolvedChallenges: []int{},
		LastSolvedAt:     s.now().UnixMilli(),
	}

	created, err := repo.Create(ctx, newUser)
	if errors.Is(err, ErrDuplicateSubject) {
		// another request created the record between lookup and insert
		user, err = repo.GetBySubject(ctx, who.Subject)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user after conflict: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("user %q vanished after insert conflict: %w", who.Subject, ErrUserNotFound)
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:   created.ID,
		Subject:  created.Subject,
		Name:     created.Name,
		Username: created.Username,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   created.ID,
		"username": created.Username,
	}).Info("Created user")

	return created, nil
}

// GetLeaderboard returns the top users ranked by score, then earliest last solve
func (s *ledgerService) GetLeaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetTop(ctx, models.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	models.SortForLeaderboard(users)
	if len(users) > models.LeaderboardSize {
		users = users[:models.LeaderboardSize]
	}

	return models.NewLeaderboard(users), nil
}

// SubmitSolve records a first solve of challengeID and awards points.
// Repeated submissions of a solved challenge are accepted as no-ops.
func (s *ledgerService) SubmitSolve(ctx context.Context, who *identity.Identity, challengeID int, points int64) (*SolveResult, error) {
	if !authenticated(who) {
		return nil, ErrUnauthorized
	}
	if points < 0 {
		return nil, ErrInvalidPoints
	}
	if s.policy != nil {
		if err := s.policy.CheckPoints(challengeID, points); err != nil {
			return nil, err
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.UserRepository()

	user, err := repo.GetBySubjectForUpdate(ctx, who.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if user.HasSolved(challengeID) {
		return &SolveResult{Accepted: false, User: user}, nil
	}
	if points > math.MaxInt64-user.Score {
		return nil, fmt.Errorf("%w: score would overflow", ErrInvalidPoints)
	}

	solvedAt := s.now().UnixMilli()
	applied, err := repo.RecordSolve(ctx, user.ID, challengeID, points, solvedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record solve: %w", err)
	}
	if !applied {
		return &SolveResult{Accepted: false, User: user}, nil
	}

	updated := user.Clone()
	updated.Score += points
	updated.SolvedChallenges = append(updated.SolvedChallenges, challengeID)
	updated.LastSolvedAt = solvedAt

	uow.EventBus().Publish(events.ChallengeSolvedEvent{
		UserID:       updated.ID,
		Username:     updated.Username,
		ChallengeID:  challengeID,
		Points:       points,
		NewScore:     updated.Score,
		SolvedCount:  len(updated.SolvedChallenges),
		LastSolvedAt: solvedAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":      updated.ID,
		"challengeID": challengeID,
		"points":      points,
		"score":       updated.Score,
	}).Info("Accepted solve")

	return &SolveResult{Accepted: true, User: updated}, nil
}

// GetMyProgress returns the caller's solved challenge ids
func (s *ledgerService) GetMyProgress(ctx context.Context, who *identity.Identity) ([]int, error) {
	if !authenticated(who) {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetBySubject(ctx, who.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return []int{}, nil
	}

	solved := slices.Clone(user.SolvedChallenges)
	if solved == nil {
		solved = []int{}
	}
	return solved, nil
}
