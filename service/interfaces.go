package service

import (
	"context"

	"decryptzone/events"
	"decryptzone/identity"
	"decryptzone/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetBySubject retrieves a user by identity subject. Returns nil, nil when absent
	// and ErrIntegrityViolation when more than one record matches.
	GetBySubject(ctx context.Context, subject string) (*models.User, error)

	// GetBySubjectForUpdate is GetBySubject holding a row lock until the transaction ends
	GetBySubjectForUpdate(ctx context.Context, subject string) (*models.User, error)

	// Create inserts a new user and returns it with its storage id.
	// Returns ErrDuplicateSubject if the subject already exists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// RecordSolve appends challengeID to the solved set, adds points and sets the solve time,
	// only if the challenge is not already solved. Reports whether the patch applied.
	RecordSolve(ctx context.Context, userID int64, challengeID int, points int64, solvedAt int64) (bool, error)

	// GetTop returns at most limit users in leaderboard order
	GetTop(ctx context.Context, limit int) ([]*models.User, error)

	// GetAll returns all users ordered by id. The ledger operations do not use it;
	// it exists for inspection and tests.
	GetAll(ctx context.Context) ([]*models.User, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction; it is a no-op after Commit
	Rollback() error

	UserRepository() UserRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// PointsPolicy decides whether a client-supplied point value is acceptable for a challenge
type PointsPolicy interface {
	CheckPoints(challengeID int, points int64) error
}

// LedgerService defines the score ledger operations
type LedgerService interface {
	// EnsureUser creates the caller's record on first visit. Returns nil, nil for anonymous callers.
	EnsureUser(ctx context.Context, who *identity.Identity) (*models.User, error)

	// GetLeaderboard returns the top entries ranked by score, then earliest last solve
	GetLeaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error)

	// SubmitSolve awards points for a challenge at most once per user
	SubmitSolve(ctx context.Context, who *identity.Identity, challengeID int, points int64) (*SolveResult, error)

	// GetMyProgress returns the caller's solved challenge ids, or nil for anonymous callers
	GetMyProgress(ctx context.Context, who *identity.Identity) ([]int, error)
}

// SolveResult describes the outcome of SubmitSolve
type SolveResult struct {
	// Accepted is false when the challenge had already been solved
	Accepted bool
	User     *models.User
}
