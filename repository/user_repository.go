package repository

import (
	"context"
	"errors"
	"fmt"

	"decryptzone/database"
	"decryptzone/models"
	"decryptzone/service"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, clerk_id, name, username, score, solved_challenges, last_solved_at, created_at, updated_at`

// UserRepository implements service.UserRepository on Postgres
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a user repository outside of any transaction
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Subject,
		&user.Name,
		&user.Username,
		&user.Score,
		&user.SolvedChallenges,
		&user.LastSolvedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.SolvedChallenges == nil {
		user.SolvedChallenges = []int{}
	}
	return &user, nil
}

func (r *UserRepository) getBySubject(ctx context.Context, subject string, lock bool) (*models.User, error) {
	// LIMIT 2 is enough to tell one match from many
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1 ORDER BY id LIMIT 2`
	if lock {
		query += ` FOR UPDATE`
	}

	rows, err := r.q.Query(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by subject %q: %w", subject, err)
	}
	defer rows.Close()

	var matches []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		matches = append(matches, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("subject %q matches %d users: %w", subject, len(matches), service.ErrIntegrityViolation)
	}
}

// GetBySubject retrieves the user owning subject, or nil when there is none
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	return r.getBySubject(ctx, subject, false)
}

// GetBySubjectForUpdate is GetBySubject holding a row lock until the transaction ends
func (r *UserRepository) GetBySubjectForUpdate(ctx context.Context, subject string) (*models.User, error) {
	return r.getBySubject(ctx, subject, true)
}

// Create inserts a new user. A concurrent insert of the same subject yields
// service.ErrDuplicateSubject without aborting the surrounding transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (clerk_id, name, username, score, solved_challenges, last_solved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (clerk_id) DO NOTHING
		RETURNING ` + userColumns

	solved := user.SolvedChallenges
	if solved == nil {
		solved = []int{}
	}

	created, err := scanUser(r.q.QueryRow(ctx, query,
		user.Subject,
		user.Name,
		user.Username,
		user.Score,
		solved,
		user.LastSolvedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, service.ErrDuplicateSubject
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", user.Subject, err)
	}

	return created, nil
}

// RecordSolve appends challengeID and adds points in one conditional update.
// It reports false when the challenge was already in the solved set.
func (r *UserRepository) RecordSolve(ctx context.Context, userID int64, challengeID int, points int64, solvedAt int64) (bool, error) {
	query := `
		UPDATE users
		SET score = score + $1,
			solved_challenges = array_append(solved_challenges, $2::integer),
			last_solved_at = $3,
			updated_at = NOW()
		WHERE id = $4 AND NOT ($2::integer = ANY(solved_challenges))
	`

	tag, err := r.q.Exec(ctx, query, points, challengeID, solvedAt, userID)
	if err != nil {
		return false, fmt.Errorf("failed to record solve of challenge %d for user %d: %w", challengeID, userID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetTop returns up to limit users in leaderboard order
func (r *UserRepository) GetTop(ctx context.Context, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY score DESC, last_solved_at ASC, id ASC LIMIT $1`
	return r.list(ctx, query, limit)
}

// GetAll returns every user ordered by id
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return r.list(ctx, query)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

var _ service.UserRepository = (*UserRepository)(nil)
