package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"decryptzone/events"
	"decryptzone/identity"
	"decryptzone/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type ledgerMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	userRepo  *MockUserRepository
	publisher *MockEventPublisher
}

func newLedgerMocks() *ledgerMocks {
	m := &ledgerMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		userRepo:  new(MockUserRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.userRepo, m.publisher)
	return m
}

func (m *ledgerMocks) expectTransaction(ctx context.Context) {
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
}

func (m *ledgerMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.userRepo.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func newTestLedger(factory UnitOfWorkFactory, opts ...Option) LedgerService {
	return NewLedgerService(factory, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestLedgerService_EnsureUser_Anonymous(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	user, err := svc.EnsureUser(ctx, nil)

	assert.NoError(t, err)
	assert.Nil(t, user)
	m.factory.AssertNotCalled(t, "Create")
}

func TestLedgerService_EnsureUser_ExistingUser(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	existing := &models.User{ID: 11, Subject: "user_abc", Name: "Ada", Username: "ada", Score: 300}

	m.expectTransaction(ctx)
	// No Commit expected since the user exists and nothing changes
	m.userRepo.On("GetBySubject", ctx, "user_abc").Return(existing, nil)

	user, err := svc.EnsureUser(ctx, &identity.Identity{Subject: "user_abc", Name: "Ada"})

	assert.NoError(t, err)
	assert.Equal(t, existing, user)
	m.assertExpectations(t)
	m.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerService_EnsureUser_NewUser(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	created := &models.User{ID: 12, Subject: "user_new", Name: identity.AnonymousName, Username: "initiate", SolvedChallenges: []int{}, LastSolvedAt: fixedNow.UnixMilli()}

	m.expectTransaction(ctx)
	m.uow.On("Commit").Return(nil)
	m.userRepo.On("GetBySubject", ctx, "user_new").Return(nil, nil)
	m.userRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Subject == "user_new" &&
			u.Name == identity.AnonymousName &&
			u.Username == "initiate" &&
			u.Score == 0 &&
			u.SolvedChallenges != nil && len(u.SolvedChallenges) == 0 &&
			u.LastSolvedAt == fixedNow.UnixMilli()
	})).Return(created, nil)
	m.publisher.On("Publish", events.UserCreatedEvent{
		UserID:   12,
		Subject:  "user_new",
		Name:     identity.AnonymousName,
		Username: "initiate",
	}).Return()

	user, err := svc.EnsureUser(ctx, &identity.Identity{Subject: "user_new", Email: "initiate@example.com"})

	require.NoError(t, err)
	assert.Equal(t, created, user)
	m.assertExpectations(t)
}

func TestLedgerService_EnsureUser_LostCreationRace(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	winner := &models.User{ID: 13, Subject: "user_race", Username: "racer"}

	m.expectTransaction(ctx)
	m.userRepo.On("GetBySubject", ctx, "user_race").Return(nil, nil).Once()
	m.userRepo.On("Create", ctx, mock.Anything).Return(nil, ErrDuplicateSubject)
	m.userRepo.On("GetBySubject", ctx, "user_race").Return(winner, nil).Once()

	user, err := svc.EnsureUser(ctx, &identity.Identity{Subject: "user_race", Nickname: "racer"})

	require.NoError(t, err)
	assert.Equal(t, winner, user)
	m.assertExpectations(t)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestLedgerService_EnsureUser_IntegrityViolation(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	m.expectTransaction(ctx)
	m.userRepo.On("GetBySubject", ctx, "user_dup").Return(nil, ErrIntegrityViolation)

	user, err := svc.EnsureUser(ctx, &identity.Identity{Subject: "user_dup"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrIntegrityViolation)
	m.assertExpectations(t)
	m.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerService_EnsureUser_CreateError(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	m.expectTransaction(ctx)
	m.userRepo.On("GetBySubject", ctx, "user_fail").Return(nil, nil)
	m.userRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("database error"))

	user, err := svc.EnsureUser(ctx, &identity.Identity{Subject: "user_fail", Nickname: "fail"})

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Contains(t, err.Error(), "failed to create user")
	m.assertExpectations(t)
}

func TestLedgerService_EnsureUser_BeginError(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(errors.New("connection refused"))

	user, err := svc.EnsureUser(ctx, &identity.Identity{Subject: "user_x"})

	assert.Nil(t, user)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	m.assertExpectations(t)
}

func TestLedgerService_GetLeaderboard(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	a := &models.User{ID: 1, Username: "a", Score: 100, LastSolvedAt: 5}
	b := &models.User{ID: 2, Username: "b", Score: 100, LastSolvedAt: 3}
	c := &models.User{ID: 3, Username: "c", Score: 90, LastSolvedAt: 1}

	m.expectTransaction(ctx)
	m.userRepo.On("GetTop", ctx, models.LeaderboardSize).Return([]*models.User{a, c, b}, nil)

	entries, err := svc.GetLeaderboard(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "b", entries[0].Username)
	assert.Equal(t, "a", entries[1].Username)
	assert.Equal(t, "c", entries[2].Username)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
	m.assertExpectations(t)
}

func TestLedgerService_GetLeaderboard_RepositoryError(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	m.expectTransaction(ctx)
	m.userRepo.On("GetTop", ctx, models.LeaderboardSize).Return(nil, errors.New("timeout"))

	entries, err := svc.GetLeaderboard(ctx)

	assert.Nil(t, entries)
	assert.Contains(t, err.Error(), "failed to get top users")
	m.assertExpectations(t)
}

func TestLedgerService_SubmitSolve_Unauthorized(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	result, err := svc.SubmitSolve(ctx, nil, 1, 100)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
	m.factory.AssertNotCalled(t, "Create")

	result, err = svc.SubmitSolve(ctx, &identity.Identity{}, 1, 100)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
	m.factory.AssertNotCalled(t, "Create")
}

func TestLedgerService_SubmitSolve_NegativePoints(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_1"}, 1, -5)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidPoints)
	m.factory.AssertNotCalled(t, "Create")
}

func TestLedgerService_SubmitSolve_PolicyRejects(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	policy := new(MockPointsPolicy)
	svc := newTestLedger(m.factory, WithPointsPolicy(policy))

	policy.On("CheckPoints", 3, int64(9999)).Return(ErrPointsMismatch)

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_1"}, 3, 9999)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrPointsMismatch)
	policy.AssertExpectations(t)
	m.factory.AssertNotCalled(t, "Create")
}

func TestLedgerService_SubmitSolve_UserNotFound(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	m.expectTransaction(ctx)
	m.userRepo.On("GetBySubjectForUpdate", ctx, "user_ghost").Return(nil, nil)

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_ghost"}, 1, 100)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUserNotFound)
	m.assertExpectations(t)
}

func TestLedgerService_SubmitSolve_AlreadySolved(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	user := &models.User{ID: 5, Subject: "user_1", Score: 100, SolvedChallenges: []int{7}, LastSolvedAt: 1000}

	m.expectTransaction(ctx)
	m.userRepo.On("GetBySubjectForUpdate", ctx, "user_1").Return(user, nil)

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_1"}, 7, 500)

	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, int64(100), result.User.Score)
	m.assertExpectations(t)
	m.userRepo.AssertNotCalled(t, "RecordSolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestLedgerService_SubmitSolve_Accepted(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	user := &models.User{ID: 5, Subject: "user_1", Username: "ada", Score: 100, SolvedChallenges: []int{1}, LastSolvedAt: 1000}
	nowMs := fixedNow.UnixMilli()

	m.expectTransaction(ctx)
	m.uow.On("Commit").Return(nil)
	m.userRepo.On("GetBySubjectForUpdate", ctx, "user_1").Return(user, nil)
	m.userRepo.On("RecordSolve", ctx, int64(5), 7, int64(250), nowMs).Return(true, nil)
	m.publisher.On("Publish", events.ChallengeSolvedEvent{
		UserID:       5,
		Username:     "ada",
		ChallengeID:  7,
		Points:       250,
		NewScore:     350,
		SolvedCount:  2,
		LastSolvedAt: nowMs,
	}).Return()

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_1"}, 7, 250)

	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, int64(350), result.User.Score)
	assert.Equal(t, []int{1, 7}, result.User.SolvedChallenges)
	assert.Equal(t, nowMs, result.User.LastSolvedAt)
	// the repository snapshot is not mutated
	assert.Equal(t, []int{1}, user.SolvedChallenges)
	m.assertExpectations(t)
}

func TestLedgerService_SubmitSolve_ConditionalPatchNotApplied(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	user := &models.User{ID: 5, Subject: "user_1", Score: 0, SolvedChallenges: []int{}}

	m.expectTransaction(ctx)
	m.userRepo.On("GetBySubjectForUpdate", ctx, "user_1").Return(user, nil)
	m.userRepo.On("RecordSolve", ctx, int64(5), 2, int64(100), fixedNow.UnixMilli()).Return(false, nil)

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_1"}, 2, 100)

	require.NoError(t, err)
	assert.False(t, result.Accepted)
	m.assertExpectations(t)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestLedgerService_SubmitSolve_CommitError(t *testing.T) {
	ctx := context.Background()
	m := newLedgerMocks()
	svc := newTestLedger(m.factory)

	user := &models.User{ID: 5, Subject: "user_1", SolvedChallenges: []int{}}

	m.expectTransaction(ctx)
	m.uow.On("Commit").Return(errors.New("serialization failure"))
	m.userRepo.On("GetBySubjectForUpdate", ctx, "user_1").Return(user, nil)
	m.userRepo.On("RecordSolve", ctx, int64(5), 4, int64(100), fixedNow.UnixMilli()).Return(true, nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.ChallengeSolvedEvent")).Return()

	result, err := svc.SubmitSolve(ctx, &identity.Identity{Subject: "user_1"}, 4, 100)

	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to commit transaction")
	m.assertExpectations(t)
}

func TestLedgerService_GetMyProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		m := newLedgerMocks()
		svc := newTestLedger(m.factory)

		solved, err := svc.GetMyProgress(ctx, nil)

		assert.NoError(t, err)
		assert.Nil(t, solved)
		m.factory.AssertNotCalled(t, "Create")
	})

	t.Run("authenticated without record", func(t *testing.T) {
		m := newLedgerMocks()
		svc := newTestLedger(m.factory)

		m.expectTransaction(ctx)
		m.userRepo.On("GetBySubject", ctx, "user_new").Return(nil, nil)

		solved, err := svc.GetMyProgress(ctx, &identity.Identity{Subject: "user_new"})

		require.NoError(t, err)
		assert.NotNil(t, solved)
		assert.Empty(t, solved)
		m.assertExpectations(t)
	})

	t.Run("returns solved ids", func(t *testing.T) {
		m := newLedgerMocks()
		svc := newTestLedger(m.factory)

		m.expectTransaction(ctx)
		m.userRepo.On("GetBySubject", ctx, "user_1").Return(&models.User{ID: 1, SolvedChallenges: []int{3, 1, 20}}, nil)

		solved, err := svc.GetMyProgress(ctx, &identity.Identity{Subject: "user_1"})

		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 20}, solved)
		m.assertExpectations(t)
	})
}
