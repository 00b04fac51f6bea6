// Package memory keeps the users collection in process. It backs STORAGE_DRIVER=memory
// and service tests; a unit of work holds the store lock from Begin until Commit or Rollback,
// so transactions are fully serialized.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"decryptzone/events"
	"decryptzone/models"
	"decryptzone/service"
)

// Store is an in-memory users collection
type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
	bus    *events.Bus
}

// NewStore creates an empty store that flushes committed events to bus
func NewStore(bus *events.Bus) *Store {
	return &Store{
		nextID: 1,
		users:  make(map[int64]*models.User),
		bus:    bus,
	}
}

// Create returns a new unit of work over the store
func (s *Store) Create() service.UnitOfWork {
	return &unitOfWork{store: s}
}

// InsertRaw stores u as is, bypassing the subject uniqueness check.
// Tests use it to simulate a corrupted collection.
func (s *Store) InsertRaw(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := u.Clone()
	if c.ID == 0 {
		c.ID = s.nextID
	}
	if c.ID >= s.nextID {
		s.nextID = c.ID + 1
	}
	s.users[c.ID] = c
	return c.Clone()
}

// Count returns the number of stored users
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type unitOfWork struct {
	store  *Store
	ctx    context.Context
	staged map[int64]*models.User
	nextID int64
	bus    *events.TransactionalBus
	repo   *userRepository
	active bool
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.store.mu.Lock()
	u.active = true
	u.ctx = ctx
	u.staged = make(map[int64]*models.User)
	u.nextID = u.store.nextID
	if u.store.bus != nil {
		u.bus = events.NewTransactionalBus(u.store.bus)
	}
	u.repo = &userRepository{uow: u}
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}

	for id, user := range u.staged {
		u.store.users[id] = user
	}
	u.store.nextID = u.nextID
	u.finish()

	if u.bus != nil {
		u.bus.Flush(u.ctx)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	if u.bus != nil {
		u.bus.Discard()
	}
	u.finish()
	return nil
}

func (u *unitOfWork) finish() {
	u.staged = nil
	u.active = false
	u.store.mu.Unlock()
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if !u.active {
		panic("unit of work not started - call Begin() first")
	}
	return u.repo
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	if !u.active {
		panic("unit of work not started - call Begin() first")
	}
	if u.bus == nil {
		return discardPublisher{}
	}
	return u.bus
}

type discardPublisher struct{}

func (discardPublisher) Publish(events.Event) {}

// userRepository reads through the unit of work's staged writes
type userRepository struct {
	uow *unitOfWork
}

func (r *userRepository) lookup(id int64) *models.User {
	if u, ok := r.uow.staged[id]; ok {
		return u
	}
	return r.uow.store.users[id]
}

func (r *userRepository) all() []*models.User {
	users := make([]*models.User, 0, len(r.uow.store.users)+len(r.uow.staged))
	for id := range r.uow.store.users {
		if _, ok := r.uow.staged[id]; !ok {
			users = append(users, r.uow.store.users[id])
		}
	}
	for _, u := range r.uow.staged {
		users = append(users, u)
	}
	return users
}

func (r *userRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	var match *models.User
	for _, u := range r.all() {
		if u.Subject != subject {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("subject %q: %w", subject, service.ErrIntegrityViolation)
		}
		match = u
	}
	return match.Clone(), nil
}

func (r *userRepository) GetBySubjectForUpdate(ctx context.Context, subject string) (*models.User, error) {
	return r.GetBySubject(ctx, subject)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.GetBySubject(ctx, user.Subject)
	if err != nil && !errors.Is(err, service.ErrIntegrityViolation) {
		return nil, err
	}
	if existing != nil || err != nil {
		return nil, service.ErrDuplicateSubject
	}

	now := time.Now().UTC()
	created := user.Clone()
	created.ID = r.uow.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.uow.nextID++
	r.uow.staged[created.ID] = created

	return created.Clone(), nil
}

func (r *userRepository) RecordSolve(ctx context.Context, userID int64, challengeID int, points int64, solvedAt int64) (bool, error) {
	current := r.lookup(userID)
	if current == nil {
		return false, fmt.Errorf("user with id %d not found", userID)
	}
	if current.HasSolved(challengeID) {
		return false, nil
	}

	patched := current.Clone()
	patched.Score += points
	patched.SolvedChallenges = append(patched.SolvedChallenges, challengeID)
	patched.LastSolvedAt = solvedAt
	patched.UpdatedAt = time.Now().UTC()
	r.uow.staged[userID] = patched

	return true, nil
}

func (r *userRepository) GetTop(ctx context.Context, limit int) ([]*models.User, error) {
	users := r.clones(r.all())
	models.SortForLeaderboard(users)
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	users := r.clones(r.all())
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) clones(users []*models.User) []*models.User {
	out := make([]*models.User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}

var _ service.UnitOfWorkFactory = (*Store)(nil)
