package user

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/user/repo"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockStore) SetResetCode(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) Issue(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendResetCode(ctx context.Context, to, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

// memStore is an in-memory Store keyed by email.
type memStore struct {
	mu    sync.Mutex
	users map[string]entity.User
	next  int
}

func newMemStore() *memStore {
	return &memStore{users: map[string]entity.User{}}
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	return &u, nil
}

func (s *memStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return userrepo.ErrDuplicateEmail
	}
	s.next++
	u.ID = string(rune('0' + s.next))
	s.users[u.Email] = *u
	return nil
}

func (s *memStore) SetResetCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return userrepo.ErrNotFound
	}
	u.ResetCode = &code
	s.users[email] = u
	return nil
}

// recordingNotifier remembers the last code sent and can be told to fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (n *recordingNotifier) SendResetCode(_ context.Context, to, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if n.sent == nil {
		n.sent = map[string]string{}
	}
	n.sent[to] = code
	return nil
}
