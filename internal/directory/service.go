// Package directory serves the name/email listing behind /users.
package directory

import (
	"context"

	"github.com/samber/oops"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/directory/entity"
)

const CodeStoreFailed = "STORE_FAILED"

// Store persists directory entries.
type Store interface {
	List(ctx context.Context) ([]entity.DirectoryUser, error)
	Create(ctx context.Context, u *entity.DirectoryUser) error
}

// Service encapsulates the listing operations and depends on a repo.
type Service struct {
	repo Store
}

// NewService constructs a Service with the provided repository.
func NewService(r Store) *Service {
	return &Service{repo: r}
}

// ListAll returns every entry. An empty directory is an empty slice.
func (s *Service) ListAll(ctx context.Context) ([]entity.DirectoryUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.Code(CodeStoreFailed).With("operation", "List").Wrap(err)
	}
	if users == nil {
		users = []entity.DirectoryUser{}
	}
	return users, nil
}

// Add stores a new entry. Duplicate emails are allowed.
func (s *Service) Add(ctx context.Context, name, email string) (*entity.DirectoryUser, error) {
	u := &entity.DirectoryUser{Name: name, Email: email}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, oops.Code(CodeStoreFailed).With("operation", "Create").Wrap(err)
	}
	return u, nil
}
