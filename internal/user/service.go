package user

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/user/repo"
)

// Store is the credential store. Implementations return userrepo.ErrNotFound
// for a missing email and userrepo.ErrDuplicateEmail on a unique index
// conflict.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	SetResetCode(ctx context.Context, email, code string) error
}

// TokenIssuer signs identity tokens for an email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// Notifier delivers a reset code to the account owner.
type Notifier interface {
	SendResetCode(ctx context.Context, to, code string) error
}

// UserService orchestrates sign-up, login and reset-code issuance.
type UserService struct {
	store    Store
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier Notifier
	logger   *zap.SugaredLogger

	newResetCode func() (string, error)
}

func NewUserService(store Store, hasher PasswordHasher, tokens TokenIssuer, notifier Notifier, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{
		store:        store,
		hasher:       hasher,
		tokens:       tokens,
		notifier:     notifier,
		logger:       logger,
		newResetCode: GenerateResetCode,
	}
}

func storeErr(op string, err error) error {
	return oops.Code(CodeStoreFailed).With("operation", op).Wrap(err)
}

// SignUp registers email with a hashed password and no reset code.
func (s *UserService) SignUp(ctx context.Context, email, password string) error {
	_, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrAlreadyExists
	case !errors.Is(err, userrepo.ErrNotFound):
		return storeErr("GetByEmail", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code(CodeHashFailed).Wrap(err)
	}

	u := &entity.User{Email: email, Password: hash}
	if err := s.store.Create(ctx, u); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return ErrAlreadyExists
		}
		return storeErr("Create", err)
	}
	s.logger.Infow("user registered", "user_id", u.ID)
	return nil
}

// Login returns a signed token for valid credentials. Unknown emails and
// wrong passwords both yield ErrBadCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrBadCredentials
		}
		return "", storeErr("GetByEmail", err)
	}
	if !s.hasher.Verify(u.Password, password) {
		return "", ErrBadCredentials
	}

	tok, err := s.tokens.Issue(u.Email)
	if err != nil {
		return "", oops.Code(CodeTokenFailed).Wrap(err)
	}
	return tok, nil
}

// ForgotPassword stores a fresh reset code on the account and mails it.
// When mailing fails the stored code is kept and the notify error is
// returned.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.store.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeErr("GetByEmail", err)
	}

	code, err := s.newResetCode()
	if err != nil {
		return oops.Code(CodeResetCodeFailed).Wrap(err)
	}

	if err := s.store.SetResetCode(ctx, email, code); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeErr("SetResetCode", err)
	}

	if err := s.notifier.SendResetCode(ctx, email, code); err != nil {
		s.logger.Warnw("reset code stored but email not sent", "err", err)
		return oops.Code(CodeNotifyFailed).With("operation", "SendResetCode").Wrap(err)
	}
	return nil
}
