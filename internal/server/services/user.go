// Package services contains the auth service's business rules. UserService
// implements registration, login, password change, profile lookup and user
// listing; every operation returns a result.Result so that failures reach
// the RPC boundary already classified.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/common"
	"github.com/dmitrijs2005/authgateway/internal/credentials"
	"github.com/dmitrijs2005/authgateway/internal/dbx"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/dmitrijs2005/authgateway/internal/server/config"
	"github.com/dmitrijs2005/authgateway/internal/server/events"
	"github.com/dmitrijs2005/authgateway/internal/server/models"
	"github.com/dmitrijs2005/authgateway/internal/server/repositories/repomanager"
)

const (
	MsgInvalidCredentials   = "Invalid email or password"
	MsgWrongCurrentPassword = "Current password is incorrect"
	MsgUserNotFound         = "User not found"
	MsgRegisterFailed       = "An error occurred while creating the user. Please try again later."
	MsgLoginFailed          = "An error occurred during login. Please try again later."
	MsgChangePasswordFailed = "An error occurred while changing the password. Please try again later."
	MsgListUsersFailed      = "Error fetching users"
	MsgGetProfileFailed     = "Error fetching user profile"
)

const (
	publishTimeout         = 2 * time.Second
	dummyPasswordForTiming = "timing-equaliser"
)

func conflictMessage(email string) string {
	return fmt.Sprintf("A user with email '%s' already exists", email)
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       credentials.Codec
	publisher   events.Publisher
	logger      logging.Logger
	timeout     time.Duration
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec credentials.Codec, pub events.Publisher, l logging.Logger, cfg *config.Config) *UserService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		publisher:   pub,
		logger:      l.With("module", "user_service"),
		timeout:     cfg.RepositoryTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user unless the email is taken. The pre-check gives
// the common case a clean answer; the store's unique index settles races.
func (s *UserService) Register(ctx context.Context, p rpc.RegisterPayload) result.Result[rpc.UserView] {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return result.Fail[rpc.UserView](result.Conflict(conflictMessage(p.Email)))
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "register: lookup failed", "error", err)
		return result.Fail[rpc.UserView](result.Internal(MsgRegisterFailed))
	}

	hash, err := s.codec.Hash(p.Password)
	if err != nil {
		s.logger.Error(ctx, "register: hash failed", "error", err)
		return result.Fail[rpc.UserView](result.Internal(MsgRegisterFailed))
	}

	u, err := repo.Insert(ctx, &models.User{
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: hash,
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		return result.Fail[rpc.UserView](result.Conflict(conflictMessage(p.Email)))
	}
	if err != nil {
		s.logger.Error(ctx, "register: insert failed", "error", err)
		return result.Fail[rpc.UserView](result.Internal(MsgRegisterFailed))
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	s.publish(ctx, events.TypeUserRegistered, u)

	return result.Ok(u.View())
}

// Login checks credentials. Unknown email and wrong password give the same
// error, and both paths run one hash verification.
func (s *UserService) Login(ctx context.Context, p rpc.LoginPayload) result.Result[rpc.UserView] {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.repomanager.Users(s.db).FindByEmail(ctx, p.Email)
	if errors.Is(err, common.ErrorNotFound) {
		s.burnVerify(p.Password)
		return result.Fail[rpc.UserView](result.Unauthorized(MsgInvalidCredentials))
	}
	if err != nil {
		s.logger.Error(ctx, "login: lookup failed", "error", err)
		return result.Fail[rpc.UserView](result.Internal(MsgLoginFailed))
	}

	ok, err := s.codec.Verify(p.Password, u.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "login: stored hash unusable", "user_id", u.ID, "error", err)
		return result.Fail[rpc.UserView](result.Internal(MsgLoginFailed))
	}
	if !ok {
		return result.Fail[rpc.UserView](result.Unauthorized(MsgInvalidCredentials))
	}

	return result.Ok(u.View())
}

// ChangePassword replaces the hash after verifying the current password.
// Lookup, verification and update share one transaction.
func (s *UserService) ChangePassword(ctx context.Context, p rpc.ChangePasswordPayload) result.Result[result.Unit] {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var changed *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.FindByID(ctx, p.UserID)
		if errors.Is(err, common.ErrorNotFound) {
			return result.NotFound(MsgUserNotFound)
		}
		if err != nil {
			return err
		}

		ok, err := s.codec.Verify(p.CurrentPassword, u.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			return result.Unauthorized(MsgWrongCurrentPassword)
		}

		hash, err := s.codec.Hash(p.NewPassword)
		if err != nil {
			return err
		}

		err = repo.UpdatePassword(ctx, u.ID, hash, s.now())
		if errors.Is(err, common.ErrorNotFound) {
			return result.NotFound(MsgUserNotFound)
		}
		if err != nil {
			return err
		}

		changed = u
		return nil
	})

	if err != nil {
		var se *result.StructuredError
		if errors.As(err, &se) {
			return result.Fail[result.Unit](se)
		}
		s.logger.Error(ctx, "change password failed", "user_id", p.UserID, "error", err)
		return result.Fail[result.Unit](result.Internal(MsgChangePasswordFailed))
	}

	s.logger.Info(ctx, "password changed", "user_id", changed.ID)
	s.publish(ctx, events.TypeUserPasswordChanged, changed)

	return result.Ok(result.Unit{})
}

func (s *UserService) GetProfile(ctx context.Context, p rpc.GetProfilePayload) result.Result[rpc.UserView] {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.repomanager.Users(s.db).FindByID(ctx, p.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		return result.Fail[rpc.UserView](result.NotFound(MsgUserNotFound))
	}
	if err != nil {
		s.logger.Error(ctx, "get profile failed", "user_id", p.UserID, "error", err)
		return result.Fail[rpc.UserView](result.Internal(MsgGetProfileFailed))
	}

	return result.Ok(u.View())
}

// ListUsers returns every user in store order (creation time, then id).
func (s *UserService) ListUsers(ctx context.Context, _ rpc.GetUsersPayload) result.Result[[]rpc.UserView] {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	users, err := s.repomanager.Users(s.db).ListAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "list users failed", "error", err)
		return result.Fail[[]rpc.UserView](result.Internal(MsgListUsersFailed))
	}

	return result.Ok(models.Views(users))
}

func (s *UserService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// burnVerify spends one verification on a throwaway hash so that a login
// for an unknown email costs as much as a wrong password.
func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.codec.Hash(dummyPasswordForTiming)
	})
	if s.dummyHash != "" {
		_, _ = s.codec.Verify(password, s.dummyHash)
	}
}

// publish runs after the write is committed; a broker failure is logged and
// never changes the outcome.
func (s *UserService) publish(ctx context.Context, t events.Type, u *models.User) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	e := events.Event{Type: t, UserID: u.ID, Email: u.Email, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn(ctx, "event publish failed", "type", string(t), "user_id", u.ID, "error", err)
	}
}
