package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/farmcart/internal/users"
	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/db/models"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/metrics"
	"github.com/angelmondragon/farmcart/pkg/security"
	"gorm.io/gorm"
)

const (
	opRegister = "auth.register"
	opLogin    = "auth.login"
	opResolve  = "auth.resolve"

	invalidCredentialsMessage = "invalid username or password"
)

// Service is the user directory: it issues identities and checks credentials.
type Service interface {
	Register(ctx context.Context, username, password string) (*users.UserDTO, error)
	Login(ctx context.Context, username, password string) (*users.UserDTO, error)
	// Resolve confirms a signed-in identity still exists in the directory.
	Resolve(ctx context.Context, userID int64) (*users.UserDTO, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type service struct {
	users       userRepository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	metrics     *metrics.StoreMetrics
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Metrics        *metrics.StoreMetrics
}

// NewService constructs the user directory with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		users:       params.UserRepo,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		metrics:     params.Metrics,
	}, nil
}

// Register creates a user. The username is stored exactly as given; a taken
// username surfaces as DUPLICATE_USER straight from the unique constraint.
func (s *service) Register(ctx context.Context, username, password string) (*users.UserDTO, error) {
	if strings.TrimSpace(username) == "" {
		s.metrics.Reject(opRegister)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required").
			WithDetails(map[string]any{"field": "username"})
	}
	if password == "" {
		s.metrics.Reject(opRegister)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required").
			WithDetails(map[string]any{"field": "password"})
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	start := time.Now()
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			s.metrics.Reject(opRegister)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicateUser, err, "username already taken")
		}
		s.metrics.Observe(opRegister, start, err)
		s.logg.Error(s.logg.WithOperation(ctx, opRegister), "create user failed", err)
		return nil, pkgerrors.Storage(err, "create user")
	}
	s.metrics.Observe(opRegister, start, nil)

	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user registered")
	return users.FromModel(user), nil
}

// Login returns the stored user when the pair matches.
func (s *service) Login(ctx context.Context, username, password string) (*users.UserDTO, error) {
	if username == "" || password == "" {
		s.metrics.Reject(opLogin)
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	start := time.Now()
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.Reject(opLogin)
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		s.metrics.Observe(opLogin, start, err)
		s.logg.Error(s.logg.WithOperation(ctx, opLogin), "lookup user failed", err)
		return nil, pkgerrors.Storage(err, "lookup user")
	}
	s.metrics.Observe(opLogin, start, nil)

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID), "stored password hash unreadable", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		s.metrics.Reject(opLogin)
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return users.FromModel(user), nil
}

// Resolve returns the directory entry for userID, or NOT_FOUND when the user
// is gone. A session slot can outlive its user when the store file is reset.
func (s *service) Resolve(ctx context.Context, userID int64) (*users.UserDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	start := time.Now()
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.Observe(opResolve, start, nil)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	s.metrics.Observe(opResolve, start, err)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(s.logg.WithOperation(ctx, opResolve), userID), "lookup user failed", err)
		return nil, pkgerrors.Storage(err, "lookup user")
	}
	return users.FromModel(user), nil
}
