package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/axdbertuol/carford/apperror"
)

const (
	msgUserExists       = "User already exists"
	msgWrongCredentials = "Wrong credentials"
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Service registers users and exchanges credentials for access tokens.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
	logger *zap.Logger
	cost   int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService creates the auth service.
func NewService(store UserStore, tokens *TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		logger: logger,
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates a user and returns its id. Password composition is checked
// by request validation, not here.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	_, err := s.store.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return 0, apperror.NewConflictError(msgUserExists, nil)
	case !errors.Is(err, ErrUserNotFound):
		return 0, apperror.NewDatabaseError("failed to look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, apperror.NewInternalError("failed to hash password", err)
	}

	u, err := s.store.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return 0, apperror.NewConflictError(msgUserExists, err)
		}
		return 0, apperror.NewDatabaseError("failed to create user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u.ID, nil
}

// Authenticate checks username and password. An unknown user and a wrong
// password give the same error and take about the same time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, apperror.NewInvalidCredentialsError(msgWrongCredentials)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewInvalidCredentialsError(msgWrongCredentials)
	}
	return u, nil
}

// Login authenticates the user and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(u)
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("carford-dummy-password"), s.cost)
		if err != nil {
			s.logger.Error("failed to build dummy hash", zap.Error(err))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
