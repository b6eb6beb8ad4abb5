package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/auth"
	"github.com/machi-events/eventfinder/internal/events"
	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// UserService handles registration and credential checks.
type UserService struct {
	users  store.Users
	hasher auth.PasswordHasher
	pub    events.Publisher
	log    zerolog.Logger
}

func NewUserService(users store.Users, hasher auth.PasswordHasher, pub events.Publisher, log zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, pub: pub, log: log}
}

// Register creates a user with a hashed password. Input must already be validated.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, username, hash)
	if errors.Is(err, model.ErrConflict) {
		// lost a race with a concurrent registration
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	if !s.pub.Publish(events.Activity{Kind: events.KindUserRegistered, UserID: u.ID}) {
		s.log.Warn().Int64("user_id", u.ID).Msg("activity bus full; dropping user.registered")
	}
	return u, nil
}

// Login checks credentials. The two failure kinds stay distinct.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrIncorrectPassword
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.Get(ctx, id)
}
