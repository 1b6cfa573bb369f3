package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/ratelimit"
)

var (
	ErrInvalidUsername = errors.New("username must be 3-32 letters, digits, '-' or '_'")

	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)
)

type Server struct {
	log     *zap.Logger
	store   Store
	limiter ratelimit.Limiter
}

func NewServer(log *zap.Logger, store Store, limiter ratelimit.Limiter) *Server {
	return &Server{
		log:     log,
		store:   store,
		limiter: limiter,
	}
}

// Register creates a new account. Registrations are limited per client
// address.
func (s *Server) Register(ctx context.Context, username, email, remoteAddr string) (*User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	if err := ratelimit.Check(ctx, s.limiter, ratelimit.RegistrationRule, "ip:"+remoteAddr); err != nil {
		return nil, err
	}

	userID, err := model.GenerateUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := &User{
		ID:        userID,
		Username:  username,
		Email:     strings.TrimSpace(email),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, ErrExists) {
			s.log.Warn("Failed to create user", zap.Error(err))
		}
		return nil, err
	}

	s.log.Debug("Registered user", zap.String("user_id", userID.String()), zap.String("username", username))
	return user, nil
}
