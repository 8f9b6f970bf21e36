package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
	maxUsernameLength = 32
	maxClassLength    = 16
)

// Auth handles registration, login and session lifecycle of users.
type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	logger       *logger.Logger
	now          func() time.Time
}

// NewAuth creates a new Auth service.
//
// Parameters:
//   - userStore: Storage for user accounts
//   - hasher: Password hasher used on register and login
//   - tokenService: Service issuing and rotating session tokens
//   - logger: Logger instance
func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates a user with zeroed stats and opens a session for it.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, model.Session, error) {
	params, err := normalizeRegistration(params)
	if err != nil {
		a.logger.Debug("Auth service: registration rejected",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, model.Session{}, err
	}

	a.logger.Debug("Auth service: starting user registration",
		"username", params.Username)

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Class:        params.Class,
		CreatedAt:    a.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			a.logger.Info("Auth service: user already exists",
				"username", params.Username,
				"error", err.Error())
			return model.User{}, model.Session{}, err
		}
		a.logger.Error("Auth service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.User{}, model.Session{}, err
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID.String(),
		"username", user.Username)

	return user, session, nil
}

// Login authenticates by email or username. Unknown users and wrong passwords
// fail identically.
func (a *Auth) Login(ctx context.Context, identifier, password string) (model.User, model.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return model.User{}, model.Session{}, model.NewErrMissingField("identifier")
	}
	if password == "" {
		return model.User{}, model.Session{}, model.NewErrMissingField("password")
	}

	user, err := a.userStore.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: login for unknown user",
				"identifier", identifier)
			return model.User{}, model.Session{}, model.NewErrInvalidCredentials()
		}
		a.logger.Error("Auth service: failed to get user",
			"identifier", identifier,
			"error", err.Error())
		return model.User{}, model.Session{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		a.logger.Info("Auth service: password mismatch",
			"user_id", user.ID.String())
		return model.User{}, model.Session{}, model.NewErrInvalidCredentials()
	}

	session, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.User{}, model.Session{}, err
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID.String())

	return user, session, nil
}

// GetUser returns the user by ID.
//
// Returns:
//   - model.User: The stored user with stats
//   - error: A not found error when the user does not exist
func (a *Auth) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewErrUserNotFound(userID.String())
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new session.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.Session, error) {
	return a.tokenService.Refresh(ctx, refreshToken)
}

// Logout revokes the given refresh token.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	return a.tokenService.RevokeByToken(ctx, refreshToken)
}

func normalizeRegistration(params model.RegisterParams) (model.RegisterParams, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	switch {
	case params.Username == "":
		return params, model.NewErrMissingField("username")
	case params.Email == "":
		return params, model.NewErrMissingField("email")
	case params.Password == "":
		return params, model.NewErrMissingField("password")
	}

	if len([]rune(params.Username)) > maxUsernameLength {
		return params, model.NewErrInvalidField("username", fmt.Sprintf("at most %d characters", maxUsernameLength))
	}
	if addr, err := mail.ParseAddress(params.Email); err != nil || addr.Address != params.Email {
		return params, model.NewErrInvalidField("email", "not a valid address")
	}
	if len(params.Password) < minPasswordLength {
		return params, model.NewErrInvalidField("password", fmt.Sprintf("at least %d characters", minPasswordLength))
	}
	if len(params.Password) > maxPasswordLength {
		return params, model.NewErrInvalidField("password", fmt.Sprintf("at most %d bytes", maxPasswordLength))
	}

	if params.Class != nil {
		class := strings.TrimSpace(*params.Class)
		switch {
		case class == "":
			params.Class = nil
		case len([]rune(class)) > maxClassLength:
			return params, model.NewErrInvalidField("class", fmt.Sprintf("at most %d characters", maxClassLength))
		default:
			params.Class = &class
		}
	}

	return params, nil
}
