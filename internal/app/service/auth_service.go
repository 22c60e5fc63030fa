package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/common"
	"taskboard/internal/common/security"
	"taskboard/internal/domain/model"
	"taskboard/internal/domain/repository"

	"github.com/google/uuid"
)

// AuthService covers registration, credential login, and profile updates,
// including the task-owner cascade when a username changes. It needs the
// task store only for that cascade.
type AuthService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	tokens   *security.TokenService
	log      *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	tokens *security.TokenService,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		tokens:   tokens,
		log:      log,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// UserPatch applies only the fields that are present. A nil pointer means
// the field was absent from the payload; JSON null decodes to nil as well
// and is treated the same way.
type UserPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type UserResponse struct {
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	FullName  string     `json:"full_name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func userResponse(user *model.User) *UserResponse {
	return &UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.Errorf("username and password are required: %w", common.ErrBadRequest)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on a duplicate username.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("new user registered", "username", user.Username)
	return userResponse(user), nil
}

// Login verifies the credentials and exchanges them for a bearer token. A
// missing user and a wrong password are deliberately indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	if username == "" || password == "" {
		return nil, common.ErrUnauthorized
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("access token issued", "username", user.Username)
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Profile is the read side of /users/me.
func (s *AuthService) Profile(user *model.User) *UserResponse {
	return userResponse(user)
}

// UpdateProfile applies the patch to the authenticated user. A username
// change triggers the owner-rename cascade over the task store. The cascade
// runs after the user record is already renamed and is not transactional
// with it; on cascade failure the rename stands and the caller receives an
// internal error.
func (s *AuthService) UpdateProfile(ctx context.Context, current *model.User, patch UserPatch) (*UserResponse, error) {
	fields := map[string]interface{}{}
	if patch.Username != nil {
		fields["username"] = *patch.Username
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.FullName != nil {
		fields["full_name"] = *patch.FullName
	}
	if patch.Password != nil {
		hashed, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["hashed_password"] = hashed
	}

	if len(fields) == 0 {
		return nil, common.Errorf("no fields to update provided: %w", common.ErrBadRequest)
	}
	fields["updated_at"] = time.Now().UTC()

	matched, _, err := s.userRepo.UpdateByUsername(ctx, current.Username, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if matched == 0 {
		return nil, common.Errorf("user not found: %w", common.ErrNotFound)
	}

	username := current.Username
	if patch.Username != nil && *patch.Username != current.Username {
		if err := s.taskRepo.RenameOwner(ctx, current.Username, *patch.Username); err != nil {
			s.log.Error("task owner cascade failed",
				"old_username", current.Username,
				"new_username", *patch.Username,
				"error", err,
			)
			return nil, common.Errorf("task ownership cannot be moved to new username: %w", common.ErrInternalServer)
		}
		s.log.Info("task ownership moved",
			"old_username", current.Username,
			"new_username", *patch.Username,
		)
	}
	if patch.Username != nil {
		username = *patch.Username
	}

	updated, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("user not found after update: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.log.Info("user profile updated", "username", username)
	return userResponse(updated), nil
}
