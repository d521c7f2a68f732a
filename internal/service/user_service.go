package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gullrabia/Chat-app/internal/audit"
	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/repository"
	"github.com/gullrabia/Chat-app/pkg/jwt"
	"github.com/gullrabia/Chat-app/pkg/log"
	"github.com/gullrabia/Chat-app/pkg/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
)

type userServiceImpl struct {
	repo   repository.UserRepository
	tokens *jwt.Manager
	store  storage.Storage
}

// NewUserService creates a user service.
func NewUserService(repo repository.UserRepository, tokens *jwt.Manager, store storage.Storage) UserService {
	return &userServiceImpl{
		repo:   repo,
		tokens: tokens,
		store:  store,
	}
}

// Signup registers a new user and issues a token.
func (s *userServiceImpl) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, string, error) {
	l := log.Ctx(ctx)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, "", err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     req.FullName,
		Bio:          req.Bio,
		PasswordHash: string(hashed),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrAccountExists
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to sign token after signup")
		return nil, "", err
	}

	audit.Log(ctx, audit.ActionSignup, user.ID, "account created")

	return user, token, nil
}

// Login authenticates a user and issues a token.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", req.Email, "login failed: user not found")
			return nil, "", ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Email, "login failed: wrong password")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to sign token after login")
		return nil, "", err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")

	return user, token, nil
}

// Logout revokes the user's outstanding tokens.
func (s *userServiceImpl) Logout(ctx context.Context, userID string) error {
	s.tokens.Revoke(userID)
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

// UpdateProfile updates mutable profile fields. A data-URL profile picture
// is decoded and moved to blob storage; an already-hosted URL is kept.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pic := req.ProfilePic
	if strings.HasPrefix(pic, "data:") {
		url, err := uploadDataURL(ctx, s.store, "avatars", pic)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("profile picture upload failed")
			return nil, err
		}
		pic = url
	}

	user.FullName = req.FullName
	user.Bio = req.Bio
	user.ProfilePic = pic

	if err := s.repo.Update(ctx, user); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("profile update failed")
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")

	return user, nil
}
