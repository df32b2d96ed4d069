package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/utils"
)

const msgInvalidCredentials = "Invalid username or password"

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// IsInvalidCredentials reports whether err is a rejected login.
func IsInvalidCredentials(err error) bool {
	var svcErr *apierrors.Error
	return errors.As(err, &svcErr) && svcErr.Kind == apierrors.KindUnauthenticated && svcErr.Message == msgInvalidCredentials
}

// Signup creates a new user with a fresh friend code.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	const op = "Signup"

	input.Username = strings.TrimSpace(input.Username)
	if err := validate(op, 0, input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, fail(op, 0, apierrors.Conflict(op, "Username already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageFailure(op, 0, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storageFailure(op, 0, err)
	}

	friendCode, err := utils.GenerateFriendCode()
	if err != nil {
		return nil, storageFailure(op, 0, err)
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		FriendCode:   friendCode,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageFailure(op, 0, err)
	}

	return user, nil
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	const op = "Login"

	if err := validate(op, 0, input); err != nil {
		return nil, err
	}

	rejected := &apierrors.Error{Kind: apierrors.KindUnauthenticated, Op: op, Message: msgInvalidCredentials}

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(op, 0, rejected)
		}
		return nil, storageFailure(op, 0, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fail(op, user.ID, rejected)
	}

	return user, nil
}

// CurrentUser returns the acting user.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	const op = "CurrentUser"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(op, userID, apierrors.Unauthenticated(op))
		}
		return nil, storageFailure(op, userID, err)
	}
	return user, nil
}
