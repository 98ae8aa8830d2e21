package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/repository"
	"carmarket-backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users   UserStore
	jwtUtil *jwt.JWTUtil
}

func NewAuthService(users UserStore, jwtUtil *jwt.JWTUtil) *AuthService {
	return &AuthService{
		users:   users,
		jwtUtil: jwtUtil,
	}
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
	County      string `json:"county" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdatePhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
}

type LoginResponse struct {
	User  *models.AuthUser `json:"user"`
	Token string           `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		County:       req.County,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(created)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.AuthUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user.AuthView(), nil
}

// UpdatePhone sets the number alert notifications are delivered to.
func (s *AuthService) UpdatePhone(ctx context.Context, userID, phone string) (*models.AuthUser, error) {
	user, err := s.users.UpdatePhone(ctx, userID, phone)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user.AuthView(), nil
}

func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	return s.jwtUtil.ValidateToken(token)
}

func (s *AuthService) issue(user *models.User) (*LoginResponse, error) {
	token, err := s.jwtUtil.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &LoginResponse{User: user.AuthView(), Token: token}, nil
}
