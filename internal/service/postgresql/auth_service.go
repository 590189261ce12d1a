package service

import (
	"fmt"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"
	utils "book-market/pkg"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = fmt.Errorf("invalid username or password: %w", entity.ErrForbidden)
	ErrInactiveAccount     = fmt.Errorf("account is inactive: %w", entity.ErrForbidden)
	ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token: %w", entity.ErrForbidden)
	ErrUserNotFound        = fmt.Errorf("user %w", entity.ErrNotFound)
	ErrUsernameTaken       = fmt.Errorf("username already taken: %w", entity.ErrConflict)
)

type AuthService struct {
	userRepo repo.UserRepository
	notifier *Notifier
}

func NewAuthService(userRepo repo.UserRepository, notifier *Notifier) *AuthService {
	return &AuthService{userRepo: userRepo, notifier: notifier}
}

func (s *AuthService) Register(input entity.RegisterInput) (*entity.User, error) {
	existing, err := s.userRepo.GetUserByUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hashed,
		Role:         entity.RoleMember,
		Active:       true,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		// Registration races on username/email resolve to the same
		// answer as the pre-check.
		if repo.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.notifier.Audit(user.ID, "user.register", "user", user.ID, nil)
	return user, nil
}

func (s *AuthService) Login(username, password string) (*entity.LoginResponse, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInactiveAccount
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &entity.LoginResponse{
		Token:        token,
		RefreshToken: refresh,
		User: entity.UserResp{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

func (s *AuthService) Refresh(refreshToken string) (*entity.RefreshResponse, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active {
		return nil, ErrInactiveAccount
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &entity.RefreshResponse{Token: token}, nil
}

func (s *AuthService) Profile(userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
