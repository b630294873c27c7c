package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"places-go/internal/auth"
	"places-go/internal/logger"
	"places-go/internal/models"
	"places-go/internal/session"
	"places-go/internal/storage"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (sessionID string, user *models.User, err error)
	Logout(ctx context.Context, sessionID string) error
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo storage.UserRepository
	sessions session.Store
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(userRepo storage.UserRepository, sessions session.Store) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// Register 处理用户注册逻辑。
func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	// 检查邮箱是否已被占用
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	newUser := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.L().Infow("user registered", "user", newUser.ID, "email", email)
	return newUser, nil
}

// Login 校验凭据并创建服务端会话，返回会话 ID 与用户信息。
func (s *authService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrEmailNotRegistered
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	// 密码哈希即使有 json:"-" 也不往外带
	user.PasswordHash = ""
	logger.L().Infow("user logged in", "user", user.ID)
	return sessionID, user, nil
}

// Logout 销毁会话；会话不存在时返回 ErrInvalidSession。
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	deleted, err := s.sessions.Destroy(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	if !deleted {
		return session.ErrInvalidSession
	}
	return nil
}
