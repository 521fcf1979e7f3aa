package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	redisrepo "github.com/yourusername/exam-api/internal/repository/redis"
	"github.com/yourusername/exam-api/pkg/auth"
)

// AuthService предоставляет методы для аутентификации.
// Преподаватели входят по логину и паролю и получают JWT;
// студенты входят по имени и табельному номеру и получают
// непрозрачный токен сессии в Redis.
type AuthService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	sessionStore *redisrepo.SessionStore
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	sessionStore *redisrepo.SessionStore,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
	}
}

// RegisterTeacher регистрирует нового преподавателя
func (s *AuthService) RegisterTeacher(username, password, fullName string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	// Проверяем, что пользователь с таким именем не существует
	existing, err := s.userRepo.GetByUsername(username)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is already taken", apperrors.ErrConflict, username)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: password, // будет хеширован в BeforeSave
		Role:         entity.RoleTeacher,
		FullName:     strings.TrimSpace(fullName),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован преподаватель: %s (ID=%d)", user.Username, user.ID)
	return user, nil
}

// LoginTeacher проверяет учетные данные преподавателя и выдает JWT
func (s *AuthService) LoginTeacher(username, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.CheckPassword(password) {
		return "", nil, fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Вход преподавателя: %s (ID=%d)", user.Username, user.ID)
	return token, user, nil
}

// LoginStudent открывает сессию студента перед прохождением теста.
// Учетная запись не создается: студентов идентифицирует имя и табельный номер.
func (s *AuthService) LoginStudent(studentName, employeeNo string) (string, error) {
	studentName = strings.TrimSpace(studentName)
	employeeNo = strings.TrimSpace(employeeNo)
	if studentName == "" {
		return "", fmt.Errorf("%w: student name is required", apperrors.ErrValidation)
	}

	token, err := s.sessionStore.Create(studentName, employeeNo)
	if err != nil {
		return "", fmt.Errorf("failed to create student session: %w", err)
	}

	log.Printf("[AuthService] Открыта сессия студента: %s", studentName)
	return token, nil
}

// GetStudentSession возвращает сессию студента по токену
func (s *AuthService) GetStudentSession(token string) (*redisrepo.StudentSession, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return s.sessionStore.Get(token)
}

// LogoutStudent закрывает сессию студента
func (s *AuthService) LogoutStudent(token string) error {
	if token == "" {
		return nil
	}
	return s.sessionStore.Delete(token)
}

// GetUserByID возвращает преподавателя по ID (для /auth/me)
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}
