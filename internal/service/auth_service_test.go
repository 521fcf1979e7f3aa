package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/pkg/auth"
)

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func testJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)
	return jwtService
}

func teacherWithPassword(t *testing.T, username, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         entity.RoleTeacher,
	}
	user.ID = 1
	return user
}

func TestAuthService_LoginTeacher_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	user := teacherWithPassword(t, "ivanov", "password123")
	mockUserRepo.On("GetByUsername", "ivanov").Return(user, nil)

	jwtService := testJWTService(t)
	svc := NewAuthService(mockUserRepo, jwtService, nil)

	// Act
	token, gotUser, err := svc.LoginTeacher("ivanov", "password123")

	// Assert: токен валиден и содержит данные пользователя
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, gotUser.ID)

	claims, err := jwtService.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "ivanov", claims.Username)
	assert.Equal(t, entity.RoleTeacher, claims.Role)
}

func TestAuthService_LoginTeacher_WrongPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	user := teacherWithPassword(t, "ivanov", "password123")
	mockUserRepo.On("GetByUsername", "ivanov").Return(user, nil)

	svc := NewAuthService(mockUserRepo, testJWTService(t), nil)

	_, _, err := svc.LoginTeacher("ivanov", "wrong-password")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_LoginTeacher_UnknownUser(t *testing.T) {
	// Неизвестный логин и неверный пароль неразличимы для клиента
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByUsername", "ghost").Return(nil, apperrors.ErrNotFound)

	svc := NewAuthService(mockUserRepo, testJWTService(t), nil)

	_, _, err := svc.LoginTeacher("ghost", "password123")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_RegisterTeacher_UsernameTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	existing := teacherWithPassword(t, "ivanov", "password123")
	mockUserRepo.On("GetByUsername", "ivanov").Return(existing, nil)

	svc := NewAuthService(mockUserRepo, testJWTService(t), nil)

	_, err := svc.RegisterTeacher("ivanov", "another-password", "Иванов И.И.")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_RegisterTeacher_ShortPassword(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), testJWTService(t), nil)

	_, err := svc.RegisterTeacher("ivanov", "123", "Иванов И.И.")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_GetStudentSession_EmptyToken(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), testJWTService(t), nil)

	_, err := svc.GetStudentSession("")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
