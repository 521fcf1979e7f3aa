package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

const sessionKeyPrefix = "student_session:"

// StudentSession хранит данные сессии студента, открытой перед прохождением теста
type StudentSession struct {
	StudentName string    `json:"student_name"`
	EmployeeNo  string    `json:"employee_no"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionStore управляет сессиями студентов в Redis.
// Студенты не имеют учетных записей, поэтому сессия — единственный
// источник их идентичности между входом и отправкой ответов.
type SessionStore struct {
	client redis.UniversalClient
	ctx    context.Context
	ttl    time.Duration
}

// NewSessionStore создает новое хранилище сессий студентов
func NewSessionStore(client redis.UniversalClient, ttl time.Duration) (*SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for SessionStore")
	}
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &SessionStore{
		client: client,
		ctx:    context.Background(),
		ttl:    ttl,
	}, nil
}

// Create создает сессию и возвращает непрозрачный токен
func (s *SessionStore) Create(studentName, employeeNo string) (string, error) {
	token := uuid.New().String()
	session := StudentSession{
		StudentName: studentName,
		EmployeeNo:  employeeNo,
		CreatedAt:   time.Now(),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to marshal student session: %w", err)
	}
	if err := s.client.Set(s.ctx, sessionKeyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store student session: %w", err)
	}
	return token, nil
}

// Get возвращает сессию по токену и продлевает время ее жизни
func (s *SessionStore) Get(token string) (*StudentSession, error) {
	data, err := s.client.Get(s.ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	var session StudentSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal student session: %w", err)
	}
	// Скользящее продление: активная сессия не истекает посреди теста
	s.client.Expire(s.ctx, sessionKeyPrefix+token, s.ttl)
	return &session, nil
}

// Delete удаляет сессию (выход студента)
func (s *SessionStore) Delete(token string) error {
	return s.client.Del(s.ctx, sessionKeyPrefix+token).Err()
}
