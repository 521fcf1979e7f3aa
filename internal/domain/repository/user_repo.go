package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с учётными записями преподавателей
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	List(limit, offset int) ([]entity.User, error)
}
