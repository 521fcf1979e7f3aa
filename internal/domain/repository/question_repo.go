package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByIDs(ids []uint) ([]entity.Question, error)
	List(limit, offset int) ([]entity.Question, int64, error)
	Update(question *entity.Question) error
	Delete(id uint) error

	// ListBank возвращает весь банк в лёгком представлении (id, тип,
	// имя категории) для подбора вопросов при сборке экзамена.
	ListBank() ([]BankEntry, error)

	CountByType() (map[string]int64, error)
}

// BankEntry - облегчённое представление вопроса банка для подбора:
// полный вопрос с текстом и вариантами на этом этапе не нужен
type BankEntry struct {
	ID           uint
	QuestionType string
	CategoryName string
}

// CategoryRepository определяет методы для работы с категориями вопросов
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	GetByName(name string) (*entity.Category, error)
	List() ([]entity.Category, error)
}
