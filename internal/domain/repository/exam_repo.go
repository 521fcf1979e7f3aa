package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ExamRepository определяет методы для работы с экзаменами и их вопросами
type ExamRepository interface {
	Create(exam *entity.Exam) error
	GetByID(id uint) (*entity.Exam, error)
	List(limit, offset int) ([]entity.Exam, error)
	ListByStatus(status string) ([]entity.Exam, error)
	UpdateStatus(examID uint, status string) error
	Delete(id uint) error

	// GetExamQuestions возвращает связки экзамен-вопрос вместе с вопросами
	// (preload) в порядке добавления.
	GetExamQuestions(examID uint) ([]entity.ExamQuestion, error)

	// ReplaceQuestions атомарно заменяет состав экзамена.
	ReplaceQuestions(examID uint, questionIDs []uint, score float64) error

	// AddQuestions добавляет вопросы к экзамену с указанным баллом.
	AddQuestions(examID uint, questionIDs []uint, score float64) error

	// RemoveQuestions убирает вопросы из экзамена.
	RemoveQuestions(examID uint, questionIDs []uint) error

	// SetQuestionScores атомарно выставляет баллы вопросам экзамена:
	// ID вопроса -> новый балл.
	SetQuestionScores(examID uint, scores map[uint]float64) error
}
