package repository

import (
	"errors"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ErrDuplicateAttempt возвращается хранилищем, когда вставка попытки
// нарушила уникальный индекс (exam_id, student_name). Это страховка от
// гонки двух одновременных отправок: проверка "уже сдавал?" перед записью
// не закрывает окно между чтением и вставкой.
var ErrDuplicateAttempt = errors.New("attempt for this exam and student already exists")

// AttemptRepository определяет методы для работы с попытками сдачи
type AttemptRepository interface {
	// CreateWithAnswers атомарно сохраняет попытку и все её ответы:
	// либо записывается всё, либо ничего.
	CreateWithAnswers(attempt *entity.ExamAttempt, answers []entity.StudentAnswer) error

	ExistsByExamAndStudent(examID uint, studentName string) (bool, error)
	GetByID(id uint) (*entity.ExamAttempt, error)
	ListByExam(examID uint) ([]entity.ExamAttempt, error)
	ListByStudent(studentName string) ([]entity.ExamAttempt, error)

	// GetAnswers возвращает ответы попытки в порядке записи.
	GetAnswers(attemptID uint) ([]entity.StudentAnswer, error)
}
