package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// CreateWithAnswers атомарно сохраняет попытку и все её ответы.
// Уникальный индекс idx_attempts_exam_student превращает гонку двух
// одновременных отправок под одним именем в ErrDuplicateAttempt:
// - 23505 (unique violation) → попытка уже существует
// - другая ошибка БД → возвращается как есть, транзакция откатывается
func (r *AttemptRepo) CreateWithAnswers(attempt *entity.ExamAttempt, answers []entity.StudentAnswer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: exam #%d, student %q",
					repository.ErrDuplicateAttempt, attempt.ExamID, attempt.StudentName)
			}
			return err
		}

		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ExistsByExamAndStudent проверяет, сдавал ли студент с таким именем этот
// экзамен. Имя сравнивается после trim и без учёта регистра - так же, как
// в уникальном индексе.
func (r *AttemptRepo) ExistsByExamAndStudent(examID uint, studentName string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.ExamAttempt{}).
		Where("exam_id = ? AND lower(btrim(student_name)) = lower(btrim(?))", examID, studentName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.ExamAttempt, error) {
	var attempt entity.ExamAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByExam возвращает все попытки экзамена, новые первыми
func (r *AttemptRepo) ListByExam(examID uint) ([]entity.ExamAttempt, error) {
	var attempts []entity.ExamAttempt
	err := r.db.Where("exam_id = ?", examID).
		Order("submit_time DESC").
		Find(&attempts).Error
	return attempts, err
}

// ListByStudent возвращает историю попыток студента по имени
func (r *AttemptRepo) ListByStudent(studentName string) ([]entity.ExamAttempt, error) {
	var attempts []entity.ExamAttempt
	err := r.db.Where("lower(btrim(student_name)) = lower(btrim(?))", studentName).
		Order("submit_time DESC").
		Find(&attempts).Error
	return attempts, err
}

// GetAnswers возвращает ответы попытки в порядке записи
func (r *AttemptRepo) GetAnswers(attemptID uint) ([]entity.StudentAnswer, error) {
	var answers []entity.StudentAnswer
	err := r.db.Where("attempt_id = ?", attemptID).Order("id").Find(&answers).Error
	return answers, err
}
