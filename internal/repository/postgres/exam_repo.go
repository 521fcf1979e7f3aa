package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ExamRepo реализует repository.ExamRepository
type ExamRepo struct {
	db *gorm.DB
}

// NewExamRepo создает новый репозиторий экзаменов
func NewExamRepo(db *gorm.DB) *ExamRepo {
	return &ExamRepo{db: db}
}

// Create создает новый экзамен
func (r *ExamRepo) Create(exam *entity.Exam) error {
	return r.db.Create(exam).Error
}

// GetByID возвращает экзамен по ID вместе с составом вопросов
func (r *ExamRepo) GetByID(id uint) (*entity.Exam, error) {
	var exam entity.Exam
	err := r.db.Preload("ExamQuestions.Question").First(&exam, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// List возвращает экзамены с пагинацией, новые первыми
func (r *ExamRepo) List(limit, offset int) ([]entity.Exam, error) {
	var exams []entity.Exam
	err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&exams).Error
	return exams, err
}

// ListByStatus возвращает экзамены в заданном статусе, новые первыми
func (r *ExamRepo) ListByStatus(status string) ([]entity.Exam, error) {
	var exams []entity.Exam
	err := r.db.Where("status = ?", status).Order("id DESC").Find(&exams).Error
	return exams, err
}

// UpdateStatus точечно меняет статус экзамена без полного Save
func (r *ExamRepo) UpdateStatus(examID uint, status string) error {
	result := r.db.Model(&entity.Exam{}).
		Where("id = ?", examID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет экзамен вместе со связками вопросов
func (r *ExamRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&entity.ExamQuestion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Exam{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// GetExamQuestions возвращает связки экзамен-вопрос с предзагруженными
// вопросами в порядке добавления
func (r *ExamRepo) GetExamQuestions(examID uint) ([]entity.ExamQuestion, error) {
	var examQuestions []entity.ExamQuestion
	err := r.db.Preload("Question").
		Where("exam_id = ?", examID).
		Order("id").
		Find(&examQuestions).Error
	return examQuestions, err
}

// ReplaceQuestions атомарно заменяет состав экзамена новым списком вопросов
func (r *ExamRepo) ReplaceQuestions(examID uint, questionIDs []uint, score float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", examID).Delete(&entity.ExamQuestion{}).Error; err != nil {
			return err
		}
		return createExamQuestions(tx, examID, questionIDs, score)
	})
}

// AddQuestions добавляет вопросы к экзамену
func (r *ExamRepo) AddQuestions(examID uint, questionIDs []uint, score float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return createExamQuestions(tx, examID, questionIDs, score)
	})
}

// RemoveQuestions убирает вопросы из экзамена
func (r *ExamRepo) RemoveQuestions(examID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return r.db.Where("exam_id = ? AND question_id IN ?", examID, questionIDs).
		Delete(&entity.ExamQuestion{}).Error
}

// SetQuestionScores атомарно выставляет баллы вопросам экзамена
func (r *ExamRepo) SetQuestionScores(examID uint, scores map[uint]float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for qid, score := range scores {
			if err := tx.Model(&entity.ExamQuestion{}).
				Where("exam_id = ? AND question_id = ?", examID, qid).
				Update("score", score).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// createExamQuestions создает связки экзамен-вопрос внутри транзакции
func createExamQuestions(tx *gorm.DB, examID uint, questionIDs []uint, score float64) error {
	if len(questionIDs) == 0 {
		return nil
	}
	rows := make([]entity.ExamQuestion, 0, len(questionIDs))
	for _, qid := range questionIDs {
		rows = append(rows, entity.ExamQuestion{
			ExamID:     examID,
			QuestionID: qid,
			Score:      score,
		})
	}
	return tx.Create(&rows).Error
}
