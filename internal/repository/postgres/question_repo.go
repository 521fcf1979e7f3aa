package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch создает пакет вопросов в одной транзакции
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает вопросы по списку идентификаторов
func (r *QuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// List возвращает вопросы банка с пагинацией и общим количеством
func (r *QuestionRepo) List(limit, offset int) ([]entity.Question, int64, error) {
	var questions []entity.Question
	var total int64

	if err := r.db.Model(&entity.Question{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("Category").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListBank возвращает облегчённое представление всего банка для подбора
// вопросов: только id, тип и имя категории
func (r *QuestionRepo) ListBank() ([]repository.BankEntry, error) {
	var entries []repository.BankEntry
	err := r.db.Model(&entity.Question{}).
		Select("questions.id, questions.question_type, coalesce(categories.name, '') AS category_name").
		Joins("LEFT JOIN categories ON categories.id = questions.category_id").
		Scan(&entries).Error
	return entries, err
}

// CountByType возвращает количество вопросов по каждому типу
func (r *QuestionRepo) CountByType() (map[string]int64, error) {
	rows := []struct {
		QuestionType string
		Count        int64
	}{}
	err := r.db.Model(&entity.Question{}).
		Select("question_type, count(*) AS count").
		Group("question_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.QuestionType] = row.Count
	}
	return counts, nil
}
