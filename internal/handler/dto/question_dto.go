package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuestionResponse представляет вопрос банка в формате для преподавателя.
// Правильный ответ возвращается: этот DTO виден только преподавателям.
type QuestionResponse struct {
	ID            uint              `json:"id"`
	QuestionText  string            `json:"question_text"`
	QuestionType  string            `json:"question_type"`
	Options       entity.OptionsMap `json:"options"`
	CorrectAnswer interface{}       `json:"correct_answer"`
	CategoryID    *uint             `json:"category_id,omitempty"`
	CategoryName  string            `json:"category_name,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// PaginatedQuestionResponse представляет пагинированный список вопросов
type PaginatedQuestionResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
}

// CategoryResponse представляет категорию вопросов
type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewQuestionResponse создает DTO для вопроса банка
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:            q.ID,
		QuestionText:  q.QuestionText,
		QuestionType:  q.QuestionType,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer.Decoded(),
		CategoryID:    q.CategoryID,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
	if q.Category != nil {
		resp.CategoryName = q.Category.Name
	}
	return resp
}

// NewPaginatedQuestionResponse создает пагинированный ответ
func NewPaginatedQuestionResponse(questions []entity.Question, total int64, page, perPage int) *PaginatedQuestionResponse {
	items := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		items = append(items, NewQuestionResponse(&questions[i]))
	}
	return &PaginatedQuestionResponse{
		Questions: items,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
}

// NewCategoryListResponse создает список DTO категорий
func NewCategoryListResponse(categories []entity.Category) []CategoryResponse {
	items := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return items
}
