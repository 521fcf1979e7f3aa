package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ExamQuestionResponse представляет вопрос теста с весом
type ExamQuestionResponse struct {
	QuestionID uint             `json:"question_id"`
	Score      float64          `json:"score"`
	Question   *QuestionResponse `json:"question,omitempty"`
}

// ExamResponse представляет тест в формате для преподавателя
type ExamResponse struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	Status          string                 `json:"status"`
	DurationMinutes int                    `json:"duration_minutes"`
	IsRandomized    bool                   `json:"is_randomized"`
	SwitchLimit     int                    `json:"switch_limit"`
	StartTime       *time.Time             `json:"start_time,omitempty"`
	EndTime         *time.Time             `json:"end_time,omitempty"`
	QuestionCount   int                    `json:"question_count"`
	Questions       []ExamQuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ExamListItemResponse представляет тест в списке для студентов.
// Вопросы и их количество не раскрываются до открытия билета.
type ExamListItemResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
}

// NewExamResponse создает DTO теста для преподавателя
func NewExamResponse(exam *entity.Exam, includeQuestions bool) *ExamResponse {
	resp := &ExamResponse{
		ID:              exam.ID,
		Title:           exam.Title,
		Status:          exam.Status,
		DurationMinutes: exam.DurationMinutes,
		IsRandomized:    exam.IsRandomized,
		SwitchLimit:     exam.SwitchLimit,
		StartTime:       exam.StartTime,
		EndTime:         exam.EndTime,
		QuestionCount:   len(exam.ExamQuestions),
		CreatedAt:       exam.CreatedAt,
		UpdatedAt:       exam.UpdatedAt,
	}

	if includeQuestions {
		resp.Questions = make([]ExamQuestionResponse, 0, len(exam.ExamQuestions))
		for _, eq := range exam.ExamQuestions {
			item := ExamQuestionResponse{
				QuestionID: eq.QuestionID,
				Score:      eq.Score,
			}
			if eq.Question != nil {
				q := NewQuestionResponse(eq.Question)
				item.Question = &q
			}
			resp.Questions = append(resp.Questions, item)
		}
	}
	return resp
}

// NewExamListResponse создает список DTO тестов для преподавателя
func NewExamListResponse(exams []entity.Exam) []*ExamResponse {
	items := make([]*ExamResponse, 0, len(exams))
	for i := range exams {
		items = append(items, NewExamResponse(&exams[i], false))
	}
	return items
}

// NewStudentExamListResponse создает список доступных тестов для студентов
func NewStudentExamListResponse(exams []entity.Exam) []ExamListItemResponse {
	items := make([]ExamListItemResponse, 0, len(exams))
	for _, exam := range exams {
		items = append(items, ExamListItemResponse{
			ID:              exam.ID,
			Title:           exam.Title,
			DurationMinutes: exam.DurationMinutes,
			StartTime:       exam.StartTime,
			EndTime:         exam.EndTime,
		})
	}
	return items
}
