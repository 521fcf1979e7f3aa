package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AnswerResponse представляет один проверенный ответ студента
type AnswerResponse struct {
	QuestionID    uint        `json:"question_id"`
	StudentAnswer interface{} `json:"student_answer"`
	IsCorrect     bool        `json:"is_correct"`
}

// AttemptResponse представляет попытку сдачи теста
type AttemptResponse struct {
	ID          uint             `json:"id"`
	ExamID      uint             `json:"exam_id"`
	StudentName string           `json:"student_name"`
	EmployeeNo  string           `json:"employee_no,omitempty"`
	FinalScore  float64          `json:"final_score"`
	SwitchCount int              `json:"switch_count"`
	SubmitTime  time.Time        `json:"submit_time"`
	Answers     []AnswerResponse `json:"answers,omitempty"`
}

// NewAttemptResponse создает DTO попытки
func NewAttemptResponse(attempt *entity.ExamAttempt, includeAnswers bool) *AttemptResponse {
	resp := &AttemptResponse{
		ID:          attempt.ID,
		ExamID:      attempt.ExamID,
		StudentName: attempt.StudentName,
		EmployeeNo:  attempt.EmployeeNo,
		FinalScore:  attempt.FinalScore,
		SwitchCount: attempt.SwitchCount,
		SubmitTime:  attempt.SubmitTime,
	}
	if includeAnswers {
		resp.Answers = make([]AnswerResponse, 0, len(attempt.Answers))
		for _, a := range attempt.Answers {
			resp.Answers = append(resp.Answers, AnswerResponse{
				QuestionID:    a.QuestionID,
				StudentAnswer: a.StudentAnswer.Decoded(),
				IsCorrect:     a.IsCorrect,
			})
		}
	}
	return resp
}

// NewAttemptListResponse создает список DTO попыток без ответов
func NewAttemptListResponse(attempts []entity.ExamAttempt) []*AttemptResponse {
	items := make([]*AttemptResponse, 0, len(attempts))
	for i := range attempts {
		items = append(items, NewAttemptResponse(&attempts[i], false))
	}
	return items
}
