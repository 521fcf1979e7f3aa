package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/handler/dto"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

// SubmissionHandler обрабатывает сдачу тестов и просмотр попыток
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	analyticsService  *service.AnalyticsService
}

// NewSubmissionHandler создает новый обработчик сдачи тестов
func NewSubmissionHandler(
	submissionService *service.SubmissionService,
	analyticsService *service.AnalyticsService,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		analyticsService:  analyticsService,
	}
}

// SubmitRequest представляет отправку ответов студента.
// Ключи answers — ID вопросов, значения — ответы в произвольном JSON-виде:
// буква, список букв или булево значение.
type SubmitRequest struct {
	Answers     map[uint]interface{} `json:"answers" binding:"required"`
	SwitchCount int                  `json:"switch_count" binding:"omitempty,min=0"`
}

// Submit принимает ответы студента и возвращает результат
// POST /api/student/exams/:id/submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.submissionService.Submit(service.SubmitParams{
		ExamID:      examID,
		StudentName: c.GetString("student_name"),
		EmployeeNo:  c.GetString("employee_no"),
		Answers:     req.Answers,
		SwitchCount: req.SwitchCount,
	})
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	// Статистика теста устарела после новой сдачи
	h.analyticsService.InvalidateExamStatistics(examID)

	c.JSON(http.StatusCreated, dto.NewAttemptResponse(attempt, false))
}

// ListExamAttempts возвращает все попытки по тесту (для преподавателя)
// GET /api/exams/:id/attempts
func (h *SubmissionHandler) ListExamAttempts(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	attempts, err := h.submissionService.ListExamAttempts(examID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptListResponse(attempts))
}

// GetAttempt возвращает попытку с проверенными ответами (для преподавателя)
// GET /api/attempts/:id
func (h *SubmissionHandler) GetAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	attempt, err := h.submissionService.GetAttempt(attemptID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt, true))
}

// ListMyAttempts возвращает попытки текущего студента
// GET /api/student/attempts
func (h *SubmissionHandler) ListMyAttempts(c *gin.Context) {
	attempts, err := h.submissionService.ListStudentAttempts(c.GetString("student_name"))
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptListResponse(attempts))
}

// handleSubmissionError преобразует ошибки сервиса в HTTP-ответы.
// Повторная сдача — отдельный случай 409, который фронтенд показывает студенту.
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrAlreadySubmitted) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "already_submitted"})
	} else if errors.Is(err, apperrors.ErrExamNotOpen) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in SubmissionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
