package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/assembler"
	"github.com/yourusername/exam-api/internal/handler/dto"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

// ExamHandler обрабатывает запросы, связанные с тестами
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler создает новый обработчик тестов
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// CreateExamRequest представляет запрос на создание теста
type CreateExamRequest struct {
	Title           string               `json:"title" binding:"required,min=3,max=200"`
	DurationMinutes int                  `json:"duration_minutes" binding:"omitempty,min=1,max=600"`
	SwitchLimit     int                  `json:"switch_limit" binding:"omitempty,min=0"`
	IsRandomized    bool                 `json:"is_randomized"`
	StartTime       *time.Time           `json:"start_time"`
	EndTime         *time.Time           `json:"end_time"`
	QuestionIDs     []uint               `json:"question_ids"`
	RandomConfig    service.RandomConfig `json:"random_config"`
	Score           float64              `json:"score" binding:"omitempty,gt=0"`
}

// CreateExam создает тест
// POST /api/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exam, err := h.examService.CreateExam(service.CreateExamParams{
		Title:           req.Title,
		CreatorID:       c.MustGet("user_id").(uint),
		DurationMinutes: req.DurationMinutes,
		SwitchLimit:     req.SwitchLimit,
		IsRandomized:    req.IsRandomized,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		QuestionIDs:     req.QuestionIDs,
		RandomConfig:    req.RandomConfig,
		Score:           req.Score,
	})
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewExamResponse(exam, false))
}

// GetExam возвращает тест с вопросами (для преподавателя)
// GET /api/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	exam, err := h.examService.GetExamByID(examID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewExamResponse(exam, true))
}

// ListExams возвращает страницу тестов (для преподавателя)
// GET /api/exams?page=1&per_page=20
func (h *ExamHandler) ListExams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	exams, err := h.examService.ListExams(page, perPage)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewExamListResponse(exams))
}

// ListActiveExams возвращает опубликованные тесты (для студентов)
// GET /api/student/exams
func (h *ExamHandler) ListActiveExams(c *gin.Context) {
	exams, err := h.examService.ListActiveExams()
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewStudentExamListResponse(exams))
}

// SetStatusRequest представляет запрос на публикацию теста
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// SetExamStatus публикует или снимает тест с публикации
// PATCH /api/exams/:id/status
func (h *ExamHandler) SetExamStatus(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exam, err := h.examService.SetExamStatus(examID, req.Status)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewExamResponse(exam, false))
}

// DeleteExam удаляет тест
// DELETE /api/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	if err := h.examService.DeleteExam(examID); err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "exam deleted"})
}

// ExamQuestionsRequest представляет запрос на изменение вопросов теста
type ExamQuestionsRequest struct {
	QuestionIDs []uint  `json:"question_ids" binding:"required,min=1"`
	Score       float64 `json:"score" binding:"omitempty,gt=0"`
}

// AddExamQuestions добавляет вопросы к тесту
// POST /api/exams/:id/questions
func (h *ExamHandler) AddExamQuestions(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	var req ExamQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.examService.AddExamQuestions(examID, req.QuestionIDs, req.Score); err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "questions added"})
}

// RemoveExamQuestions убирает вопросы из теста
// DELETE /api/exams/:id/questions
func (h *ExamHandler) RemoveExamQuestions(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	var req ExamQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.examService.RemoveExamQuestions(examID, req.QuestionIDs); err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "questions removed"})
}

// ReplaceExamQuestions полностью заменяет вопросы теста
// PUT /api/exams/:id/questions
func (h *ExamHandler) ReplaceExamQuestions(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	var req ExamQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.examService.ReplaceExamQuestions(examID, req.QuestionIDs, req.Score); err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "questions replaced"})
}

// SetScoresRequest представляет запрос на изменение весов вопросов
type SetScoresRequest struct {
	Scores map[uint]float64 `json:"scores" binding:"required,min=1"`
}

// SetExamQuestionScores задает веса вопросов теста
// PATCH /api/exams/:id/scores
func (h *ExamHandler) SetExamQuestionScores(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	var req SetScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.examService.SetExamQuestionScores(examID, req.Scores); err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "scores updated"})
}

// GetExamPaper возвращает билет студента без правильных ответов
// GET /api/student/exams/:id/paper
func (h *ExamHandler) GetExamPaper(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	paper, err := h.examService.GetExamPaper(examID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	c.JSON(http.StatusOK, paper)
}

// handleExamError преобразует ошибки сервиса в HTTP-ответы.
// Нехватка вопросов в банке отдается со структурированным телом.
func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	var shortfall *assembler.ShortfallError
	if errors.As(err, &shortfall) {
		c.JSON(http.StatusConflict, gin.H{
			"error":         shortfall.Error(),
			"kind":          shortfall.Kind,
			"question_type": shortfall.Type,
			"category":      shortfall.Category,
			"required":      shortfall.Required,
			"available":     shortfall.Available,
		})
		return
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrExamNotOpen) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ExamHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
