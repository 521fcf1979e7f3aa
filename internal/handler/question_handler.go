package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

// maxImportFileSize ограничивает размер загружаемого Excel-файла
const maxImportFileSize = 10 << 20 // 10 MB

// QuestionHandler обрабатывает запросы, связанные с банком вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// QuestionRequest представляет запрос на создание или обновление вопроса
type QuestionRequest struct {
	QuestionText  string            `json:"question_text" binding:"required,min=3"`
	QuestionType  string            `json:"question_type" binding:"required"`
	Options       map[string]string `json:"options"`
	CorrectAnswer interface{}       `json:"correct_answer" binding:"required"`
	CategoryID    *uint             `json:"category_id"`
}

// CreateQuestion создает вопрос в банке
// POST /api/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := &entity.Question{
		CreatorID:     c.MustGet("user_id").(uint),
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		Options:       entity.OptionsMap(req.Options),
		CorrectAnswer: entity.NewJSONValue(req.CorrectAnswer),
		CategoryID:    req.CategoryID,
	}

	created, err := h.questionService.CreateQuestion(question)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(created))
}

// GetQuestion возвращает вопрос по ID
// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	question, err := h.questionService.GetQuestionByID(questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// ListQuestions возвращает страницу вопросов банка
// GET /api/questions?page=1&per_page=20
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	questions, total, err := h.questionService.ListQuestions(page, perPage)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedQuestionResponse(questions, total, page, perPage))
}

// UpdateQuestion обновляет вопрос
// PUT /api/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := &entity.Question{
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		Options:       entity.OptionsMap(req.Options),
		CorrectAnswer: entity.NewJSONValue(req.CorrectAnswer),
		CategoryID:    req.CategoryID,
	}
	question.ID = questionID

	if err := h.questionService.UpdateQuestion(question); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion удаляет вопрос из банка
// DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.questionService.DeleteQuestion(questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "question deleted"})
}

// ListCategories возвращает все категории вопросов
// GET /api/categories
func (h *QuestionHandler) ListCategories(c *gin.Context) {
	categories, err := h.questionService.ListCategories()
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCategoryListResponse(categories))
}

// CreateCategoryRequest представляет запрос на создание категории
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// CreateCategory создает категорию вопросов
// POST /api/categories
func (h *QuestionHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.questionService.CreateCategory(req.Name)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CategoryResponse{ID: category.ID, Name: category.Name})
}

// ImportQuestions импортирует вопросы из загруженного Excel-файла
// POST /api/questions/upload
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл не найден в запросе (поле 'file')"})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл слишком большой (максимум 10 МБ)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[QuestionHandler] Ошибка открытия загруженного файла: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	report, err := h.questionService.ImportFromExcel(file, c.MustGet("user_id").(uint))
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DownloadTemplate отдает Excel-шаблон для импорта вопросов
// GET /api/questions/template
func (h *QuestionHandler) DownloadTemplate(c *gin.Context) {
	buf, err := h.questionService.ExportTemplate()
	if err != nil {
		log.Printf("[QuestionHandler] Ошибка формирования шаблона: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build template"})
		return
	}

	filename := fmt.Sprintf("question_template_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleQuestionError преобразует ошибки сервиса в HTTP-ответы
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
