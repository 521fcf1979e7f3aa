package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service"
)

// AnalyticsHandler обрабатывает запросы статистики и экспорта результатов
type AnalyticsHandler struct {
	analyticsService  *service.AnalyticsService
	submissionService *service.SubmissionService
	examService       *service.ExamService
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(
	analyticsService *service.AnalyticsService,
	submissionService *service.SubmissionService,
	examService *service.ExamService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService:  analyticsService,
		submissionService: submissionService,
		examService:       examService,
	}
}

// GetExamStatistics возвращает сводную статистику теста
// GET /api/exams/:id/statistics
func (h *AnalyticsHandler) GetExamStatistics(c *gin.Context) {
	examID := c.MustGet("examID").(uint)

	stats, err := h.analyticsService.GetExamStatistics(examID)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetOverview возвращает сводку для главной страницы преподавателя
// GET /api/analytics/overview
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.analyticsService.GetTeacherOverview()
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetStudentPerformance возвращает успеваемость студента с разбором ошибок
// GET /api/analytics/students/:name
func (h *AnalyticsHandler) GetStudentPerformance(c *gin.Context) {
	perf, err := h.analyticsService.GetStudentPerformance(c.Param("name"))
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, perf)
}

// ExportExamResults экспортирует результаты теста в CSV или Excel формате
// GET /api/exams/:id/results/export?format=csv|xlsx
func (h *AnalyticsHandler) ExportExamResults(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	format := c.DefaultQuery("format", "csv")

	if _, err := h.examService.GetExamByID(examID); err != nil {
		h.handleAnalyticsError(c, err)
		return
	}

	attempts, err := h.submissionService.ListExamAttempts(examID)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_%d_results_%s", examID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, attempts, filename)
	default:
		h.exportCSV(c, attempts, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *AnalyticsHandler) exportCSV(c *gin.Context, attempts []entity.ExamAttempt, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"№", "Студент", "Табельный номер", "Баллы", "Переключения", "Время сдачи"})

	for i, a := range attempts {
		writer.Write([]string{
			strconv.Itoa(i + 1),
			sanitizeForExcel(a.StudentName),
			sanitizeForExcel(a.EmployeeNo),
			strconv.FormatFloat(a.FinalScore, 'f', 1, 64),
			strconv.Itoa(a.SwitchCount),
			a.SubmitTime.Format("2006-01-02 15:04:05"),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *AnalyticsHandler) exportXLSX(c *gin.Context, attempts []entity.ExamAttempt, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AnalyticsHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"№", "Студент", "Табельный номер", "Баллы", "Переключения", "Время сдачи"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AnalyticsHandler] Ошибка записи заголовков: %v", err)
	}

	for i, a := range attempts {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{
			i + 1,
			sanitizeForExcel(a.StudentName),
			sanitizeForExcel(a.EmployeeNo),
			a.FinalScore,
			a.SwitchCount,
			a.SubmitTime.Format("2006-01-02 15:04:05"),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AnalyticsHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AnalyticsHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AnalyticsHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleAnalyticsError преобразует ошибки сервиса в HTTP-ответы
func (h *AnalyticsHandler) handleAnalyticsError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AnalyticsHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
