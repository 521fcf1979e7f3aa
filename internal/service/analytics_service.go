package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// statsCacheTTL — время жизни кеша статистики теста
const statsCacheTTL = 2 * time.Minute

// GradeBuckets — распределение оценок по процентам от максимума
type GradeBuckets struct {
	Excellent    int `json:"excellent"`    // >= 90%
	Good         int `json:"good"`         // 80-89%
	Satisfactory int `json:"satisfactory"` // 60-79%
	Failed       int `json:"failed"`       // < 60%
}

// QuestionAccuracy — точность ответов на один вопрос
type QuestionAccuracy struct {
	QuestionID   uint    `json:"question_id"`
	QuestionText string  `json:"question_text"`
	QuestionType string  `json:"question_type"`
	TotalAnswers int     `json:"total_answers"`
	CorrectCount int     `json:"correct_count"`
	Accuracy     float64 `json:"accuracy"`
}

// ExamStatistics — сводная статистика одного теста
type ExamStatistics struct {
	ExamID        uint               `json:"exam_id"`
	Title         string             `json:"title"`
	Participants  int                `json:"participants"`
	MaxPossible   float64            `json:"max_possible"`
	AvgScore      float64            `json:"avg_score"`
	MinScore      float64            `json:"min_score"`
	MaxScore      float64            `json:"max_score"`
	PassRate      float64            `json:"pass_rate"`
	Grades        GradeBuckets       `json:"grades"`
	QuestionStats []QuestionAccuracy `json:"question_stats"`
}

// TeacherOverview — сводка по всем тестам для главной страницы преподавателя
type TeacherOverview struct {
	TotalExams     int              `json:"total_exams"`
	ActiveExams    int              `json:"active_exams"`
	TotalQuestions int64            `json:"total_questions"`
	TotalAttempts  int              `json:"total_attempts"`
	QuestionByType map[string]int64 `json:"questions_by_type"`
	RecentAttempts []AttemptSummary `json:"recent_attempts"`
}

// AttemptSummary — краткая запись о сдаче для сводок
type AttemptSummary struct {
	AttemptID   uint      `json:"attempt_id"`
	ExamID      uint      `json:"exam_id"`
	ExamTitle   string    `json:"exam_title"`
	StudentName string    `json:"student_name"`
	FinalScore  float64   `json:"final_score"`
	SubmitTime  time.Time `json:"submit_time"`
}

// WrongAnswer — неверный ответ студента для разбора ошибок
type WrongAnswer struct {
	ExamID        uint              `json:"exam_id"`
	ExamTitle     string            `json:"exam_title"`
	QuestionID    uint              `json:"question_id"`
	QuestionText  string            `json:"question_text"`
	QuestionType  string            `json:"question_type"`
	Options       entity.OptionsMap `json:"options"`
	StudentAnswer interface{}       `json:"student_answer"`
	CorrectAnswer interface{}       `json:"correct_answer"`
}

// StudentPerformance — успеваемость одного студента по всем сдачам
type StudentPerformance struct {
	StudentName  string           `json:"student_name"`
	TotalExams   int              `json:"total_exams"`
	AvgScore     float64          `json:"avg_score"`
	BestScore    float64          `json:"best_score"`
	WorstScore   float64          `json:"worst_score"`
	History      []AttemptSummary `json:"history"`
	WrongAnswers []WrongAnswer    `json:"wrong_answers"`
}

// AnalyticsService строит статистику по тестам и студентам.
// Тяжелые агрегаты считаются в SQL, статистика теста кешируется в Redis.
type AnalyticsService struct {
	db           *gorm.DB
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
}

// NewAnalyticsService создает новый сервис аналитики
func NewAnalyticsService(
	db *gorm.DB,
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *AnalyticsService {
	return &AnalyticsService{
		db:           db,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
	}
}

// GetExamStatistics возвращает статистику теста, используя кеш в Redis
func (s *AnalyticsService) GetExamStatistics(examID uint) (*ExamStatistics, error) {
	cacheKey := fmt.Sprintf("exam_stats:%d", examID)

	var cached ExamStatistics
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[AnalyticsService] Ошибка чтения кеша статистики теста #%d: %v", examID, err)
	}

	stats, err := s.calculateExamStatistics(examID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(cacheKey, stats, statsCacheTTL); err != nil {
		log.Printf("[AnalyticsService] Ошибка записи кеша статистики теста #%d: %v", examID, err)
	}
	return stats, nil
}

// InvalidateExamStatistics сбрасывает кеш статистики после новой сдачи
func (s *AnalyticsService) InvalidateExamStatistics(examID uint) {
	if err := s.cacheRepo.Delete(fmt.Sprintf("exam_stats:%d", examID)); err != nil {
		log.Printf("[AnalyticsService] Ошибка сброса кеша статистики теста #%d: %v", examID, err)
	}
}

// calculateExamStatistics считает статистику теста напрямую из БД
func (s *AnalyticsService) calculateExamStatistics(examID uint) (*ExamStatistics, error) {
	exam, err := s.examRepo.GetByID(examID)
	if err != nil {
		return nil, err
	}

	stats := &ExamStatistics{
		ExamID: examID,
		Title:  exam.Title,
	}

	// Максимально возможный балл теста
	for _, eq := range exam.ExamQuestions {
		stats.MaxPossible += eq.Score
	}

	// 1. Сводка по попыткам
	var attemptStats struct {
		Total    int
		AvgScore float64
		MinScore float64
		MaxScore float64
	}
	if err := s.db.Table("exam_attempts").
		Select(`
			COUNT(*) as total,
			COALESCE(AVG(final_score), 0) as avg_score,
			COALESCE(MIN(final_score), 0) as min_score,
			COALESCE(MAX(final_score), 0) as max_score
		`).
		Where("exam_id = ?", examID).
		Scan(&attemptStats).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate attempts: %w", err)
	}

	stats.Participants = attemptStats.Total
	stats.AvgScore = attemptStats.AvgScore
	stats.MinScore = attemptStats.MinScore
	stats.MaxScore = attemptStats.MaxScore

	// 2. Распределение оценок в процентах от максимума
	if stats.Participants > 0 && stats.MaxPossible > 0 {
		var buckets struct {
			Excellent    int
			Good         int
			Satisfactory int
			Failed       int
		}
		if err := s.db.Table("exam_attempts").
			Select(`
				COUNT(*) FILTER (WHERE final_score >= ? * 0.9) as excellent,
				COUNT(*) FILTER (WHERE final_score >= ? * 0.8 AND final_score < ? * 0.9) as good,
				COUNT(*) FILTER (WHERE final_score >= ? * 0.6 AND final_score < ? * 0.8) as satisfactory,
				COUNT(*) FILTER (WHERE final_score < ? * 0.6) as failed
			`, stats.MaxPossible, stats.MaxPossible, stats.MaxPossible,
				stats.MaxPossible, stats.MaxPossible, stats.MaxPossible).
			Where("exam_id = ?", examID).
			Scan(&buckets).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate grade buckets: %w", err)
		}
		stats.Grades = GradeBuckets{
			Excellent:    buckets.Excellent,
			Good:         buckets.Good,
			Satisfactory: buckets.Satisfactory,
			Failed:       buckets.Failed,
		}
		passed := buckets.Excellent + buckets.Good + buckets.Satisfactory
		stats.PassRate = float64(passed) / float64(stats.Participants) * 100
	}

	// 3. Точность по вопросам, худшие первыми
	var questionStats []QuestionAccuracy
	if err := s.db.Table("student_answers").
		Select(`
			student_answers.question_id,
			questions.question_text,
			questions.question_type,
			COUNT(*) as total_answers,
			COUNT(*) FILTER (WHERE student_answers.is_correct = true) as correct_count
		`).
		Joins("JOIN exam_attempts ON exam_attempts.id = student_answers.attempt_id").
		Joins("JOIN questions ON questions.id = student_answers.question_id").
		Where("exam_attempts.exam_id = ?", examID).
		Group("student_answers.question_id, questions.question_text, questions.question_type").
		Scan(&questionStats).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate question accuracy: %w", err)
	}

	for i := range questionStats {
		if questionStats[i].TotalAnswers > 0 {
			questionStats[i].Accuracy = float64(questionStats[i].CorrectCount) / float64(questionStats[i].TotalAnswers) * 100
		}
	}
	// Сортируем по возрастанию точности: проблемные вопросы сверху
	sort.Slice(questionStats, func(i, j int) bool {
		return questionStats[i].Accuracy < questionStats[j].Accuracy
	})
	stats.QuestionStats = questionStats

	return stats, nil
}

// GetTeacherOverview строит сводку по всем тестам и банку вопросов
func (s *AnalyticsService) GetTeacherOverview() (*TeacherOverview, error) {
	overview := &TeacherOverview{}

	var examCounts struct {
		Total  int
		Active int
	}
	if err := s.db.Table("exams").
		Select(`COUNT(*) as total, COUNT(*) FILTER (WHERE status = ?) as active`, entity.ExamStatusActive).
		Scan(&examCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count exams: %w", err)
	}
	overview.TotalExams = examCounts.Total
	overview.ActiveExams = examCounts.Active

	byType, err := s.questionRepo.CountByType()
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	overview.QuestionByType = byType
	for _, count := range byType {
		overview.TotalQuestions += count
	}

	if err := s.db.Table("exam_attempts").
		Select("COUNT(*)").
		Scan(&overview.TotalAttempts).Error; err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	var recent []AttemptSummary
	if err := s.db.Table("exam_attempts").
		Select(`
			exam_attempts.id as attempt_id,
			exam_attempts.exam_id,
			exams.title as exam_title,
			exam_attempts.student_name,
			exam_attempts.final_score,
			exam_attempts.submit_time
		`).
		Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
		Order("exam_attempts.submit_time DESC").
		Limit(10).
		Scan(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent attempts: %w", err)
	}
	overview.RecentAttempts = recent

	return overview, nil
}

// GetStudentPerformance строит успеваемость студента с разбором ошибок
func (s *AnalyticsService) GetStudentPerformance(studentName string) (*StudentPerformance, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return nil, fmt.Errorf("%w: student name is required", apperrors.ErrValidation)
	}

	perf := &StudentPerformance{StudentName: studentName}

	var history []AttemptSummary
	if err := s.db.Table("exam_attempts").
		Select(`
			exam_attempts.id as attempt_id,
			exam_attempts.exam_id,
			exams.title as exam_title,
			exam_attempts.student_name,
			exam_attempts.final_score,
			exam_attempts.submit_time
		`).
		Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
		Where("lower(btrim(exam_attempts.student_name)) = lower(btrim(?))", studentName).
		Order("exam_attempts.submit_time DESC").
		Scan(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load attempt history: %w", err)
	}
	perf.History = history
	perf.TotalExams = len(history)

	if len(history) == 0 {
		return perf, nil
	}

	perf.BestScore = history[0].FinalScore
	perf.WorstScore = history[0].FinalScore
	var sum float64
	for _, h := range history {
		sum += h.FinalScore
		if h.FinalScore > perf.BestScore {
			perf.BestScore = h.FinalScore
		}
		if h.FinalScore < perf.WorstScore {
			perf.WorstScore = h.FinalScore
		}
	}
	perf.AvgScore = sum / float64(len(history))

	// Разбор ошибок: неверные ответы со связанными вопросами
	var rows []struct {
		ExamID        uint
		ExamTitle     string
		QuestionID    uint
		QuestionText  string
		QuestionType  string
		Options       entity.OptionsMap
		StudentAnswer entity.JSONValue
		CorrectAnswer entity.JSONValue
	}
	if err := s.db.Table("student_answers").
		Select(`
			exam_attempts.exam_id,
			exams.title as exam_title,
			student_answers.question_id,
			questions.question_text,
			questions.question_type,
			questions.options,
			student_answers.student_answer,
			questions.correct_answer
		`).
		Joins("JOIN exam_attempts ON exam_attempts.id = student_answers.attempt_id").
		Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
		Joins("JOIN questions ON questions.id = student_answers.question_id").
		Where("student_answers.is_correct = false").
		Where("lower(btrim(exam_attempts.student_name)) = lower(btrim(?))", studentName).
		Order("exam_attempts.submit_time DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load wrong answers: %w", err)
	}

	perf.WrongAnswers = make([]WrongAnswer, 0, len(rows))
	for _, r := range rows {
		perf.WrongAnswers = append(perf.WrongAnswers, WrongAnswer{
			ExamID:        r.ExamID,
			ExamTitle:     r.ExamTitle,
			QuestionID:    r.QuestionID,
			QuestionText:  r.QuestionText,
			QuestionType:  r.QuestionType,
			Options:       r.Options,
			StudentAnswer: r.StudentAnswer.Decoded(),
			CorrectAnswer: r.CorrectAnswer.Decoded(),
		})
	}

	return perf, nil
}
