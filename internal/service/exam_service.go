package service

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/exam-api/internal/assembler"
	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// DefaultQuestionScore — вес вопроса, если преподаватель не указал свой
const DefaultQuestionScore = 5.0

// RandomConfig описывает квоты случайного подбора вопросов по типам
type RandomConfig map[string]RandomTypeQuota

// RandomTypeQuota задает квоту одного типа вопросов
type RandomTypeQuota struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category,omitempty"`
}

// CreateExamParams содержит параметры создания теста
type CreateExamParams struct {
	Title           string
	CreatorID       uint
	DurationMinutes int
	SwitchLimit     int
	IsRandomized    bool
	StartTime       *time.Time
	EndTime         *time.Time
	// QuestionIDs — явный список вопросов. Взаимоисключим с RandomConfig.
	QuestionIDs []uint
	// RandomConfig — квоты для случайного подбора из банка
	RandomConfig RandomConfig
	// Score — вес каждого вопроса (по умолчанию DefaultQuestionScore)
	Score float64
}

// PaperOption — один вариант ответа в билете студента
type PaperOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// PaperQuestion — вопрос в билете студента. Правильный ответ сюда не попадает.
type PaperQuestion struct {
	ID           uint          `json:"id"`
	QuestionType string        `json:"question_type"`
	QuestionText string        `json:"question_text"`
	Options      []PaperOption `json:"options"`
	Score        float64       `json:"score"`
}

// ExamPaper — билет, который видит студент
type ExamPaper struct {
	ExamID          uint            `json:"exam_id"`
	Title           string          `json:"title"`
	DurationMinutes int             `json:"duration_minutes"`
	SwitchLimit     int             `json:"switch_limit"`
	Questions       []PaperQuestion `json:"questions"`
}

// ExamService предоставляет методы для работы с тестами
type ExamService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository

	// rng защищен мьютексом: math/rand.Rand не потокобезопасен, а каждый
	// HTTP-запрос обслуживается отдельной горутиной.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewExamService создает новый сервис тестов
func NewExamService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateExam создает тест с явным списком вопросов или случайным подбором.
// Тест и его вопросы сохраняются одной транзакцией: при нехватке вопросов
// в банке тест не создается вовсе.
func (s *ExamService) CreateExam(params CreateExamParams) (*entity.Exam, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, fmt.Errorf("%w: exam title is required", apperrors.ErrValidation)
	}
	if len(params.QuestionIDs) > 0 && len(params.RandomConfig) > 0 {
		return nil, fmt.Errorf("%w: question_ids and random_config are mutually exclusive", apperrors.ErrValidation)
	}
	if len(params.QuestionIDs) == 0 && len(params.RandomConfig) == 0 {
		return nil, fmt.Errorf("%w: either question_ids or random_config is required", apperrors.ErrValidation)
	}

	score := params.Score
	if score <= 0 {
		score = DefaultQuestionScore
	}

	questionIDs := params.QuestionIDs
	if len(params.RandomConfig) > 0 {
		picked, err := s.pickRandomQuestions(params.RandomConfig)
		if err != nil {
			return nil, err
		}
		questionIDs = picked
	} else {
		// Проверяем, что все явно указанные вопросы существуют
		found, err := s.questionRepo.GetByIDs(questionIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions: %w", err)
		}
		if len(found) != len(dedupeIDs(questionIDs)) {
			return nil, fmt.Errorf("%w: some question ids do not exist", apperrors.ErrValidation)
		}
	}

	duration := params.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	exam := &entity.Exam{
		CreatorID:       params.CreatorID,
		Title:           strings.TrimSpace(params.Title),
		DurationMinutes: duration,
		Status:          entity.ExamStatusInactive,
		IsRandomized:    params.IsRandomized,
		SwitchLimit:     params.SwitchLimit,
		StartTime:       params.StartTime,
		EndTime:         params.EndTime,
	}
	for _, qid := range dedupeIDs(questionIDs) {
		exam.ExamQuestions = append(exam.ExamQuestions, entity.ExamQuestion{
			QuestionID: qid,
			Score:      score,
		})
	}

	if err := s.examRepo.Create(exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}
	return exam, nil
}

// pickRandomQuestions подбирает вопросы из банка по квотам
func (s *ExamService) pickRandomQuestions(cfg RandomConfig) ([]uint, error) {
	for qType := range cfg {
		if !entity.IsValidQuestionType(qType) {
			return nil, fmt.Errorf("%w: unknown question type %q in random_config", apperrors.ErrValidation, qType)
		}
	}

	bank, err := s.questionRepo.ListBank()
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	bankQuestions := make([]assembler.BankQuestion, len(bank))
	for i, b := range bank {
		bankQuestions[i] = assembler.BankQuestion{
			ID:       b.ID,
			Type:     b.QuestionType,
			Category: b.CategoryName,
		}
	}

	request := assembler.Request{}
	for qType, quota := range cfg {
		request[qType] = assembler.TypeQuota{
			Total:      quota.Total,
			ByCategory: quota.ByCategory,
		}
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return assembler.Pick(bankQuestions, request, s.rng)
}

// shuffle перемешивает n элементов общим генератором под мьютексом
func (s *ExamService) shuffle(n int, swap func(i, j int)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(n, swap)
}

// GetExamByID возвращает тест по ID вместе с вопросами
func (s *ExamService) GetExamByID(examID uint) (*entity.Exam, error) {
	return s.examRepo.GetByID(examID)
}

// ListExams возвращает страницу тестов (для преподавателя)
func (s *ExamService) ListExams(page, pageSize int) ([]entity.Exam, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.examRepo.List(pageSize, (page-1)*pageSize)
}

// ListActiveExams возвращает опубликованные тесты (для студентов)
func (s *ExamService) ListActiveExams() ([]entity.Exam, error) {
	return s.examRepo.ListByStatus(entity.ExamStatusActive)
}

// SetExamStatus публикует или снимает тест с публикации
func (s *ExamService) SetExamStatus(examID uint, status string) (*entity.Exam, error) {
	if status != entity.ExamStatusActive && status != entity.ExamStatusInactive {
		return nil, fmt.Errorf("%w: unknown exam status %q", apperrors.ErrValidation, status)
	}

	exam, err := s.examRepo.GetByID(examID)
	if err != nil {
		return nil, err
	}
	if exam.Status == status {
		return exam, nil
	}
	if status == entity.ExamStatusActive && len(exam.ExamQuestions) == 0 {
		return nil, fmt.Errorf("%w: cannot publish an exam without questions", apperrors.ErrValidation)
	}

	if err := s.examRepo.UpdateStatus(examID, status); err != nil {
		return nil, fmt.Errorf("failed to update exam status: %w", err)
	}
	exam.Status = status
	return exam, nil
}

// DeleteExam удаляет тест вместе с его вопросами
func (s *ExamService) DeleteExam(examID uint) error {
	if _, err := s.examRepo.GetByID(examID); err != nil {
		return err
	}
	return s.examRepo.Delete(examID)
}

// AddExamQuestions добавляет вопросы к тесту
func (s *ExamService) AddExamQuestions(examID uint, questionIDs []uint, score float64) error {
	exam, err := s.examRepo.GetByID(examID)
	if err != nil {
		return err
	}
	if exam.Status == entity.ExamStatusActive {
		return fmt.Errorf("%w: cannot modify questions of a published exam", apperrors.ErrValidation)
	}

	questionIDs = dedupeIDs(questionIDs)
	found, err := s.questionRepo.GetByIDs(questionIDs)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if len(found) != len(questionIDs) {
		return fmt.Errorf("%w: some question ids do not exist", apperrors.ErrValidation)
	}

	if score <= 0 {
		score = DefaultQuestionScore
	}
	return s.examRepo.AddQuestions(examID, questionIDs, score)
}

// RemoveExamQuestions убирает вопросы из теста
func (s *ExamService) RemoveExamQuestions(examID uint, questionIDs []uint) error {
	exam, err := s.examRepo.GetByID(examID)
	if err != nil {
		return err
	}
	if exam.Status == entity.ExamStatusActive {
		return fmt.Errorf("%w: cannot modify questions of a published exam", apperrors.ErrValidation)
	}
	return s.examRepo.RemoveQuestions(examID, dedupeIDs(questionIDs))
}

// ReplaceExamQuestions полностью заменяет список вопросов теста
func (s *ExamService) ReplaceExamQuestions(examID uint, questionIDs []uint, score float64) error {
	exam, err := s.examRepo.GetByID(examID)
	if err != nil {
		return err
	}
	if exam.Status == entity.ExamStatusActive {
		return fmt.Errorf("%w: cannot modify questions of a published exam", apperrors.ErrValidation)
	}

	questionIDs = dedupeIDs(questionIDs)
	found, err := s.questionRepo.GetByIDs(questionIDs)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if len(found) != len(questionIDs) {
		return fmt.Errorf("%w: some question ids do not exist", apperrors.ErrValidation)
	}

	if score <= 0 {
		score = DefaultQuestionScore
	}
	return s.examRepo.ReplaceQuestions(examID, questionIDs, score)
}

// SetExamQuestionScores задает индивидуальные веса вопросов теста
func (s *ExamService) SetExamQuestionScores(examID uint, scores map[uint]float64) error {
	if _, err := s.examRepo.GetByID(examID); err != nil {
		return err
	}
	for qid, score := range scores {
		if score <= 0 {
			return fmt.Errorf("%w: score for question %d must be positive", apperrors.ErrValidation, qid)
		}
	}
	return s.examRepo.SetQuestionScores(examID, scores)
}

// GetExamPaper возвращает билет студента: вопросы без правильных ответов,
// перемешанные, если тест так настроен
func (s *ExamService) GetExamPaper(examID uint) (*ExamPaper, error) {
	exam, err := s.examRepo.GetByID(examID)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive() {
		return nil, fmt.Errorf("%w: exam %d is not open", apperrors.ErrExamNotOpen, examID)
	}

	examQuestions, err := s.examRepo.GetExamQuestions(examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}

	paper := &ExamPaper{
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		SwitchLimit:     exam.SwitchLimit,
		Questions:       make([]PaperQuestion, 0, len(examQuestions)),
	}

	for _, eq := range examQuestions {
		if eq.Question == nil {
			continue
		}
		paper.Questions = append(paper.Questions, PaperQuestion{
			ID:           eq.QuestionID,
			QuestionType: eq.Question.QuestionType,
			QuestionText: eq.Question.QuestionText,
			Options:      s.paperOptions(eq.Question, exam.IsRandomized),
			Score:        eq.Score,
		})
	}

	if exam.IsRandomized {
		s.shuffle(len(paper.Questions), func(i, j int) {
			paper.Questions[i], paper.Questions[j] = paper.Questions[j], paper.Questions[i]
		})
	}

	return paper, nil
}

// paperOptions строит упорядоченный список вариантов ответа.
// Для вопросов верно/неверно варианты фиксированы.
func (s *ExamService) paperOptions(q *entity.Question, shuffle bool) []PaperOption {
	if q.QuestionType == entity.QuestionTypeTrueFalse {
		return []PaperOption{
			{Key: "true", Text: "Верно"},
			{Key: "false", Text: "Неверно"},
		}
	}

	keys := make([]string, 0, len(q.Options))
	for key := range q.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if shuffle {
		s.shuffle(len(keys), func(i, j int) {
			keys[i], keys[j] = keys[j], keys[i]
		})
	}

	options := make([]PaperOption, 0, len(keys))
	for _, key := range keys {
		options = append(options, PaperOption{Key: key, Text: q.Options[key]})
	}
	return options
}

// dedupeIDs убирает дубликаты, сохраняя порядок
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
