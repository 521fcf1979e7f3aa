package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	"github.com/yourusername/exam-api/internal/grading"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// SubmissionService принимает и оценивает ответы студентов
type SubmissionService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
}

// NewSubmissionService создает новый сервис сдачи тестов
func NewSubmissionService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
) *SubmissionService {
	return &SubmissionService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
	}
}

// SubmitParams содержит данные одной сдачи теста
type SubmitParams struct {
	ExamID      uint
	StudentName string
	EmployeeNo  string
	// Answers: ID вопроса -> ответ студента в том виде, в каком он пришел в JSON
	Answers     map[uint]interface{}
	SwitchCount int
}

// Submit оценивает ответы и сохраняет попытку. Каждый студент может сдать
// тест только один раз: повторная сдача возвращает ErrAlreadySubmitted.
// Попытка и ответы сохраняются одной транзакцией.
func (s *SubmissionService) Submit(params SubmitParams) (*entity.ExamAttempt, error) {
	studentName := strings.TrimSpace(params.StudentName)
	if studentName == "" {
		return nil, fmt.Errorf("%w: student name is required", apperrors.ErrValidation)
	}

	exam, err := s.examRepo.GetByID(params.ExamID)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive() {
		return nil, fmt.Errorf("%w: exam %d is not open", apperrors.ErrExamNotOpen, params.ExamID)
	}

	// Быстрая проверка на повторную сдачу. Гонку двух одновременных запросов
	// закрывает уникальный индекс в БД, здесь же отдаем понятную ошибку.
	exists, err := s.attemptRepo.ExistsByExamAndStudent(params.ExamID, studentName)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous attempts: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: student %q already submitted exam %d", apperrors.ErrAlreadySubmitted, studentName, params.ExamID)
	}

	examQuestions, err := s.examRepo.GetExamQuestions(params.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}
	if len(examQuestions) == 0 {
		return nil, fmt.Errorf("%w: exam %d has no questions", apperrors.ErrValidation, params.ExamID)
	}

	graded := make([]grading.GradedQuestion, 0, len(examQuestions))
	for _, eq := range examQuestions {
		if eq.Question == nil {
			return nil, fmt.Errorf("exam question %d is missing its question row", eq.QuestionID)
		}
		graded = append(graded, grading.GradedQuestion{
			QuestionID:    eq.QuestionID,
			QuestionType:  eq.Question.QuestionType,
			CorrectAnswer: eq.Question.CorrectAnswer.Decoded(),
			Score:         eq.Score,
		})
	}

	result := grading.Grade(graded, params.Answers)

	attempt := &entity.ExamAttempt{
		ExamID:      params.ExamID,
		StudentName: studentName,
		EmployeeNo:  strings.TrimSpace(params.EmployeeNo),
		SubmitTime:  time.Now(),
		FinalScore:  result.TotalScore,
		SwitchCount: params.SwitchCount,
	}

	answers := make([]entity.StudentAnswer, 0, len(result.PerQuestion))
	for _, record := range result.PerQuestion {
		answers = append(answers, entity.StudentAnswer{
			QuestionID:    record.QuestionID,
			StudentAnswer: entity.NewJSONValue(record.Submitted),
			IsCorrect:     record.IsCorrect,
		})
	}

	if err := s.attemptRepo.CreateWithAnswers(attempt, answers); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttempt) {
			return nil, fmt.Errorf("%w: student %q already submitted exam %d", apperrors.ErrAlreadySubmitted, studentName, params.ExamID)
		}
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	log.Printf("[SubmissionService] Тест #%d сдан студентом %s: %.1f баллов", params.ExamID, studentName, result.TotalScore)
	return attempt, nil
}

// GetAttempt возвращает попытку вместе с ответами
func (s *SubmissionService) GetAttempt(attemptID uint) (*entity.ExamAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	answers, err := s.attemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt answers: %w", err)
	}
	attempt.Answers = answers
	return attempt, nil
}

// ListExamAttempts возвращает все попытки по тесту
func (s *SubmissionService) ListExamAttempts(examID uint) ([]entity.ExamAttempt, error) {
	if _, err := s.examRepo.GetByID(examID); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListByExam(examID)
}

// ListStudentAttempts возвращает попытки одного студента
func (s *SubmissionService) ListStudentAttempts(studentName string) ([]entity.ExamAttempt, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return nil, fmt.Errorf("%w: student name is required", apperrors.ErrValidation)
	}
	return s.attemptRepo.ListByStudent(studentName)
}
