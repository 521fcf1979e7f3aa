package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/assembler"
	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев. Определены один раз на пакет и используются
// всеми сервисными тестами.
// ============================================================================

// MockExamRepository реализует repository.ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(exam *entity.Exam) error {
	args := m.Called(exam)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(id uint) (*entity.Exam, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Exam), args.Error(1)
}

func (m *MockExamRepository) List(limit, offset int) ([]entity.Exam, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Exam), args.Error(1)
}

func (m *MockExamRepository) ListByStatus(status string) ([]entity.Exam, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Exam), args.Error(1)
}

func (m *MockExamRepository) UpdateStatus(examID uint, status string) error {
	args := m.Called(examID, status)
	return args.Error(0)
}

func (m *MockExamRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockExamRepository) GetExamQuestions(examID uint) ([]entity.ExamQuestion, error) {
	args := m.Called(examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamQuestion), args.Error(1)
}

func (m *MockExamRepository) ReplaceQuestions(examID uint, questionIDs []uint, score float64) error {
	args := m.Called(examID, questionIDs, score)
	return args.Error(0)
}

func (m *MockExamRepository) AddQuestions(examID uint, questionIDs []uint, score float64) error {
	args := m.Called(examID, questionIDs, score)
	return args.Error(0)
}

func (m *MockExamRepository) RemoveQuestions(examID uint, questionIDs []uint) error {
	args := m.Called(examID, questionIDs)
	return args.Error(0)
}

func (m *MockExamRepository) SetQuestionScores(examID uint, scores map[uint]float64) error {
	args := m.Called(examID, scores)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ids []uint) ([]entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(limit, offset int) ([]entity.Question, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepository) ListBank() ([]repository.BankEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BankEntry), args.Error(1)
}

func (m *MockQuestionRepository) CountByType() (map[string]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// ============================================================================
// Тесты ExamService
// ============================================================================

func TestExamService_CreateExam_ExplicitQuestions(t *testing.T) {
	// Arrange
	mockExamRepo := new(MockExamRepository)
	mockQuestionRepo := new(MockQuestionRepository)

	questions := []entity.Question{{QuestionText: "Q1"}, {QuestionText: "Q2"}}
	questions[0].ID = 1
	questions[1].ID = 2

	mockQuestionRepo.On("GetByIDs", []uint{1, 2}).Return(questions, nil)
	mockExamRepo.On("Create", mock.AnythingOfType("*entity.Exam")).Return(nil)

	svc := NewExamService(mockExamRepo, mockQuestionRepo)

	// Act
	exam, err := svc.CreateExam(CreateExamParams{
		Title:       "Итоговый тест",
		CreatorID:   1,
		QuestionIDs: []uint{1, 2},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusInactive, exam.Status)
	assert.Len(t, exam.ExamQuestions, 2)
	assert.Equal(t, DefaultQuestionScore, exam.ExamQuestions[0].Score)
	mockExamRepo.AssertExpectations(t)
}

func TestExamService_CreateExam_RandomConfig_Shortfall(t *testing.T) {
	// Arrange: в банке два вопроса, запрошено пять
	mockExamRepo := new(MockExamRepository)
	mockQuestionRepo := new(MockQuestionRepository)

	bank := []repository.BankEntry{
		{ID: 1, QuestionType: entity.QuestionTypeSingle},
		{ID: 2, QuestionType: entity.QuestionTypeSingle},
	}
	mockQuestionRepo.On("ListBank").Return(bank, nil)

	svc := NewExamService(mockExamRepo, mockQuestionRepo)

	// Act
	_, err := svc.CreateExam(CreateExamParams{
		Title:        "Случайный тест",
		CreatorID:    1,
		RandomConfig: RandomConfig{entity.QuestionTypeSingle: {Total: 5}},
	})

	// Assert: нехватка вопросов, экзамен не создается
	require.Error(t, err)
	var shortfall *assembler.ShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 5, shortfall.Required)
	assert.Equal(t, 2, shortfall.Available)
	mockExamRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestExamService_CreateExam_RandomConfig_Success(t *testing.T) {
	mockExamRepo := new(MockExamRepository)
	mockQuestionRepo := new(MockQuestionRepository)

	bank := []repository.BankEntry{
		{ID: 1, QuestionType: entity.QuestionTypeSingle, CategoryName: "математика"},
		{ID: 2, QuestionType: entity.QuestionTypeSingle, CategoryName: "математика"},
		{ID: 3, QuestionType: entity.QuestionTypeTrueFalse},
	}
	mockQuestionRepo.On("ListBank").Return(bank, nil)
	mockExamRepo.On("Create", mock.AnythingOfType("*entity.Exam")).Return(nil)

	svc := NewExamService(mockExamRepo, mockQuestionRepo)

	exam, err := svc.CreateExam(CreateExamParams{
		Title:     "Случайный тест",
		CreatorID: 1,
		RandomConfig: RandomConfig{
			entity.QuestionTypeSingle:    {Total: 2, ByCategory: map[string]int{"математика": 2}},
			entity.QuestionTypeTrueFalse: {Total: 1},
		},
		Score: 2,
	})

	require.NoError(t, err)
	assert.Len(t, exam.ExamQuestions, 3)
	for _, eq := range exam.ExamQuestions {
		assert.Equal(t, 2.0, eq.Score)
	}
}

func TestExamService_CreateExam_MutuallyExclusiveSources(t *testing.T) {
	svc := NewExamService(new(MockExamRepository), new(MockQuestionRepository))

	_, err := svc.CreateExam(CreateExamParams{
		Title:        "Тест",
		QuestionIDs:  []uint{1},
		RandomConfig: RandomConfig{entity.QuestionTypeSingle: {Total: 1}},
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExamService_CreateExam_UnknownQuestionIDs(t *testing.T) {
	mockExamRepo := new(MockExamRepository)
	mockQuestionRepo := new(MockQuestionRepository)

	// Найден только один вопрос из двух запрошенных
	found := []entity.Question{{QuestionText: "Q1"}}
	found[0].ID = 1
	mockQuestionRepo.On("GetByIDs", []uint{1, 999}).Return(found, nil)

	svc := NewExamService(mockExamRepo, mockQuestionRepo)

	_, err := svc.CreateExam(CreateExamParams{
		Title:       "Тест",
		QuestionIDs: []uint{1, 999},
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockExamRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestExamService_SetExamStatus_PublishWithoutQuestions(t *testing.T) {
	mockExamRepo := new(MockExamRepository)

	exam := &entity.Exam{Title: "Пустой тест", Status: entity.ExamStatusInactive}
	exam.ID = 1
	mockExamRepo.On("GetByID", uint(1)).Return(exam, nil)

	svc := NewExamService(mockExamRepo, new(MockQuestionRepository))

	_, err := svc.SetExamStatus(1, entity.ExamStatusActive)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockExamRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestExamService_GetExamPaper_HidesCorrectAnswers(t *testing.T) {
	// Arrange
	mockExamRepo := new(MockExamRepository)

	exam := &entity.Exam{
		Title:           "Тест",
		Status:          entity.ExamStatusActive,
		DurationMinutes: 45,
	}
	exam.ID = 1
	mockExamRepo.On("GetByID", uint(1)).Return(exam, nil)

	q1 := &entity.Question{
		QuestionText:  "2+2?",
		QuestionType:  entity.QuestionTypeSingle,
		Options:       entity.OptionsMap{"A": "3", "B": "4"},
		CorrectAnswer: entity.NewJSONValue("B"),
	}
	q1.ID = 10
	q2 := &entity.Question{
		QuestionText:  "Земля плоская",
		QuestionType:  entity.QuestionTypeTrueFalse,
		CorrectAnswer: entity.NewJSONValue(false),
	}
	q2.ID = 11

	mockExamRepo.On("GetExamQuestions", uint(1)).Return([]entity.ExamQuestion{
		{ExamID: 1, QuestionID: 10, Score: 5, Question: q1},
		{ExamID: 1, QuestionID: 11, Score: 3, Question: q2},
	}, nil)

	svc := NewExamService(mockExamRepo, new(MockQuestionRepository))

	// Act
	paper, err := svc.GetExamPaper(1)

	// Assert
	require.NoError(t, err)
	require.Len(t, paper.Questions, 2)
	assert.Equal(t, 45, paper.DurationMinutes)

	// Билет не содержит правильных ответов ни в каком виде
	for _, pq := range paper.Questions {
		if pq.QuestionType == entity.QuestionTypeTrueFalse {
			// Фиксированные варианты верно/неверно
			require.Len(t, pq.Options, 2)
		}
		for _, opt := range pq.Options {
			assert.NotEmpty(t, opt.Key)
		}
	}
}

func TestExamService_GetExamPaper_ConcurrentRequests(t *testing.T) {
	// Arrange: активный тест с перемешиванием, билет запрашивают
	// несколько студентов одновременно. Ловится go test -race.
	mockExamRepo := new(MockExamRepository)

	exam := &entity.Exam{
		Title:        "Тест",
		Status:       entity.ExamStatusActive,
		IsRandomized: true,
	}
	exam.ID = 1
	mockExamRepo.On("GetByID", uint(1)).Return(exam, nil)

	q1 := &entity.Question{
		QuestionText:  "2+2?",
		QuestionType:  entity.QuestionTypeSingle,
		Options:       entity.OptionsMap{"A": "3", "B": "4", "C": "5", "D": "22"},
		CorrectAnswer: entity.NewJSONValue("B"),
	}
	q1.ID = 10
	q2 := &entity.Question{
		QuestionText:  "Столица Франции?",
		QuestionType:  entity.QuestionTypeSingle,
		Options:       entity.OptionsMap{"A": "Париж", "B": "Лион", "C": "Марсель"},
		CorrectAnswer: entity.NewJSONValue("A"),
	}
	q2.ID = 11

	mockExamRepo.On("GetExamQuestions", uint(1)).Return([]entity.ExamQuestion{
		{ExamID: 1, QuestionID: 10, Score: 5, Question: q1},
		{ExamID: 1, QuestionID: 11, Score: 5, Question: q2},
	}, nil)

	svc := NewExamService(mockExamRepo, new(MockQuestionRepository))

	// Act
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GetExamPaper(1)
		}(i)
	}
	wg.Wait()

	// Assert
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestExamService_GetExamPaper_ExamNotOpen(t *testing.T) {
	mockExamRepo := new(MockExamRepository)

	exam := &entity.Exam{Title: "Тест", Status: entity.ExamStatusInactive}
	exam.ID = 1
	mockExamRepo.On("GetByID", uint(1)).Return(exam, nil)

	svc := NewExamService(mockExamRepo, new(MockQuestionRepository))

	_, err := svc.GetExamPaper(1)

	assert.ErrorIs(t, err, apperrors.ErrExamNotOpen)
}

func TestExamService_AddExamQuestions_PublishedExam(t *testing.T) {
	mockExamRepo := new(MockExamRepository)

	exam := &entity.Exam{Title: "Тест", Status: entity.ExamStatusActive}
	exam.ID = 1
	mockExamRepo.On("GetByID", uint(1)).Return(exam, nil)

	svc := NewExamService(mockExamRepo, new(MockQuestionRepository))

	err := svc.AddExamQuestions(1, []uint{5}, 0)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockExamRepo.AssertNotCalled(t, "AddQuestions", mock.Anything, mock.Anything, mock.Anything)
}
