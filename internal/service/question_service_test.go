package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// MockCategoryRepository реализует repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(name string) (*entity.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) List() ([]entity.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func TestQuestionService_CreateCategory_Conflict(t *testing.T) {
	// Arrange
	mockCategoryRepo := new(MockCategoryRepository)
	existing := &entity.Category{Name: "Сети"}
	existing.ID = 3
	mockCategoryRepo.On("GetByName", "Сети").Return(existing, nil)

	svc := NewQuestionService(new(MockQuestionRepository), mockCategoryRepo)

	// Act
	_, err := svc.CreateCategory("  Сети  ")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockCategoryRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestQuestionService_CreateCategory_BlankName(t *testing.T) {
	svc := NewQuestionService(new(MockQuestionRepository), new(MockCategoryRepository))

	_, err := svc.CreateCategory("   ")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuestionService_CreateQuestion_Validation(t *testing.T) {
	svc := NewQuestionService(new(MockQuestionRepository), new(MockCategoryRepository))

	testCases := []struct {
		name     string
		question *entity.Question
	}{
		{
			name:     "пустой текст",
			question: &entity.Question{QuestionType: entity.QuestionTypeSingle},
		},
		{
			name: "неизвестный тип",
			question: &entity.Question{
				QuestionText: "Вопрос?",
				QuestionType: "essay",
			},
		},
		{
			name: "меньше двух вариантов",
			question: &entity.Question{
				QuestionText:  "Вопрос?",
				QuestionType:  entity.QuestionTypeSingle,
				Options:       entity.OptionsMap{"A": "единственный"},
				CorrectAnswer: entity.NewJSONValue("A"),
			},
		},
		{
			name: "нет правильного ответа",
			question: &entity.Question{
				QuestionText: "Вопрос?",
				QuestionType: entity.QuestionTypeSingle,
				Options:      entity.OptionsMap{"A": "да", "B": "нет"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateQuestion(tc.question)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestParseImportAnswer(t *testing.T) {
	options := entity.OptionsMap{"A": "один", "B": "два", "C": "три"}

	t.Run("одиночный выбор", func(t *testing.T) {
		v, err := parseImportAnswer(entity.QuestionTypeSingle, "b", options)
		require.NoError(t, err)
		assert.Equal(t, "B", v.Decoded())
	})

	t.Run("одиночный выбор с несуществующей буквой", func(t *testing.T) {
		_, err := parseImportAnswer(entity.QuestionTypeSingle, "Z", options)
		assert.Error(t, err)
	})

	t.Run("множественный выбор с разделителями", func(t *testing.T) {
		v, err := parseImportAnswer(entity.QuestionTypeMultiple, "a, c", options)
		require.NoError(t, err)
		assert.ElementsMatch(t, []interface{}{"A", "C"}, v.Decoded())
	})

	t.Run("верно-неверно русские токены", func(t *testing.T) {
		v, err := parseImportAnswer(entity.QuestionTypeTrueFalse, "Верно", nil)
		require.NoError(t, err)
		assert.Equal(t, true, v.Decoded())

		v, err = parseImportAnswer(entity.QuestionTypeTrueFalse, "ложь", nil)
		require.NoError(t, err)
		assert.Equal(t, false, v.Decoded())
	})

	t.Run("верно-неверно мусор", func(t *testing.T) {
		_, err := parseImportAnswer(entity.QuestionTypeTrueFalse, "может быть", nil)
		assert.Error(t, err)
	})
}

// buildImportFile собирает xlsx в памяти в формате шаблона импорта
func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Вопрос", "Тип", "Вариант A", "Вариант B", "Вариант C", "Вариант D", "Вариант E", "Вариант F", "Правильный ответ", "Категория"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestQuestionService_ImportFromExcel(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockCategoryRepo := new(MockCategoryRepository)

	mockCategoryRepo.On("GetByName", "География").Return(nil, apperrors.ErrNotFound)
	mockCategoryRepo.On("Create", mock.AnythingOfType("*entity.Category")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.Category).ID = 7
		}).
		Return(nil)

	var created []entity.Question
	mockQuestionRepo.On("CreateBatch", mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(0).([]entity.Question)
		}).
		Return(nil)

	buf := buildImportFile(t, [][]interface{}{
		{"Столица Франции?", "одиночный выбор", "Лондон", "Париж", "", "", "", "", "B", "География"},
		{"Выберите чётные числа", "multiple", "1", "2", "4", "", "", "", "B,C", ""},
		{"Земля круглая", "верно/неверно", "", "", "", "", "", "", "верно", ""},
		{"", "single", "А", "Б", "", "", "", "", "A", ""},           // пустой текст
		{"Вопрос без ответа", "single", "А", "Б", "", "", "", "", "", ""}, // нет ответа
	})

	svc := NewQuestionService(mockQuestionRepo, mockCategoryRepo)

	// Act
	report, err := svc.ImportFromExcel(buf, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, 2, report.Skipped)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "строка 5")
	assert.Contains(t, report.Errors[1], "строка 6")

	require.Len(t, created, 3)
	assert.Equal(t, entity.QuestionTypeSingle, created[0].QuestionType)
	assert.Equal(t, "B", created[0].CorrectAnswer.Decoded())
	require.NotNil(t, created[0].CategoryID)
	assert.Equal(t, uint(7), *created[0].CategoryID)
	assert.Equal(t, entity.QuestionTypeMultiple, created[1].QuestionType)
	assert.Equal(t, entity.QuestionTypeTrueFalse, created[2].QuestionType)
	assert.Equal(t, true, created[2].CorrectAnswer.Decoded())
	assert.Equal(t, uint(1), created[0].CreatorID)
}

func TestQuestionService_ImportFromExcel_EmptyFile(t *testing.T) {
	svc := NewQuestionService(new(MockQuestionRepository), new(MockCategoryRepository))

	buf := buildImportFile(t, nil)

	_, err := svc.ImportFromExcel(buf, 1)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuestionService_ExportTemplate(t *testing.T) {
	svc := NewQuestionService(new(MockQuestionRepository), new(MockCategoryRepository))

	buf, err := svc.ExportTemplate()
	require.NoError(t, err)

	// Шаблон открывается и содержит заголовок с примерами
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Вопросы")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, "Вопрос", rows[0][0])
}
