package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// optionLetters задает порядок колонок вариантов в файле импорта
var optionLetters = []string{"A", "B", "C", "D", "E", "F"}

// questionTypeAliases сопоставляет названия типов из файла импорта с кодами.
// Принимаются как коды, так и русские названия.
var questionTypeAliases = map[string]string{
	"single":               entity.QuestionTypeSingle,
	"одиночный выбор":      entity.QuestionTypeSingle,
	"одиночный":            entity.QuestionTypeSingle,
	"multiple":             entity.QuestionTypeMultiple,
	"множественный выбор":  entity.QuestionTypeMultiple,
	"множественный":        entity.QuestionTypeMultiple,
	"true_false":           entity.QuestionTypeTrueFalse,
	"верно/неверно":        entity.QuestionTypeTrueFalse,
	"правда/ложь":          entity.QuestionTypeTrueFalse,
}

// questionTypeNames — обратное отображение для экспорта шаблона
var questionTypeNames = map[string]string{
	entity.QuestionTypeSingle:    "одиночный выбор",
	entity.QuestionTypeMultiple:  "множественный выбор",
	entity.QuestionTypeTrueFalse: "верно/неверно",
}

// ImportReport содержит результат импорта банка вопросов
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// QuestionService предоставляет методы для работы с банком вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateQuestion создает новый вопрос в банке
func (s *QuestionService) CreateQuestion(q *entity.Question) (*entity.Question, error) {
	if err := s.validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

// GetQuestionByID возвращает вопрос по ID
func (s *QuestionService) GetQuestionByID(id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(id)
}

// ListQuestions возвращает страницу вопросов и общее количество
func (s *QuestionService) ListQuestions(page, pageSize int) ([]entity.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.questionRepo.List(pageSize, (page-1)*pageSize)
}

// UpdateQuestion обновляет вопрос
func (s *QuestionService) UpdateQuestion(q *entity.Question) error {
	if err := s.validateQuestion(q); err != nil {
		return err
	}
	// Убеждаемся, что вопрос существует
	if _, err := s.questionRepo.GetByID(q.ID); err != nil {
		return err
	}
	return s.questionRepo.Update(q)
}

// DeleteQuestion удаляет вопрос из банка
func (s *QuestionService) DeleteQuestion(id uint) error {
	return s.questionRepo.Delete(id)
}

// CountByType возвращает количество вопросов каждого типа в банке
func (s *QuestionService) CountByType() (map[string]int64, error) {
	return s.questionRepo.CountByType()
}

// ListCategories возвращает все категории
func (s *QuestionService) ListCategories() ([]entity.Category, error) {
	return s.categoryRepo.List()
}

// CreateCategory создает новую категорию
func (s *QuestionService) CreateCategory(name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}

	existing, err := s.categoryRepo.GetByName(name)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: category %q already exists", apperrors.ErrConflict, name)
	}

	category := &entity.Category{Name: name}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// validateQuestion проверяет вопрос перед сохранением
func (s *QuestionService) validateQuestion(q *entity.Question) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if !entity.IsValidQuestionType(q.QuestionType) {
		return fmt.Errorf("%w: unknown question type %q", apperrors.ErrValidation, q.QuestionType)
	}
	if q.QuestionType != entity.QuestionTypeTrueFalse && len(q.Options) < 2 {
		return fmt.Errorf("%w: at least two options are required", apperrors.ErrValidation)
	}
	if q.CorrectAnswer == nil {
		return fmt.Errorf("%w: correct answer is required", apperrors.ErrValidation)
	}
	return nil
}

// ImportFromExcel импортирует вопросы из Excel-файла.
// Ожидаемые колонки: Вопрос | Тип | Вариант A..F | Правильный ответ | Категория.
// Категории, которых еще нет, создаются автоматически. Строки с ошибками
// пропускаются, номера строк попадают в отчет.
func (s *QuestionService) ImportFromExcel(reader io.Reader, creatorID uint) (*ImportReport, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось открыть Excel файл: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: файл не содержит листов", apperrors.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: файл не содержит строк с вопросами", apperrors.ErrValidation)
	}

	report := &ImportReport{}
	// Кеш категорий, чтобы не ходить в БД на каждую строку
	categoryCache := make(map[string]uint)
	var toCreate []entity.Question

	for i, row := range rows[1:] {
		rowNum := i + 2 // строка 1 — заголовок

		question, rowErr := s.parseImportRow(row, creatorID, categoryCache)
		if rowErr != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("строка %d: %v", rowNum, rowErr))
			continue
		}
		toCreate = append(toCreate, *question)
	}

	if len(toCreate) > 0 {
		if err := s.questionRepo.CreateBatch(toCreate); err != nil {
			return nil, fmt.Errorf("failed to save imported questions: %w", err)
		}
	}
	report.Imported = len(toCreate)

	log.Printf("[QuestionService] Импорт завершен: %d импортировано, %d пропущено", report.Imported, report.Skipped)
	return report, nil
}

// parseImportRow разбирает одну строку файла импорта в вопрос
func (s *QuestionService) parseImportRow(row []string, creatorID uint, categoryCache map[string]uint) (*entity.Question, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	text := cell(0)
	if text == "" {
		return nil, errors.New("пустой текст вопроса")
	}

	qType, ok := questionTypeAliases[strings.ToLower(cell(1))]
	if !ok {
		return nil, fmt.Errorf("неизвестный тип вопроса %q", cell(1))
	}

	// Варианты: колонки 2..7 соответствуют буквам A..F
	options := entity.OptionsMap{}
	for j, letter := range optionLetters {
		if v := cell(2 + j); v != "" {
			options[letter] = v
		}
	}

	answerCell := cell(2 + len(optionLetters))
	if answerCell == "" {
		return nil, errors.New("не указан правильный ответ")
	}

	correct, err := parseImportAnswer(qType, answerCell, options)
	if err != nil {
		return nil, err
	}

	question := &entity.Question{
		CreatorID:     creatorID,
		QuestionText:  text,
		QuestionType:  qType,
		Options:       options,
		CorrectAnswer: correct,
	}

	if qType != entity.QuestionTypeTrueFalse && len(options) < 2 {
		return nil, errors.New("требуется минимум два варианта ответа")
	}

	// Категория: находим или создаем
	if categoryName := cell(3 + len(optionLetters)); categoryName != "" {
		categoryID, err := s.resolveCategory(categoryName, categoryCache)
		if err != nil {
			return nil, err
		}
		question.CategoryID = &categoryID
	}

	return question, nil
}

// parseImportAnswer переводит ячейку с ответом в хранимое значение
func parseImportAnswer(qType, answerCell string, options entity.OptionsMap) (entity.JSONValue, error) {
	switch qType {
	case entity.QuestionTypeTrueFalse:
		switch strings.ToLower(answerCell) {
		case "true", "верно", "да", "истина":
			return entity.NewJSONValue(true), nil
		case "false", "неверно", "нет", "ложь":
			return entity.NewJSONValue(false), nil
		default:
			return nil, fmt.Errorf("ответ %q не распознан как верно/неверно", answerCell)
		}
	case entity.QuestionTypeMultiple:
		letters := strings.FieldsFunc(strings.ToUpper(answerCell), func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '，' || r == '；'
		})
		if len(letters) == 0 {
			return nil, errors.New("не указаны буквы правильных ответов")
		}
		for _, l := range letters {
			if _, ok := options[l]; !ok {
				return nil, fmt.Errorf("буква ответа %q не соответствует ни одному варианту", l)
			}
		}
		return entity.NewJSONValue(letters), nil
	default: // single
		letter := strings.ToUpper(answerCell)
		if _, ok := options[letter]; !ok {
			return nil, fmt.Errorf("буква ответа %q не соответствует ни одному варианту", letter)
		}
		return entity.NewJSONValue(letter), nil
	}
}

// resolveCategory возвращает ID категории, создавая ее при необходимости
func (s *QuestionService) resolveCategory(name string, cache map[string]uint) (uint, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	category, err := s.categoryRepo.GetByName(name)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return 0, fmt.Errorf("failed to look up category %q: %w", name, err)
		}
		category = &entity.Category{Name: name}
		if err := s.categoryRepo.Create(category); err != nil {
			return 0, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		log.Printf("[QuestionService] Создана категория из импорта: %s", name)
	}

	cache[name] = category.ID
	return category.ID, nil
}

// ExportTemplate формирует Excel-шаблон для импорта с примерами строк
func (s *QuestionService) ExportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Вопросы"
	f.SetSheetName("Sheet1", sheetName)

	headers := []interface{}{"Вопрос", "Тип"}
	for _, letter := range optionLetters {
		headers = append(headers, "Вариант "+letter)
	}
	headers = append(headers, "Правильный ответ", "Категория")
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write template headers: %w", err)
	}

	samples := [][]interface{}{
		{"Столица Казахстана?", questionTypeNames[entity.QuestionTypeSingle], "Астана", "Алматы", "Шымкент", "", "", "", "A", "География"},
		{"Какие из языков компилируемые?", questionTypeNames[entity.QuestionTypeMultiple], "Go", "Python", "Rust", "JavaScript", "", "", "A,C", "Программирование"},
		{"HTTP использует TCP", questionTypeNames[entity.QuestionTypeTrueFalse], "", "", "", "", "", "", "верно", "Сети"},
	}
	for i, sample := range samples {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &sample); err != nil {
			return nil, fmt.Errorf("failed to write sample row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build template: %w", err)
	}
	return buf, nil
}
