package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade_MixedQuestionTypes(t *testing.T) {
	// Arrange
	questions := []GradedQuestion{
		{QuestionID: 1, QuestionType: "single", CorrectAnswer: "B", Score: 5},
		{QuestionID: 2, QuestionType: "true_false", CorrectAnswer: []interface{}{true}, Score: 3},
	}
	answers := map[uint]interface{}{
		1: "b",  // другой регистр
		2: true, // другая кодировка того же значения
	}

	// Act
	result := Grade(questions, answers)

	// Assert
	assert.Equal(t, 8.0, result.TotalScore)
	require.Len(t, result.PerQuestion, 2)
	assert.True(t, result.PerQuestion[0].IsCorrect)
	assert.True(t, result.PerQuestion[1].IsCorrect)
}

func TestGrade_MultipleChoice_OrderInsensitive(t *testing.T) {
	questions := []GradedQuestion{
		{QuestionID: 1, QuestionType: "multiple", CorrectAnswer: []interface{}{"A", "C"}, Score: 10},
	}

	for _, submitted := range []interface{}{"C,A", []interface{}{"c", "a"}, "A，C", []string{"A", "C", "A"}} {
		result := Grade(questions, map[uint]interface{}{1: submitted})
		assert.Equal(t, 10.0, result.TotalScore, "ответ %#v должен быть верным", submitted)
	}

	// Неполное множество - неверно
	result := Grade(questions, map[uint]interface{}{1: "A"})
	assert.Equal(t, 0.0, result.TotalScore)
}

func TestGrade_MissingAnswerRecordedIncorrect(t *testing.T) {
	// Arrange
	questions := []GradedQuestion{
		{QuestionID: 1, QuestionType: "single", CorrectAnswer: "A", Score: 5},
		{QuestionID: 2, QuestionType: "multiple", CorrectAnswer: []interface{}{"A", "B"}, Score: 5},
	}

	// Act: студент не ответил ни на один вопрос
	result := Grade(questions, map[uint]interface{}{})

	// Assert: каждая запись присутствует и неверна
	assert.Equal(t, 0.0, result.TotalScore)
	require.Len(t, result.PerQuestion, 2)
	for _, rec := range result.PerQuestion {
		assert.False(t, rec.IsCorrect)
	}
	// Для множественного выбора фиксируется пустой список, для остальных nil
	assert.Equal(t, nil, result.PerQuestion[0].Submitted)
	assert.Equal(t, []interface{}{}, result.PerQuestion[1].Submitted)
}

func TestGrade_ExtraAnswerIDsIgnored(t *testing.T) {
	questions := []GradedQuestion{
		{QuestionID: 1, QuestionType: "single", CorrectAnswer: "A", Score: 5},
	}
	answers := map[uint]interface{}{
		1:   "A",
		999: "B", // вопрос не из этого экзамена
	}

	result := Grade(questions, answers)

	assert.Equal(t, 5.0, result.TotalScore)
	require.Len(t, result.PerQuestion, 1)
	assert.Equal(t, uint(1), result.PerQuestion[0].QuestionID)
}

func TestGrade_RecordsFollowExamOrder(t *testing.T) {
	questions := []GradedQuestion{
		{QuestionID: 7, QuestionType: "single", CorrectAnswer: "A", Score: 1},
		{QuestionID: 3, QuestionType: "single", CorrectAnswer: "B", Score: 1},
		{QuestionID: 5, QuestionType: "single", CorrectAnswer: "C", Score: 1},
	}

	result := Grade(questions, map[uint]interface{}{3: "B"})

	require.Len(t, result.PerQuestion, 3)
	assert.Equal(t, uint(7), result.PerQuestion[0].QuestionID)
	assert.Equal(t, uint(3), result.PerQuestion[1].QuestionID)
	assert.Equal(t, uint(5), result.PerQuestion[2].QuestionID)
	assert.Equal(t, 1.0, result.TotalScore)
}

func TestGrade_GarbageAnswerNeverPanics(t *testing.T) {
	questions := []GradedQuestion{
		{QuestionID: 1, QuestionType: "single", CorrectAnswer: "A", Score: 5},
	}
	garbage := []interface{}{
		map[string]interface{}{"weird": []interface{}{1, 2}},
		[]interface{}{nil, 42, "x,y"},
		3.14,
		`{"broken json`,
	}

	for _, raw := range garbage {
		result := Grade(questions, map[uint]interface{}{1: raw})
		assert.Equal(t, 0.0, result.TotalScore, "мусорный ответ %#v не должен засчитываться", raw)
	}
}

func TestGrade_TrueFalseEncodings(t *testing.T) {
	questions := []GradedQuestion{
		{QuestionID: 1, QuestionType: "true_false", CorrectAnswer: false, Score: 2},
	}

	for _, submitted := range []interface{}{false, "false", "нет", "0", []interface{}{false}} {
		result := Grade(questions, map[uint]interface{}{1: submitted})
		assert.Equal(t, 2.0, result.TotalScore, "ответ %#v должен быть верным", submitted)
	}

	for _, submitted := range []interface{}{true, "да", "A", ""} {
		result := Grade(questions, map[uint]interface{}{1: submitted})
		assert.Equal(t, 0.0, result.TotalScore, "ответ %#v должен быть неверным", submitted)
	}
}
