package grading

// GradedQuestion - минимальное представление вопроса экзамена, необходимое
// для проверки: идентификатор, тип, сохранённый правильный ответ и балл,
// назначенный вопросу в рамках этого экзамена.
type GradedQuestion struct {
	QuestionID    uint
	QuestionType  string
	CorrectAnswer interface{}
	Score         float64
}

// AnswerRecord - результат проверки одного вопроса
type AnswerRecord struct {
	QuestionID uint
	IsCorrect  bool
	Submitted  interface{} // Сырой ответ студента, сохраняется для разбора ошибок
}

// Result - итог проверки всей попытки
type Result struct {
	TotalScore  float64
	PerQuestion []AnswerRecord
}

// Grade проверяет попытку: для каждого вопроса экзамена нормализует
// сохранённый правильный ответ и ответ студента, сравнивает канонические
// формы и суммирует баллы за верные ответы.
//
// Функция детерминированная и без побочных эффектов. Записи PerQuestion
// идут в порядке questions и покрывают каждый вопрос ровно один раз:
// пропущенный вопрос фиксируется как неверный, лишние идентификаторы в
// answers игнорируются. Сохранение результата - забота вызывающего.
func Grade(questions []GradedQuestion, answers map[uint]interface{}) Result {
	result := Result{
		PerQuestion: make([]AnswerRecord, 0, len(questions)),
	}

	for _, q := range questions {
		raw, submitted := answers[q.QuestionID]
		if !submitted {
			// Отсутствующий ответ: пустой список для множественного выбора,
			// nil для остальных типов. И то и другое проверяемо и неверно.
			if q.QuestionType == "multiple" {
				raw = []interface{}{}
			} else {
				raw = nil
			}
		}

		correct := Normalize(q.CorrectAnswer)
		student := Normalize(raw)
		isCorrect := student.Equal(correct)

		if isCorrect {
			result.TotalScore += q.Score
		}

		result.PerQuestion = append(result.PerQuestion, AnswerRecord{
			QuestionID: q.QuestionID,
			IsCorrect:  isCorrect,
			Submitted:  raw,
		})
	}

	return result
}
