package entity

// StudentAnswer хранит сырой ответ студента на один вопрос попытки и
// результат его проверки. Для каждого вопроса экзамена создаётся ровно
// одна запись: пропущенный вопрос записывается с is_correct=false, а не
// пропускается (политика "всегда фиксировать").
type StudentAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AttemptID     uint      `gorm:"not null;index" json:"attempt_id"`
	QuestionID    uint      `gorm:"not null;index" json:"question_id"`
	StudentAnswer JSONValue `gorm:"type:jsonb" json:"student_answer"`
	IsCorrect     bool      `gorm:"not null" json:"is_correct"`
}

// TableName определяет имя таблицы для GORM
func (StudentAnswer) TableName() string {
	return "student_answers"
}
