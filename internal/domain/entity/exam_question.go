package entity

// ExamQuestion связывает экзамен с вопросом банка и несёт балл за вопрос.
// Балл живёт только здесь: один и тот же вопрос в разных экзаменах
// может оцениваться по-разному.
type ExamQuestion struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ExamID     uint    `gorm:"not null;index;uniqueIndex:idx_exam_question" json:"exam_id"`
	QuestionID uint    `gorm:"not null;index;uniqueIndex:idx_exam_question" json:"question_id"`
	Score      float64 `gorm:"not null;default:5" json:"score"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (ExamQuestion) TableName() string {
	return "exam_questions"
}
