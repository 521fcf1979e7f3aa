package entity

import (
	"time"
)

// Типы вопросов
const (
	QuestionTypeSingle    = "single"     // Один правильный вариант
	QuestionTypeMultiple  = "multiple"   // Несколько правильных вариантов
	QuestionTypeTrueFalse = "true_false" // Верно/неверно
)

// Question представляет вопрос в банке вопросов
type Question struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatorID     uint       `gorm:"not null;index" json:"creator_id"`
	CategoryID    *uint      `gorm:"index" json:"category_id,omitempty"`
	QuestionText  string     `gorm:"type:text;not null" json:"question_text"`
	QuestionType  string     `gorm:"size:20;not null;index" json:"question_type"`
	Options       OptionsMap `gorm:"type:jsonb" json:"options"`
	CorrectAnswer JSONValue  `gorm:"type:jsonb;not null" json:"-"` // Скрыто от клиента
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsValidQuestionType проверяет, что тип вопроса входит в число поддерживаемых
func IsValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeSingle, QuestionTypeMultiple, QuestionTypeTrueFalse:
		return true
	}
	return false
}
