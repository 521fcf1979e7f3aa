package entity

import (
	"time"
)

// Статусы экзамена
const (
	ExamStatusActive   = "active"   // Опубликован, студенты могут сдавать
	ExamStatusInactive = "inactive" // Черновик или снят с публикации
)

// Exam представляет экзамен, собранный преподавателем из банка вопросов
type Exam struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CreatorID       uint       `gorm:"not null;index" json:"creator_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `gorm:"not null;default:60" json:"duration_minutes"`
	Status          string     `gorm:"size:20;not null;default:'inactive';index" json:"status"`
	IsRandomized    bool       `gorm:"not null;default:false" json:"is_randomized"`
	SwitchLimit     int        `gorm:"not null;default:0" json:"switch_limit"` // 0 - без ограничения
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	ExamQuestions []ExamQuestion `gorm:"foreignKey:ExamID" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Exam) TableName() string {
	return "exams"
}

// IsActive проверяет, открыт ли экзамен для сдачи: он опубликован
// и текущее время попадает в окно start_time..end_time, если оно задано
func (e *Exam) IsActive() bool {
	if e.Status != ExamStatusActive {
		return false
	}
	now := time.Now()
	if e.StartTime != nil && now.Before(*e.StartTime) {
		return false
	}
	if e.EndTime != nil && now.After(*e.EndTime) {
		return false
	}
	return true
}
