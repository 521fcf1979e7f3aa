package entity

import (
	"time"
)

// ExamAttempt представляет единственную сдачу экзамена одним студентом.
// Запись неизменяема после создания: повторная сдача под тем же именем
// отклоняется, уникальный индекс idx_attempts_exam_student закрывает гонку
// двух одновременных отправок.
type ExamAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExamID      uint      `gorm:"not null;index" json:"exam_id"`
	StudentName string    `gorm:"size:100;not null" json:"student_name"`
	EmployeeNo  string    `gorm:"size:50;not null;default:''" json:"employee_no"`
	SubmitTime  time.Time `gorm:"not null" json:"submit_time"`
	FinalScore  float64   `gorm:"not null;default:0" json:"final_score"`
	SwitchCount int       `gorm:"not null;default:0" json:"switch_count"`
	CreatedAt   time.Time `json:"created_at"`

	Answers []StudentAnswer `gorm:"foreignKey:AttemptID" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (ExamAttempt) TableName() string {
	return "exam_attempts"
}
