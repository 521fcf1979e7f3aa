package entity

import (
	"time"
)

// Category представляет тематическую категорию банка вопросов.
// Используется при составлении экзамена для квот случайной выборки.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}
