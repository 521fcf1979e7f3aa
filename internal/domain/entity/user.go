package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User представляет учётную запись преподавателя.
// Студенты не регистрируются: они входят по имени и табельному номеру,
// сессия живёт в Redis и в эту таблицу не попадает.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'teacher'" json:"role"`
	FullName     string    `gorm:"size:100;not null;default:''" json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует пароль перед сохранением, только если он ещё не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.PasswordHash == "" {
		return nil
	}

	// bcrypt-хеши начинаются с "$2a$", "$2b$" или "$2y$" и имеют длину 60
	if len(u.PasswordHash) == 60 && u.PasswordHash[0] == '$' {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword сравнивает пароль с сохранённым хешем
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
