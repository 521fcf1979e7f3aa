package repository

import (
	"time"
)

// CacheRepository определяет методы кеша аналитики: статистика экзамена
// хранится в Redis как JSON и инвалидируется при новой попытке.
type CacheRepository interface {
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Delete(key string) error
}
