package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam извлекает числовой параметр маршрута и кладет его в
// контекст Gin под заданным ключом. Группы маршрутов тестов, вопросов и
// попыток разбирают ":id" здесь, а не в каждом обработчике.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		// ID в сущностях — uint, сохраняем в том же виде
		c.Set(contextKey, uint(id))
		c.Next()
	}
}
