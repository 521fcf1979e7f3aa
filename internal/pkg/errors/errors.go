package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, категория с таким именем уже существует).
	ErrConflict = errors.New("resource state conflict")

	// ErrAlreadySubmitted используется, когда попытка сдачи экзамена под этим
	// именем уже существует. Отдельная ошибка, а не ErrConflict: клиенту нужно
	// адресное сообщение "вы уже сдали", а не общий конфликт.
	ErrAlreadySubmitted = errors.New("attempt already submitted")

	// ErrExamNotOpen используется при обращении к неопубликованному экзамену.
	ErrExamNotOpen = errors.New("exam is not open")
)
