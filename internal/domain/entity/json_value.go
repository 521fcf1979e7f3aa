package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONValue - пользовательский тип для хранения произвольного JSON в JSONB.
// Используется для correct_answer и student_answer, форма которых заранее
// не фиксирована: строка, список строк, булево или список с одним булевым.
type JSONValue json.RawMessage

// Scan реализует интерфейс sql.Scanner для JSONValue
// Используется GORM для чтения JSONB данных из базы
func (v *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}

	switch data := value.(type) {
	case []byte:
		*v = append(JSONValue{}, data...)
		return nil
	case string:
		*v = JSONValue(data)
		return nil
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}
}

// Value реализует интерфейс driver.Valuer для JSONValue
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// MarshalJSON отдаёт сырое содержимое как есть
func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON сохраняет сырое содержимое без интерпретации
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}

// Decoded возвращает значение, разобранное из JSON (string, []interface{}, bool,
// map[string]interface{}, float64 или nil). Ошибки разбора не фатальны: сырое
// содержимое возвращается строкой, чтобы проверка ответа всегда могла состояться.
func (v JSONValue) Decoded() interface{} {
	if len(v) == 0 {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(v, &out); err != nil {
		return string(v)
	}
	return out
}

// NewJSONValue сериализует произвольное значение в JSONValue
func NewJSONValue(raw interface{}) JSONValue {
	data, err := json.Marshal(raw)
	if err != nil {
		return JSONValue("null")
	}
	return JSONValue(data)
}

// OptionsMap - тип для хранения вариантов ответа в JSONB: {"A": "текст", "B": "текст"}
type OptionsMap map[string]string

// Scan реализует интерфейс sql.Scanner для OptionsMap
func (o *OptionsMap) Scan(value interface{}) error {
	if value == nil {
		*o = OptionsMap{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = OptionsMap{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для OptionsMap
func (o OptionsMap) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("{}"), nil // Пустой объект вместо null
	}
	return json.Marshal(o)
}
