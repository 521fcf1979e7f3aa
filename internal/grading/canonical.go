// Package grading приводит ответы к каноническому виду и проверяет их.
// Все функции пакета чистые: никакого I/O, никакой случайности. Искажённый
// или пустой ответ никогда не приводит к ошибке - он нормализуется в
// значение, которое просто не совпадёт с правильным ответом.
package grading

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind определяет каноническую форму ответа
type Kind int

const (
	// KindBool - ответ на вопрос "верно/неверно"
	KindBool Kind = iota
	// KindLetterSet - множество буквенных вариантов (одиночный и множественный выбор)
	KindLetterSet
	// KindScalar - непрозрачный запасной вариант: строка после trim+upper
	KindScalar
)

// Canonical - каноническая форма ответа: помеченное объединение трёх форм.
// Сравнение допустимо только между значениями одной формы; ответ, чья форма
// не совпала с формой правильного ответа, считается неверным без приведения.
type Canonical struct {
	Kind    Kind
	Bool    bool
	Letters []string // Отсортированы, без дубликатов, в верхнем регистре
	Scalar  string
}

// Токены, распознаваемые как булевы значения. Помимо универсальных
// английских включены русские слова - локаль развёртывания.
var (
	trueTokens = map[string]struct{}{
		"TRUE": {}, "T": {}, "YES": {}, "1": {},
		"ДА": {}, "ВЕРНО": {}, "ИСТИНА": {}, "ПРАВИЛЬНО": {},
	}
	falseTokens = map[string]struct{}{
		"FALSE": {}, "F": {}, "NO": {}, "0": {},
		"НЕТ": {}, "НЕВЕРНО": {}, "ЛОЖЬ": {}, "НЕПРАВИЛЬНО": {},
	}
)

// Разделители списка букв: ASCII и полноширинные варианты запятой и
// точки с запятой, встречающиеся в импортированных банках вопросов.
var letterSeparators = strings.NewReplacer("，", ",", "；", ",", ";", ",")

// Normalize приводит сырой ответ (значение, разобранное из JSON: строка,
// список, булево, число или объект) к одной из трёх канонических форм.
// Функция тотальна: для любого входа возвращается корректное значение,
// в худшем случае - пустое множество букв или скаляр.
func Normalize(raw interface{}) Canonical {
	switch v := raw.(type) {
	case nil:
		return letterSet(nil)
	case bool:
		return Canonical{Kind: KindBool, Bool: v}
	case string:
		return normalizeString(v)
	case []interface{}:
		return normalizeList(v)
	case []string:
		items := make([]interface{}, len(v))
		for i, s := range v {
			items[i] = s
		}
		return normalizeList(items)
	case map[string]interface{}:
		// Форма {"A": true, "C": true}: буквы с истинными значениями
		letters := make([]string, 0, len(v))
		for k, val := range v {
			if truthy(val) {
				letters = append(letters, strings.ToUpper(strings.TrimSpace(k)))
			}
		}
		return letterSet(letters)
	default:
		// Числа и прочие скаляры проходят через строковую нормализацию
		return normalizeString(fmt.Sprint(v))
	}
}

// normalizeString разбирает строковые кодировки: встроенный JSON, булевы
// токены, одиночную букву, список букв через запятую, иначе скаляр.
func normalizeString(s string) Canonical {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return letterSet(nil)
	}

	// Строка может содержать сериализованный JSON ("[\"A\",\"C\"]", "true")
	if trimmed[0] == '[' || trimmed[0] == '{' || trimmed[0] == '"' {
		var embedded interface{}
		if err := json.Unmarshal([]byte(trimmed), &embedded); err == nil {
			return Normalize(embedded)
		}
	}

	upper := strings.ToUpper(trimmed)
	if b, ok := boolToken(upper); ok {
		return Canonical{Kind: KindBool, Bool: b}
	}

	// Список букв через запятую (включая полноширинные разделители).
	// Если хотя бы один фрагмент не буква - это не список вариантов,
	// строка целиком уходит в скалярный запасной вариант.
	unified := letterSeparators.Replace(upper)
	if strings.Contains(unified, ",") {
		if parts := splitLetters(unified); parts != nil {
			return letterSet(parts)
		}
		return Canonical{Kind: KindScalar, Scalar: upper}
	}

	if isLetterToken(upper) {
		return letterSet([]string{upper})
	}

	return Canonical{Kind: KindScalar, Scalar: upper}
}

// normalizeList разбирает списочные кодировки. Список из одного булева или
// булевоподобного элемента разворачивается в KindBool ([True], ["True"]).
func normalizeList(items []interface{}) Canonical {
	if len(items) == 0 {
		return letterSet(nil)
	}

	if len(items) == 1 {
		switch first := items[0].(type) {
		case bool:
			return Canonical{Kind: KindBool, Bool: first}
		case string:
			if b, ok := boolToken(strings.ToUpper(strings.TrimSpace(first))); ok {
				return Canonical{Kind: KindBool, Bool: b}
			}
		}
	}

	letters := make([]string, 0, len(items))
	allLetters := true
	parts := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if str, ok := item.(string); ok {
			s = strings.ToUpper(strings.TrimSpace(str))
		} else {
			s = strings.ToUpper(strings.TrimSpace(fmt.Sprint(item)))
		}
		parts = append(parts, s)
		if !isLetterToken(s) {
			allLetters = false
			continue
		}
		letters = append(letters, s)
	}

	if allLetters {
		return letterSet(letters)
	}
	// Список с произвольным содержимым деградирует в скаляр
	return Canonical{Kind: KindScalar, Scalar: strings.Join(parts, ",")}
}

// Equal сравнивает два канонических значения. Разные формы никогда не равны:
// кросс-форменного приведения нет.
func (c Canonical) Equal(other Canonical) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case KindBool:
		return c.Bool == other.Bool
	case KindLetterSet:
		if len(c.Letters) != len(other.Letters) {
			return false
		}
		for i := range c.Letters {
			if c.Letters[i] != other.Letters[i] {
				return false
			}
		}
		return true
	default:
		return c.Scalar == other.Scalar
	}
}

// String возвращает отладочное представление канонического значения
func (c Canonical) String() string {
	switch c.Kind {
	case KindBool:
		return fmt.Sprintf("bool(%t)", c.Bool)
	case KindLetterSet:
		return fmt.Sprintf("letters{%s}", strings.Join(c.Letters, ","))
	default:
		return fmt.Sprintf("scalar(%s)", c.Scalar)
	}
}

// letterSet строит каноническое множество: сортировка и удаление дубликатов
// делают сравнение независимым от порядка
func letterSet(letters []string) Canonical {
	if len(letters) == 0 {
		return Canonical{Kind: KindLetterSet, Letters: []string{}}
	}
	sort.Strings(letters)
	deduped := letters[:1]
	for _, l := range letters[1:] {
		if l != deduped[len(deduped)-1] {
			deduped = append(deduped, l)
		}
	}
	return Canonical{Kind: KindLetterSet, Letters: deduped}
}

func boolToken(upper string) (bool, bool) {
	if _, ok := trueTokens[upper]; ok {
		return true, true
	}
	if _, ok := falseTokens[upper]; ok {
		return false, true
	}
	return false, false
}

// isLetterToken проверяет, что строка - одиночная буква варианта (A-Z)
func isLetterToken(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

// splitLetters разбивает строку по запятым и оставляет только буквенные
// токены; если хоть один фрагмент не буква, строка - не список вариантов
func splitLetters(s string) []string {
	fields := strings.Split(s, ",")
	letters := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !isLetterToken(f) {
			return nil
		}
		letters = append(letters, f)
	}
	return letters
}

// truthy повторяет семантику истинности JSON-значений для словарной формы ответа
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "0" && !strings.EqualFold(val, "false")
	case float64:
		return val != 0
	case nil:
		return false
	default:
		return true
	}
}
