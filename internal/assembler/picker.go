// Package assembler реализует случайный подбор вопросов для экзамена
// с квотами по категориям. Подбор намеренно недетерминирован: повторный
// вызов с теми же аргументами может вернуть другой набор идентификаторов,
// поэтому тесты проверяют свойства результата (размер, уникальность,
// принадлежность категориям), а не конкретные значения.
package assembler

import (
	"fmt"
	"math/rand"
	"sort"
)

// BankQuestion - представление вопроса банка, достаточное для подбора
type BankQuestion struct {
	ID       uint
	Type     string
	Category string // Пустая строка - вопрос без категории
}

// TypeQuota описывает требования к одному типу вопросов: общее количество
// и минимумы по категориям. Сумма минимумов может быть меньше Total -
// остаток добирается случайно из всего типа.
type TypeQuota struct {
	Total      int
	ByCategory map[string]int
}

// Request - запрос на подбор: тип вопроса -> квоты
type Request map[string]TypeQuota

// Виды нехватки вопросов
const (
	ShortfallCategory = "category_shortfall"
	ShortfallType     = "type_shortfall"
)

// ShortfallError сообщает, что банк не может удовлетворить квоту.
// Ошибка фатальна для всего подбора: частичная сборка экзамена недопустима.
type ShortfallError struct {
	Kind      string
	Type      string
	Category  string // Заполнено только для ShortfallCategory
	Required  int
	Available int
}

// Error реализует интерфейс error
func (e *ShortfallError) Error() string {
	if e.Kind == ShortfallCategory {
		return fmt.Sprintf("недостаточно вопросов типа %q в категории %q: требуется %d, доступно %d",
			e.Type, e.Category, e.Required, e.Available)
	}
	return fmt.Sprintf("недостаточно вопросов типа %q в банке: требуется %d, доступно %d",
		e.Type, e.Required, e.Available)
}

// Pick подбирает вопросы по запросу. Для каждого типа сначала выполняются
// квоты по категориям (равномерная выборка без возвращения), затем добор
// до Total из всех вопросов типа. Один вопрос никогда не выбирается дважды,
// даже если он подходит и под квоту категории, и под добор: множество уже
// выбранных идентификаторов сквозное для всех категорий и типов.
//
// Порядок идентификаторов в результате не гарантируется.
func Pick(bank []BankQuestion, req Request, rng *rand.Rand) ([]uint, error) {
	picked := make(map[uint]struct{})
	result := make([]uint, 0)

	// Типы обходим в стабильном порядке, чтобы при нескольких нехватках
	// сообщение об ошибке не зависело от порядка итерации по map
	types := make([]string, 0, len(req))
	for t := range req {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, qType := range types {
		quota := req[qType]
		taken := 0

		// 1. Квоты по категориям
		cats := make([]string, 0, len(quota.ByCategory))
		for c := range quota.ByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		for _, cat := range cats {
			need := quota.ByCategory[cat]
			if need <= 0 {
				continue
			}
			pool := collect(bank, picked, func(q BankQuestion) bool {
				return q.Type == qType && q.Category == cat
			})
			if len(pool) < need {
				return nil, &ShortfallError{
					Kind:      ShortfallCategory,
					Type:      qType,
					Category:  cat,
					Required:  need,
					Available: len(pool),
				}
			}
			for _, id := range sample(pool, need, rng) {
				picked[id] = struct{}{}
				result = append(result, id)
			}
			taken += need
		}

		// 2. Добор до Total из всего типа, без учёта категорий
		if remain := quota.Total - taken; remain > 0 {
			pool := collect(bank, picked, func(q BankQuestion) bool {
				return q.Type == qType
			})
			if len(pool) < remain {
				return nil, &ShortfallError{
					Kind:      ShortfallType,
					Type:      qType,
					Required:  quota.Total,
					Available: taken + len(pool),
				}
			}
			for _, id := range sample(pool, remain, rng) {
				picked[id] = struct{}{}
				result = append(result, id)
			}
		}
	}

	return result, nil
}

// collect возвращает идентификаторы вопросов банка, подходящих под предикат
// и ещё не выбранных
func collect(bank []BankQuestion, picked map[uint]struct{}, match func(BankQuestion) bool) []uint {
	pool := make([]uint, 0)
	for _, q := range bank {
		if _, taken := picked[q.ID]; taken {
			continue
		}
		if match(q) {
			pool = append(pool, q.ID)
		}
	}
	return pool
}

// sample выбирает n элементов равномерно без возвращения.
// Частичный Фишер-Йетс: перемешиваем только первые n позиций.
func sample(pool []uint, n int, rng *rand.Rand) []uint {
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
