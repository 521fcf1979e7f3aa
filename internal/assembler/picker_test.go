package assembler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeBank строит банк: count вопросов заданного типа и категории,
// начиная с идентификатора startID
func makeBank(startID uint, qType, category string, count int) []BankQuestion {
	bank := make([]BankQuestion, 0, count)
	for i := 0; i < count; i++ {
		bank = append(bank, BankQuestion{ID: startID + uint(i), Type: qType, Category: category})
	}
	return bank
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestPick_CategoryQuotasAndFill(t *testing.T) {
	// Arrange: 5 single по математике, 5 single по физике, 4 multiple без категории
	bank := makeBank(1, "single", "математика", 5)
	bank = append(bank, makeBank(101, "single", "физика", 5)...)
	bank = append(bank, makeBank(201, "multiple", "", 4)...)

	req := Request{
		"single": {
			Total:      6,
			ByCategory: map[string]int{"математика": 2, "физика": 3},
		},
		"multiple": {Total: 2},
	}

	// Act
	ids, err := Pick(bank, req, testRNG())

	// Assert: проверяем свойства множества, а не конкретные элементы
	require.NoError(t, err)
	require.Len(t, ids, 8)

	byID := make(map[uint]BankQuestion)
	for _, q := range bank {
		byID[q.ID] = q
	}

	seen := make(map[uint]struct{})
	counts := make(map[string]int)
	catCounts := make(map[string]int)
	for _, id := range ids {
		q, ok := byID[id]
		require.True(t, ok, "идентификатор %d отсутствует в банке", id)

		_, dup := seen[id]
		require.False(t, dup, "идентификатор %d выбран дважды", id)
		seen[id] = struct{}{}

		counts[q.Type]++
		if q.Type == "single" {
			catCounts[q.Category]++
		}
	}

	assert.Equal(t, 6, counts["single"])
	assert.Equal(t, 2, counts["multiple"])
	assert.GreaterOrEqual(t, catCounts["математика"], 2)
	assert.GreaterOrEqual(t, catCounts["физика"], 3)
}

func TestPick_CategoryShortfall(t *testing.T) {
	bank := makeBank(1, "single", "математика", 2)

	req := Request{
		"single": {Total: 3, ByCategory: map[string]int{"математика": 3}},
	}

	ids, err := Pick(bank, req, testRNG())

	require.Error(t, err)
	assert.Nil(t, ids, "при нехватке ничего не возвращается")

	var shortfall *ShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, ShortfallCategory, shortfall.Kind)
	assert.Equal(t, "single", shortfall.Type)
	assert.Equal(t, "математика", shortfall.Category)
	assert.Equal(t, 3, shortfall.Required)
	assert.Equal(t, 2, shortfall.Available)
}

func TestPick_TypeShortfall(t *testing.T) {
	bank := makeBank(1, "single", "", 4)

	req := Request{
		"single": {Total: 10},
	}

	_, err := Pick(bank, req, testRNG())

	var shortfall *ShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, ShortfallType, shortfall.Kind)
	assert.Equal(t, "single", shortfall.Type)
	assert.Empty(t, shortfall.Category)
	assert.Equal(t, 10, shortfall.Required)
	assert.Equal(t, 4, shortfall.Available)
}

func TestPick_TypeShortfall_CountsCategoryTakes(t *testing.T) {
	// В категории хватает на квоту, но на Total по типу вопросов нет:
	// Available учитывает уже выбранные по квоте вопросы
	bank := makeBank(1, "single", "математика", 3)

	req := Request{
		"single": {Total: 5, ByCategory: map[string]int{"математика": 2}},
	}

	_, err := Pick(bank, req, testRNG())

	var shortfall *ShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, ShortfallType, shortfall.Kind)
	assert.Equal(t, 5, shortfall.Required)
	assert.Equal(t, 3, shortfall.Available)
}

func TestPick_QuestionNeverPickedTwiceAcrossTypes(t *testing.T) {
	// Большой запрос, где добор и квоты конкурируют за одни вопросы
	bank := makeBank(1, "single", "математика", 10)
	bank = append(bank, makeBank(100, "single", "физика", 10)...)

	req := Request{
		"single": {
			Total:      20,
			ByCategory: map[string]int{"математика": 10, "физика": 5},
		},
	}

	for seed := int64(0); seed < 20; seed++ {
		ids, err := Pick(bank, req, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		require.Len(t, ids, 20)

		seen := make(map[uint]struct{}, len(ids))
		for _, id := range ids {
			_, dup := seen[id]
			require.False(t, dup, "seed %d: идентификатор %d выбран дважды", seed, id)
			seen[id] = struct{}{}
		}
	}
}

func TestPick_EmptyRequest(t *testing.T) {
	bank := makeBank(1, "single", "", 5)

	ids, err := Pick(bank, Request{}, testRNG())

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPick_ZeroCategoryQuotaSkipped(t *testing.T) {
	bank := makeBank(1, "single", "математика", 2)

	req := Request{
		"single": {Total: 2, ByCategory: map[string]int{"физика": 0}},
	}

	ids, err := Pick(bank, req, testRNG())

	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestPick_UncategorizedEligibleForFill(t *testing.T) {
	// Добор берет вопросы и без категории
	bank := makeBank(1, "single", "математика", 1)
	bank = append(bank, makeBank(100, "single", "", 3)...)

	req := Request{
		"single": {Total: 4, ByCategory: map[string]int{"математика": 1}},
	}

	ids, err := Pick(bank, req, testRNG())

	require.NoError(t, err)
	assert.Len(t, ids, 4)
}
