package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_BooleanTokens(t *testing.T) {
	trueCases := []interface{}{true, "true", "TRUE", " True ", "yes", "1", "T", "да", "ВЕРНО", "истина"}
	for _, raw := range trueCases {
		c := Normalize(raw)
		assert.Equal(t, KindBool, c.Kind, "вход %#v должен нормализоваться в bool", raw)
		assert.True(t, c.Bool, "вход %#v должен быть истиной", raw)
	}

	falseCases := []interface{}{false, "false", "  no", "0", "F", "нет", "НЕВЕРНО", "ложь"}
	for _, raw := range falseCases {
		c := Normalize(raw)
		assert.Equal(t, KindBool, c.Kind, "вход %#v должен нормализоваться в bool", raw)
		assert.False(t, c.Bool, "вход %#v должен быть ложью", raw)
	}
}

func TestNormalize_SingleLetter(t *testing.T) {
	for _, raw := range []interface{}{"A", "a", " a ", []interface{}{"A"}, []string{"a"}} {
		c := Normalize(raw)
		require.Equal(t, KindLetterSet, c.Kind, "вход %#v", raw)
		assert.Equal(t, []string{"A"}, c.Letters, "вход %#v", raw)
	}
}

func TestNormalize_LetterSet_OrderAndDuplicates(t *testing.T) {
	// Все кодировки одного и того же множества {A, C}
	encodings := []interface{}{
		"A,C",
		"c,a",
		"C, A",
		"A，C",   // полноширинная запятая
		"A；C",   // полноширинная точка с запятой
		"a;c;a", // дубликаты схлопываются
		[]interface{}{"C", "A"},
		[]interface{}{"a", "c", "A"},
		[]string{"A", "C"},
		`["A","C"]`, // сериализованный JSON внутри строки
		map[string]interface{}{"A": true, "C": true, "B": false},
	}

	expected := Normalize("A,C")
	require.Equal(t, KindLetterSet, expected.Kind)
	require.Equal(t, []string{"A", "C"}, expected.Letters)

	for _, raw := range encodings {
		c := Normalize(raw)
		assert.True(t, c.Equal(expected), "вход %#v нормализовался в %s, ожидалось %s", raw, c, expected)
	}
}

func TestNormalize_EmptyAnswers(t *testing.T) {
	empty := []interface{}{nil, "", "   ", []interface{}{}, map[string]interface{}{}, map[string]interface{}{"A": false}}
	for _, raw := range empty {
		c := Normalize(raw)
		require.Equal(t, KindLetterSet, c.Kind, "вход %#v", raw)
		assert.Empty(t, c.Letters, "вход %#v должен давать пустое множество", raw)
	}

	// Пустое множество не равно никакому непустому ответу
	assert.False(t, Normalize(nil).Equal(Normalize("A")))
	assert.False(t, Normalize("").Equal(Normalize(true)))
}

func TestNormalize_ScalarFallback(t *testing.T) {
	c := Normalize("Paris")
	require.Equal(t, KindScalar, c.Kind)
	assert.Equal(t, "PARIS", c.Scalar)

	// Регистронезависимое сравнение скаляров
	assert.True(t, Normalize("paris").Equal(Normalize("  PARIS ")))

	// Строка с запятой, где не все фрагменты - буквы, остается скаляром
	c = Normalize("A,Paris")
	require.Equal(t, KindScalar, c.Kind)
	assert.Equal(t, "A,PARIS", c.Scalar)
}

func TestNormalize_SingletonBoolList(t *testing.T) {
	for _, raw := range []interface{}{
		[]interface{}{true},
		[]interface{}{"true"},
		[]interface{}{"Верно"},
		`[true]`,
	} {
		c := Normalize(raw)
		require.Equal(t, KindBool, c.Kind, "вход %#v", raw)
		assert.True(t, c.Bool, "вход %#v", raw)
	}
}

func TestNormalize_EmbeddedJSON(t *testing.T) {
	c := Normalize(`"A"`)
	require.Equal(t, KindLetterSet, c.Kind)
	assert.Equal(t, []string{"A"}, c.Letters)

	c = Normalize("true")
	assert.Equal(t, KindBool, c.Kind)

	// Битый JSON не роняет нормализацию - уходит в скаляр
	c = Normalize(`["A",`)
	assert.Equal(t, KindScalar, c.Kind)
}

func TestCanonical_NoCrossKindEquality(t *testing.T) {
	boolVal := Normalize(true)
	letters := Normalize("A")
	scalar := Normalize("Paris")

	assert.False(t, boolVal.Equal(letters))
	assert.False(t, boolVal.Equal(scalar))
	assert.False(t, letters.Equal(scalar))

	// "1" - булев токен, а не буква и не скаляр
	assert.True(t, Normalize("1").Equal(Normalize(true)))
	assert.False(t, Normalize("1").Equal(Normalize("A")))
}

func TestNormalize_Deterministic(t *testing.T) {
	inputs := []interface{}{"A,C", true, "Paris", []interface{}{"B", "A"}}
	for _, raw := range inputs {
		assert.True(t, Normalize(raw).Equal(Normalize(raw)), "вход %#v", raw)
	}
}

func TestNormalize_MixedListDegradesToScalar(t *testing.T) {
	c := Normalize([]interface{}{"A", "Paris"})
	require.Equal(t, KindScalar, c.Kind)
	assert.Equal(t, "A,PARIS", c.Scalar)
}
