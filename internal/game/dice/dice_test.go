package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/entities/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"2d6", dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{"3d10+10", dice.Expression{Raw: "3d10+10", Count: 3, Sides: 10, Modifier: 10}},
		{"4D8-2", dice.Expression{Raw: "4D8-2", Count: 4, Sides: 8, Modifier: -2}},
		{"15", dice.Expression{Raw: "15", Modifier: 15}},
	}
	for _, tc := range tests {
		got, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "abc", "0d6", "2d1", "2dx", "2d6+y", "-1d4"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestExpression_MinMax(t *testing.T) {
	e := dice.MustParse("3d10+10")
	assert.Equal(t, 13, e.Min())
	assert.Equal(t, 40, e.Max())

	c := dice.MustParse("7")
	assert.Equal(t, 7, c.Min())
	assert.Equal(t, 7, c.Max())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestRoll_FixedSource(t *testing.T) {
	r := dice.Roll(dice.MustParse("2d6+3"), fixedSrc{val: 2})
	assert.Equal(t, []int{3, 3}, r.Dice)
	assert.Equal(t, 9, r.Total())
}

func TestBetween_SwapsBounds(t *testing.T) {
	src := dice.NewSeededSource(3)
	for i := 0; i < 50; i++ {
		v := dice.Between(src, 9, 4)
		assert.GreaterOrEqual(t, v, 4)
		assert.LessOrEqual(t, v, 9)
	}
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeededSource_ZeroSeedUsable(t *testing.T) {
	a := dice.NewSeededSource(0)
	b := dice.NewSeededSource(1)
	assert.Equal(t, a.Intn(1000), b.Intn(1000))
}

func TestSources_PanicOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(-1) })
}

func TestLoggedRoller_RollsWithinBounds(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewSeededSource(7), zaptest.NewLogger(t))
	e := dice.MustParse("2d6+8")
	for i := 0; i < 100; i++ {
		total := roller.Roll(e).Total()
		assert.GreaterOrEqual(t, total, e.Min())
		assert.LessOrEqual(t, total, e.Max())
	}
}

func TestNewLoggedRoller_NilPanics(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, zaptest.NewLogger(t)) })
}

func TestPropertyRoll_TotalWithinExpressionBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-10, 10).Draw(rt, "mod")
		seed := rapid.Int64().Draw(rt, "seed")
		e := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		r := dice.Roll(e, dice.NewSeededSource(seed))
		assert.Len(rt, r.Dice, count)
		assert.GreaterOrEqual(rt, r.Total(), e.Min())
		assert.LessOrEqual(rt, r.Total(), e.Max())
	})
}

func TestPropertyCryptoSource_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}
