package band

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

func TestClassifyBoundaries(t *testing.T) {
	bands := Defaults(assessment.DimA)
	cases := map[int]Level{
		100:  HighHeavy,
		41:   HighHeavy,
		40:   HighLight,
		11:   HighLight,
		10:   Neutral,
		0:    Neutral,
		-10:  Neutral,
		-11:  LowLight,
		-40:  LowLight,
		-41:  LowHeavy,
		-100: LowHeavy,
	}
	for score, want := range cases {
		got := Classify(assessment.DimA, score, bands)
		assert.Equalf(t, want, got.Level, "score %d", score)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	for _, key := range assessment.Keys() {
		bands := Defaults(key)
		require.NoError(t, ValidateSet(bands))
		for s := assessment.MinScore; s <= assessment.MaxScore; s++ {
			hits := 0
			for _, b := range bands {
				if b.Contains(s) {
					hits++
				}
			}
			require.Equalf(t, 1, hits, "dimension %s score %d", key, s)
		}
	}
}

func TestClassifyFallsBackOnGaps(t *testing.T) {
	// only covers the positive half
	partial := []Band{{ID: "X", Level: HighHeavy, Min: bound(0), Label: "pos"}}

	got := Classify(assessment.DimC, 5, partial)
	assert.Equal(t, "X", got.ID)

	got = Classify(assessment.DimC, -50, partial)
	assert.Equal(t, "C1", got.ID)
	assert.Equal(t, LowHeavy, got.Level)

	got = Classify(assessment.DimC, -20, nil)
	assert.Equal(t, "C2", got.ID)
}

func TestClassifyDeterministic(t *testing.T) {
	bands := Defaults(assessment.DimJ)
	first := Classify(assessment.DimJ, -12, bands)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(assessment.DimJ, -12, bands))
	}
}

func TestValidateSet(t *testing.T) {
	assert.Error(t, ValidateSet(nil))
	assert.Error(t, ValidateSet([]Band{{ID: "bad", Level: "weird", Min: bound(0)}}))
	assert.Error(t, ValidateSet([]Band{{ID: "open", Level: Neutral}}))
	assert.Error(t, ValidateSet([]Band{{ID: "inverted", Level: Neutral, Min: bound(5), Max: bound(-5)}}))
	assert.Error(t, ValidateSet([]Band{{ID: "gap", Level: Neutral, Min: bound(-100), Max: bound(50)}}))
	assert.NoError(t, ValidateSet([]Band{{ID: "all", Level: Neutral, Min: bound(-100)}}))
}

func TestTopByMagnitudeTiesKeepDeclaredOrder(t *testing.T) {
	v := ClassifyAll(map[assessment.DimensionKey]int{
		assessment.DimH: 40,
		assessment.DimB: -40,
		assessment.DimA: 40,
		assessment.DimJ: -40,
		assessment.DimC: 12,
	}, DefaultTable())

	top := v.TopByMagnitude(3)
	require.Len(t, top, 3)
	assert.Equal(t, []assessment.DimensionKey{assessment.DimA, assessment.DimB, assessment.DimH},
		[]assessment.DimensionKey{top[0].Dim, top[1].Dim, top[2].Dim})
	assert.Equal(t, LowLight, top[1].Band.Level)
}

func TestLevelValid(t *testing.T) {
	for _, l := range Levels() {
		assert.True(t, l.Valid(), l)
	}
	assert.False(t, Level("extreme").Valid())
}
