package band

import (
	"fmt"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

func bound(v int) *int { return &v }

// defaultShape holds the built-in thresholds used whenever configuration is
// missing or invalid for a dimension.
var defaultShape = []struct {
	suffix   string
	level    Level
	min, max *int
	label    string
	template string
}{
	{"5", HighHeavy, bound(41), nil, "高(重)", "偏高且影響重、驅動力大。"},
	{"4", HighLight, bound(11), bound(40), "高(輕)", "略偏高、傾向較明顯。"},
	{"3", Neutral, bound(-10), bound(10), "中性", "較平衡、影響小。"},
	{"2", LowLight, bound(-40), bound(-11), "低(輕)", "略偏低、偶爾受影響。"},
	{"1", LowHeavy, nil, bound(-41), "低(重)", "不足感明顯、需特別留意。"},
}

// Defaults returns the built-in five-band set for dim.
func Defaults(dim assessment.DimensionKey) []Band {
	out := make([]Band, 0, len(defaultShape))
	for _, s := range defaultShape {
		out = append(out, Band{
			ID:       fmt.Sprintf("%s%s", dim, s.suffix),
			Level:    s.level,
			Min:      s.min,
			Max:      s.max,
			Label:    s.label,
			Template: s.template,
		})
	}
	return out
}

// DefaultTable returns the built-in bands for all ten dimensions.
func DefaultTable() map[assessment.DimensionKey][]Band {
	table := make(map[assessment.DimensionKey][]Band, 10)
	for _, key := range assessment.Keys() {
		table[key] = Defaults(key)
	}
	return table
}
