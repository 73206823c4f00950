package syndrome

import (
	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

func scoreAt(dim assessment.DimensionKey, op Op, value int) Predicate {
	return Predicate{Score: &ScoreTest{Dim: dim, Op: op, Value: value}}
}

func inBands(dim assessment.DimensionKey, levels ...band.Level) Predicate {
	return Predicate{Band: &BandTest{Dim: dim, In: levels}}
}

var notHigh = []band.Level{band.Neutral, band.LowLight, band.LowHeavy}

// DefaultRules is the built-in rule set used when no configuration file is
// readable. The insight texts are placeholders to be replaced by the course
// material in the rules file.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "ABC_low_E_high",
			Priority: 100,
			Insight:  "A、B、C 皆偏低而 E 偏高：表面活躍，內在不穩，容易以忙碌掩飾壓力。",
			When: Predicate{All: []Predicate{
				scoreAt(assessment.DimA, OpLE, -40),
				scoreAt(assessment.DimB, OpLE, -40),
				scoreAt(assessment.DimC, OpLE, -40),
				scoreAt(assessment.DimE, OpGE, 70),
			}},
		},
		{
			ID:       "AJ_low",
			Priority: 90,
			Insight:  "A 與 J 同時偏低：情緒不穩又難以滿足，人際上容易感到孤立。",
			When: Predicate{All: []Predicate{
				scoreAt(assessment.DimA, OpLE, -40),
				scoreAt(assessment.DimJ, OpLE, -40),
			}},
		},
		{
			ID:       "EF_low",
			Priority: 85,
			Insight:  "E 與 F 同時偏低：行動力與積極度不足，容易停滯不前。",
			When: Predicate{All: []Predicate{
				scoreAt(assessment.DimE, OpLE, -40),
				scoreAt(assessment.DimF, OpLE, -40),
			}},
		},
		{
			ID:       "E_high_G_low",
			Priority: 80,
			Insight:  "E 偏高而 G 偏低：衝勁足但責任感跟不上，承諾容易落空。",
			When: Predicate{All: []Predicate{
				scoreAt(assessment.DimE, OpGE, 70),
				scoreAt(assessment.DimG, OpLE, -40),
			}},
		},
		{
			ID:       "D_low_J_high",
			Priority: 75,
			Insight:  "D 偏低而 J 偏高：好相處但缺乏主見，容易被他人牽著走。",
			When: Predicate{All: []Predicate{
				scoreAt(assessment.DimD, OpLE, -40),
				scoreAt(assessment.DimJ, OpGE, 70),
			}},
		},
		{
			ID:       "A1_B34",
			Priority: 70,
			Insight:  "【症狀群B】A 高(重) 但 B 不高：穩定外表下，內在喜悅感不足。",
			When: Predicate{All: []Predicate{
				inBands(assessment.DimA, band.HighHeavy),
				inBands(assessment.DimB, notHigh...),
			}},
		},
		{
			ID:       "A1_C34",
			Priority: 70,
			Insight:  "【症狀群B】A 高(重) 但 C 不高：看似穩定，面對變化時容易緊繃。",
			When: Predicate{All: []Predicate{
				inBands(assessment.DimA, band.HighHeavy),
				inBands(assessment.DimC, notHigh...),
			}},
		},
		{
			ID:       "B1_A34",
			Priority: 70,
			Insight:  "【症狀群B】B 高(重) 但 A 不高：情緒起伏大，開心來得快也去得快。",
			When: Predicate{All: []Predicate{
				inBands(assessment.DimB, band.HighHeavy),
				inBands(assessment.DimA, notHigh...),
			}},
		},
		{
			ID:       "B1_C34",
			Priority: 70,
			Insight:  "【症狀群B】B 高(重) 但 C 不高：樂在當下，遇到壓力時較難沉著。",
			When: Predicate{All: []Predicate{
				inBands(assessment.DimB, band.HighHeavy),
				inBands(assessment.DimC, notHigh...),
			}},
		},
		{
			ID:       "C1_A34",
			Priority: 70,
			Insight:  "【症狀群B】C 高(重) 但 A 不高：表面沉著，內在穩定度仍需加強。",
			When: Predicate{All: []Predicate{
				inBands(assessment.DimC, band.HighHeavy),
				inBands(assessment.DimA, notHigh...),
			}},
		},
		{
			ID:       "G90_I90",
			Priority: 60,
			Insight:  "G 與 I 皆達 90：責任與欣賞能力極高，需留意是否過度要求自己。",
			When: Predicate{All: []Predicate{
				scoreAt(assessment.DimG, OpEQ, 90),
				scoreAt(assessment.DimI, OpEQ, 90),
			}},
		},
		{
			ID:       "I_high",
			Priority: 50,
			Insight:  "I 偏高：欣賞能力強，容易看見他人優點。",
			When:     scoreAt(assessment.DimI, OpGE, 70),
		},
		{
			ID:       "F_over_E",
			Priority: 40,
			Insight:  "F 高於 E：想法多於行動，計畫需要落實的推力。",
			When:     Predicate{Compare: &CompareTest{Left: assessment.DimF, Op: OpGT, Right: assessment.DimE}},
		},
		{
			ID:       "A_peak",
			Priority: 30,
			Insight:  "A 為全項最高且達高(重)：穩定是主要資源，可以此帶動其他面向。",
			When: Predicate{All: []Predicate{
				{Max: &MaxTest{Dim: assessment.DimA}},
				inBands(assessment.DimA, band.HighHeavy),
			}},
		},
	}
}
