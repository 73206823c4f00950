// Package rules loads band thresholds, special-state templates and syndrome
// rules from a YAML or JSON file, validating everything once at load time and
// replacing invalid fragments with the built-in defaults.
package rules

import (
	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/syndrome"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// SourceFallback is reported when the built-in configuration is active.
const SourceFallback = "fallback"

// Flag names one of the two special-state switches collected during intake.
type Flag string

const (
	FlagA Flag = "flagA"
	FlagB Flag = "flagB"
)

// Meta describes where the active configuration came from.
type Meta struct {
	Source string `json:"source" yaml:"-"`
	Schema string `json:"schema" yaml:"schema"`
	Note   string `json:"note,omitempty" yaml:"note,omitempty"`
}

// SpecialState replaces a dimension's ordinary band text while its flag is set.
type SpecialState struct {
	Dim      assessment.DimensionKey `json:"dim" yaml:"dim"`
	Label    string                  `json:"label" yaml:"label"`
	Template string                  `json:"template" yaml:"template"`
}

// Ruleset is the validated, read-only configuration used by the pipeline.
// Never mutate a Ruleset after it has been published by a Store.
type Ruleset struct {
	Meta          Meta
	Bands         map[assessment.DimensionKey][]band.Band
	SpecialStates map[Flag]SpecialState
	// Rules are already in evaluation order.
	Rules []syndrome.Rule
}

// BandsFor returns the bands configured for dim.
func (r *Ruleset) BandsFor(dim assessment.DimensionKey) []band.Band {
	if r == nil {
		return band.Defaults(dim)
	}
	if bands, ok := r.Bands[dim]; ok {
		return bands
	}
	return band.Defaults(dim)
}

// RuleIDs lists the active rule IDs in evaluation order.
func (r *Ruleset) RuleIDs() []string {
	ids := make([]string, 0, len(r.Rules))
	for _, rule := range r.Rules {
		ids = append(ids, rule.ID)
	}
	return ids
}

// DefaultSpecialStates maps flag A to dimension B and flag B to dimension E.
func DefaultSpecialStates() map[Flag]SpecialState {
	return map[Flag]SpecialState{
		FlagA: {
			Dim:      assessment.DimB,
			Label:    "躁狂（B 情緒）",
			Template: "處於躁狂狀態：情緒高昂但起伏大，B 點分數僅供參考。",
		},
		FlagB: {
			Dim:      assessment.DimE,
			Label:    "躁狂（E 點）",
			Template: "處於躁狂狀態：活躍度被放大，E 點需搭配其他面向判讀。",
		},
	}
}

// Defaults returns the complete built-in configuration.
func Defaults() *Ruleset {
	return &Ruleset{
		Meta: Meta{
			Source: SourceFallback,
			Schema: "v1",
			Note:   "rules file not loaded, using built-in thresholds and placeholder text",
		},
		Bands:         band.DefaultTable(),
		SpecialStates: DefaultSpecialStates(),
		Rules:         syndrome.Order(syndrome.DefaultRules()),
	}
}
