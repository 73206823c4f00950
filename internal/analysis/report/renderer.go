// Package report turns a classified score vector into ordered text segments.
package report

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/syndrome"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/model/persona"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
)

const (
	headingDetail   = "【A~J 單點】"
	headingSummary  = "【綜合重點】"
	headingInsights = "【判讀提示】"
	headingPersona  = "【人物側寫】"

	unset = "未填"
)

// Identity is the respondent data echoed back in the greeting.
type Identity struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Date   string `json:"date"`
}

// Sections selects which optional report sections to render.
type Sections struct {
	Detail  bool `json:"detail"`
	Summary bool `json:"summary"`
	Persona bool `json:"persona"`
}

// AllSections enables every optional section.
func AllSections() Sections {
	return Sections{Detail: true, Summary: true, Persona: true}
}

// Empty reports whether nothing was selected.
func (s Sections) Empty() bool {
	return !s.Detail && !s.Summary && !s.Persona
}

// Request carries everything one report needs. The renderer does no lookups
// of its own apart from persona archetypes.
type Request struct {
	Identity      Identity
	Flags         map[rules.Flag]bool
	Sections      Sections
	Vector        band.Vector
	Matches       []syndrome.Match
	SpecialStates map[rules.Flag]rules.SpecialState
}

// Renderer formats reports. It is safe for concurrent use.
type Renderer struct {
	maxLen   int
	personas persona.Store
	logger   *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxSegmentLen caps the rune length of every segment.
func WithMaxSegmentLen(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxLen = n
		}
	}
}

// WithPersonas swaps the archetype store used for the persona blurb.
func WithPersonas(store persona.Store) Option {
	return func(r *Renderer) {
		if store != nil {
			r.personas = store
		}
	}
}

// NewRenderer builds a renderer with the built-in persona archetypes.
func NewRenderer(logger *zap.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{
		maxLen:   DefaultMaxSegmentLen,
		personas: persona.NewMemoryStore(persona.Seed()),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the greeting followed by the selected sections. Each
// section starts a new segment.
func (r *Renderer) Render(req Request) []Segment {
	sections := req.Sections
	if sections.Empty() {
		sections = AllSections()
	}
	specials := req.SpecialStates
	if specials == nil {
		specials = rules.DefaultSpecialStates()
	}

	blocks := [][]string{r.header(req.Identity)}
	if sections.Detail {
		blocks = append(blocks, r.detail(req.Vector, req.Flags, specials))
	}
	if sections.Summary {
		blocks = append(blocks, r.summary(req.Vector, req.Flags, specials, req.Identity.Date))
		if len(req.Matches) > 0 {
			blocks = append(blocks, r.insights(req.Matches))
		}
	}
	if sections.Persona {
		blocks = append(blocks, r.persona(req.Vector))
	}

	var out []Segment
	for _, lines := range blocks {
		for _, text := range pack(lines, r.maxLen) {
			out = append(out, Segment{Text: text})
		}
	}
	return out
}

func (r *Renderer) header(id Identity) []string {
	gender := id.Gender
	if gender == "" {
		gender = unset
	}
	age := unset
	if id.Age > 0 {
		age = fmt.Sprintf("%d", id.Age)
	}
	return []string{
		fmt.Sprintf("Hi %s！已收到你的 OCA 分數。", id.Name),
		fmt.Sprintf("（年齡：%s，性別：%s）", age, gender),
	}
}

func (r *Renderer) detail(v band.Vector, flags map[rules.Flag]bool, specials map[rules.Flag]rules.SpecialState) []string {
	overrides := activeOverrides(flags, specials)
	lines := []string{headingDetail}
	for i, s := range v {
		if i > 0 {
			lines = append(lines, "")
		}
		label, text := s.Band.Label, s.Band.Template
		if special, ok := overrides[s.Dim]; ok {
			label, text = special.Label, special.Template
		}
		lines = append(lines, fmt.Sprintf("%s %s：%d｜%s｜（%s）", s.Dim, s.Dim.Name(), s.Score, label, s.Band.ID))
		for _, line := range strings.Split(text, "\n") {
			lines = append(lines, "— "+line)
		}
	}
	return lines
}

func (r *Renderer) summary(v band.Vector, flags map[rules.Flag]bool, specials map[rules.Flag]rules.SpecialState, date string) []string {
	top := v.TopByMagnitude(3)
	parts := make([]string, 0, len(top))
	for _, s := range top {
		parts = append(parts, fmt.Sprintf("%s %s：%d（%s）", s.Dim, s.Dim.Name(), s.Score, s.Band.Label))
	}
	if date == "" {
		date = unset
	}
	return []string{
		headingSummary,
		"最需要留意／最有影響的面向：" + strings.Join(parts, "、") + "。",
		fmt.Sprintf("%s：%s；%s：%s；",
			flagLabel(rules.FlagA, specials), yesNo(flags[rules.FlagA]),
			flagLabel(rules.FlagB, specials), yesNo(flags[rules.FlagB])),
		fmt.Sprintf("日 期：%s。", date),
	}
}

func (r *Renderer) insights(matches []syndrome.Match) []string {
	lines := []string{headingInsights}
	for _, m := range matches {
		lines = append(lines, "・"+m.Insight)
	}
	return lines
}

func (r *Renderer) persona(v band.Vector) []string {
	top := v.TopByMagnitude(2)
	if len(top) < 2 {
		return []string{headingPersona, "整體表現較均衡。"}
	}
	first, second := top[0], top[1]
	id := persona.ArchetypeID(first.Score >= 0, second.Score >= 0)
	p, ok := r.personas.FindByID(id)
	if !ok {
		r.logger.Warn("persona archetype missing, using built-in", zap.String("archetype", id))
		p, _ = persona.NewMemoryStore(persona.Seed()).ForLeaders(first.Score >= 0, second.Score >= 0)
	}
	lines := []string{
		headingPersona,
		fmt.Sprintf("%s %s%s、%s %s%s；整體呈現「%s」傾向。",
			first.Dim, first.Dim.Name(), direction(first.Score),
			second.Dim, second.Dim.Name(), direction(second.Score),
			p.Title()),
	}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	return lines
}

func activeOverrides(flags map[rules.Flag]bool, specials map[rules.Flag]rules.SpecialState) map[assessment.DimensionKey]rules.SpecialState {
	out := make(map[assessment.DimensionKey]rules.SpecialState, 2)
	// Iterate in a fixed order so flag B wins if both target the same dimension.
	for _, flag := range []rules.Flag{rules.FlagA, rules.FlagB} {
		if !flags[flag] {
			continue
		}
		if special, ok := specials[flag]; ok && special.Dim.Valid() {
			out[special.Dim] = special
		}
	}
	return out
}

func flagLabel(flag rules.Flag, specials map[rules.Flag]rules.SpecialState) string {
	if special, ok := specials[flag]; ok && special.Label != "" {
		return special.Label
	}
	return rules.DefaultSpecialStates()[flag].Label
}

func yesNo(b bool) string {
	if b {
		return "有"
	}
	return "無"
}

func direction(score int) string {
	if score >= 0 {
		return "偏高"
	}
	return "偏低"
}

// ParseSections reads a comma separated list such as "detail,persona". The
// words "all" and an empty string select everything.
func ParseSections(text string) (Sections, error) {
	if t := strings.ToLower(strings.TrimSpace(text)); t == "" || t == "all" {
		return AllSections(), nil
	}
	var s Sections
	for _, word := range strings.Split(text, ",") {
		switch strings.ToLower(strings.TrimSpace(word)) {
		case "":
		case "detail":
			s.Detail = true
		case "summary":
			s.Summary = true
		case "persona":
			s.Persona = true
		default:
			return Sections{}, fmt.Errorf("unknown section %q", word)
		}
	}
	return s, nil
}
