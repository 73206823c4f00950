package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	intakeService "github.com/ericdynasty/line-oca-bot/internal/service/intake"
)

// Form is a one-shot submission carrying every answer at once. Scores may be
// numbers, numeric strings or missing; they go through Normalize.
type Form struct {
	Name   string           `json:"name"`
	Gender string           `json:"gender"`
	Age    int              `json:"age"`
	Date   string           `json:"date"`
	FlagA  bool             `json:"flagA"`
	FlagB  bool             `json:"flagB"`
	Scores map[string]any   `json:"scores"`
	Wants  *report.Sections `json:"wants,omitempty"`
}

// Input converts the form. Unknown score keys are ignored and missing
// dimensions count as 0.
func (f Form) Input() Input {
	scores := make(map[assessment.DimensionKey]int, 10)
	for _, key := range assessment.Keys() {
		scores[key] = 0
	}
	for raw, value := range f.Scores {
		if key, ok := assessment.ParseKey(raw); ok {
			scores[key] = assessment.Normalize(value)
		}
	}
	in := Input{
		Identity: report.Identity{Name: f.Name, Gender: f.Gender, Age: f.Age, Date: f.Date},
		FlagA:    f.FlagA,
		FlagB:    f.FlagB,
		Scores:   scores,
	}
	if f.Wants != nil {
		in.Sections = *f.Wants
	}
	return in
}

// Validate applies the intake rules for name and age and requires every
// dimension score to be numeric and inside [-100,100]. The first problem is
// returned as a *intakeService.ValidationError.
func (f Form) Validate() error {
	if _, err := intakeService.ParseName(f.Name); err != nil {
		return err
	}
	if _, err := intakeService.ParseAge(strconv.Itoa(f.Age)); err != nil {
		return err
	}
	present := make(map[assessment.DimensionKey]any, len(f.Scores))
	for raw, value := range f.Scores {
		if key, ok := assessment.ParseKey(raw); ok {
			present[key] = value
		}
	}
	for _, key := range assessment.Keys() {
		if _, ok := assessment.Check(present[key]); !ok {
			return &intakeService.ValidationError{
				Field: "score." + string(key),
				Hint:  fmt.Sprintf("%s 點（%s）分數缺漏或不在 -100～100 之間。", key, key.Name()),
			}
		}
	}
	return nil
}

// AnalyzeForm validates a form submission and runs the pipeline.
func (s *Service) AnalyzeForm(ctx context.Context, f Form) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	return s.Analyze(ctx, f.Input(), SourceForm), nil
}

// ParseScorePairs reads "A=44,B=-8" style input. Values are kept as strings
// so Form.Input applies the usual normalization.
func ParseScorePairs(text string) (map[string]any, error) {
	scores := make(map[string]any, 10)
	for _, pair := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' || r == ' ' }) {
		raw, value, ok := strings.Cut(pair, "=")
		if !ok {
			raw, value, ok = strings.Cut(pair, ":")
		}
		if !ok {
			return nil, fmt.Errorf("score %q: expected KEY=VALUE", pair)
		}
		key, known := assessment.ParseKey(raw)
		if !known {
			return nil, fmt.Errorf("score %q: unknown dimension %q", pair, raw)
		}
		scores[string(key)] = strings.TrimSpace(value)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores given")
	}
	return scores, nil
}
