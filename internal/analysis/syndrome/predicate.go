package syndrome

import (
	"errors"
	"fmt"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// ErrMalformed marks a predicate that cannot be evaluated.
var ErrMalformed = errors.New("malformed predicate")

// Op is a comparison operator.
type Op string

const (
	OpGT Op = "gt"
	OpGE Op = "ge"
	OpLT Op = "lt"
	OpLE Op = "le"
	OpEQ Op = "eq"
	OpNE Op = "ne"
)

// Apply evaluates a op b.
func (o Op) Apply(a, b int) (bool, error) {
	switch o {
	case OpGT:
		return a > b, nil
	case OpGE:
		return a >= b, nil
	case OpLT:
		return a < b, nil
	case OpLE:
		return a <= b, nil
	case OpEQ:
		return a == b, nil
	case OpNE:
		return a != b, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrMalformed, o)
	}
}

// BandTest is true when the dimension's band level is one of In.
type BandTest struct {
	Dim assessment.DimensionKey `json:"dim" yaml:"dim"`
	In  []band.Level            `json:"in" yaml:"in"`
}

// CompareTest compares the raw scores of two dimensions.
type CompareTest struct {
	Left  assessment.DimensionKey `json:"left" yaml:"left"`
	Op    Op                      `json:"op" yaml:"op"`
	Right assessment.DimensionKey `json:"right" yaml:"right"`
}

// ScoreTest compares one raw score with a constant.
type ScoreTest struct {
	Dim   assessment.DimensionKey `json:"dim" yaml:"dim"`
	Op    Op                      `json:"op" yaml:"op"`
	Value int                     `json:"value" yaml:"value"`
}

// MaxTest is true when Dim holds the largest raw score. Ties count.
type MaxTest struct {
	Dim assessment.DimensionKey `json:"dim" yaml:"dim"`
}

// Predicate is a tagged union: exactly one field must be set.
type Predicate struct {
	All     []Predicate  `json:"all,omitempty" yaml:"all,omitempty"`
	Any     []Predicate  `json:"any,omitempty" yaml:"any,omitempty"`
	Not     *Predicate   `json:"not,omitempty" yaml:"not,omitempty"`
	Band    *BandTest    `json:"band,omitempty" yaml:"band,omitempty"`
	Compare *CompareTest `json:"compare,omitempty" yaml:"compare,omitempty"`
	Score   *ScoreTest   `json:"score,omitempty" yaml:"score,omitempty"`
	Max     *MaxTest     `json:"max,omitempty" yaml:"max,omitempty"`
}

func (p Predicate) kinds() int {
	n := 0
	if p.All != nil {
		n++
	}
	if p.Any != nil {
		n++
	}
	for _, set := range []bool{p.Not != nil, p.Band != nil, p.Compare != nil, p.Score != nil, p.Max != nil} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks the predicate tree without evaluating it.
func (p Predicate) Validate() error {
	if n := p.kinds(); n != 1 {
		return fmt.Errorf("%w: expected exactly one variant, got %d", ErrMalformed, n)
	}
	switch {
	case p.All != nil:
		return validateList("all", p.All)
	case p.Any != nil:
		return validateList("any", p.Any)
	case p.Not != nil:
		return p.Not.Validate()
	case p.Band != nil:
		if err := checkDim(p.Band.Dim); err != nil {
			return err
		}
		if len(p.Band.In) == 0 {
			return fmt.Errorf("%w: band test on %s has no levels", ErrMalformed, p.Band.Dim)
		}
		for _, l := range p.Band.In {
			if !l.Valid() {
				return fmt.Errorf("%w: unknown level %q", ErrMalformed, l)
			}
		}
	case p.Compare != nil:
		if err := checkDim(p.Compare.Left); err != nil {
			return err
		}
		if err := checkDim(p.Compare.Right); err != nil {
			return err
		}
		if _, err := p.Compare.Op.Apply(0, 0); err != nil {
			return err
		}
	case p.Score != nil:
		if err := checkDim(p.Score.Dim); err != nil {
			return err
		}
		if _, err := p.Score.Op.Apply(0, 0); err != nil {
			return err
		}
	case p.Max != nil:
		return checkDim(p.Max.Dim)
	}
	return nil
}

func validateList(kind string, list []Predicate) error {
	if len(list) == 0 {
		return fmt.Errorf("%w: empty %s", ErrMalformed, kind)
	}
	for i, child := range list {
		if err := child.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
	}
	return nil
}

func checkDim(dim assessment.DimensionKey) error {
	if !dim.Valid() {
		return fmt.Errorf("%w: unknown dimension %q", ErrMalformed, dim)
	}
	return nil
}

// Eval evaluates the predicate against v. Combinators short-circuit; a
// malformed node returns an error instead of a value.
func (p Predicate) Eval(v band.Vector) (bool, error) {
	if n := p.kinds(); n != 1 {
		return false, fmt.Errorf("%w: expected exactly one variant, got %d", ErrMalformed, n)
	}
	switch {
	case p.All != nil:
		if len(p.All) == 0 {
			return false, fmt.Errorf("%w: empty all", ErrMalformed)
		}
		for _, child := range p.All {
			ok, err := child.Eval(v)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case p.Any != nil:
		if len(p.Any) == 0 {
			return false, fmt.Errorf("%w: empty any", ErrMalformed)
		}
		for _, child := range p.Any {
			ok, err := child.Eval(v)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case p.Not != nil:
		ok, err := p.Not.Eval(v)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case p.Band != nil:
		entry, err := lookup(v, p.Band.Dim)
		if err != nil {
			return false, err
		}
		for _, l := range p.Band.In {
			if entry.Band.Level == l {
				return true, nil
			}
		}
		return false, nil
	case p.Compare != nil:
		left, err := lookup(v, p.Compare.Left)
		if err != nil {
			return false, err
		}
		right, err := lookup(v, p.Compare.Right)
		if err != nil {
			return false, err
		}
		return p.Compare.Op.Apply(left.Score, right.Score)
	case p.Score != nil:
		entry, err := lookup(v, p.Score.Dim)
		if err != nil {
			return false, err
		}
		return p.Score.Op.Apply(entry.Score, p.Score.Value)
	default:
		entry, err := lookup(v, p.Max.Dim)
		if err != nil {
			return false, err
		}
		return entry.Score == v.Max(), nil
	}
}

func lookup(v band.Vector, dim assessment.DimensionKey) (band.Scored, error) {
	entry, ok := v.Get(dim)
	if !ok {
		return band.Scored{}, fmt.Errorf("%w: dimension %q not in vector", ErrMalformed, dim)
	}
	return entry, nil
}
