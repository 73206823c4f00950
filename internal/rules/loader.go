package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/syndrome"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// ErrEmptyFile is returned for a rules file with no content.
var ErrEmptyFile = errors.New("rules file is empty")

type dimensionConfig struct {
	Bands []band.Band `json:"bands" yaml:"bands"`
}

// fileConfig mirrors the on-disk document. Every section is optional.
type fileConfig struct {
	Meta          Meta                       `json:"meta" yaml:"meta"`
	Dimensions    map[string]dimensionConfig `json:"dimensions" yaml:"dimensions"`
	SpecialStates map[string]SpecialState    `json:"specialStates" yaml:"specialStates"`
	Rules         []syndrome.Rule            `json:"rules" yaml:"rules"`
}

// Issue records one fragment that was dropped or replaced during load.
type Issue struct {
	Section string
	Key     string
	Reason  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%s]: %s", i.Section, i.Key, i.Reason)
}

// LoadFile reads and validates the rules file at path.
func LoadFile(path string, logger *zap.Logger) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rs, issues, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	rs.Meta.Source = "file:" + path
	if logger != nil {
		for _, issue := range issues {
			logger.Warn("rules fragment replaced", zap.String("path", path), zap.Stringer("issue", issue))
		}
	}
	return rs, nil
}

// Parse decodes a YAML or JSON document and validates it. Invalid fragments
// are replaced by defaults and reported as issues; only an undecodable
// document is an error.
func Parse(data []byte) (*Ruleset, []Issue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, ErrEmptyFile
	}

	var cfg fileConfig
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &cfg); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &cfg); err != nil {
		return nil, nil, fmt.Errorf("decode yaml: %w", err)
	}

	var issues []Issue
	rs := &Ruleset{
		Meta:          cfg.Meta,
		Bands:         band.DefaultTable(),
		SpecialStates: DefaultSpecialStates(),
	}
	if rs.Meta.Schema == "" {
		rs.Meta.Schema = "v1"
	}

	for rawKey, dim := range cfg.Dimensions {
		key, ok := assessment.ParseKey(rawKey)
		if !ok {
			issues = append(issues, Issue{Section: "dimensions", Key: rawKey, Reason: "unknown dimension, ignored"})
			continue
		}
		if err := band.ValidateSet(dim.Bands); err != nil {
			issues = append(issues, Issue{Section: "dimensions", Key: rawKey, Reason: "bands replaced by defaults: " + err.Error()})
			continue
		}
		rs.Bands[key] = append([]band.Band(nil), dim.Bands...)
	}

	for rawFlag, state := range cfg.SpecialStates {
		flag := Flag(rawFlag)
		if flag != FlagA && flag != FlagB {
			issues = append(issues, Issue{Section: "specialStates", Key: rawFlag, Reason: "unknown flag, ignored"})
			continue
		}
		if !state.Dim.Valid() || strings.TrimSpace(state.Template) == "" {
			issues = append(issues, Issue{Section: "specialStates", Key: rawFlag, Reason: "needs a known dim and a template, default kept"})
			continue
		}
		if strings.TrimSpace(state.Label) == "" {
			state.Label = rs.SpecialStates[flag].Label
		}
		rs.SpecialStates[flag] = state
	}

	if cfg.Rules == nil {
		rs.Rules = syndrome.Order(syndrome.DefaultRules())
		issues = append(issues, Issue{Section: "rules", Key: "*", Reason: "section missing, built-in rules used"})
		return rs, issues, nil
	}

	seen := make(map[string]bool, len(cfg.Rules))
	valid := make([]syndrome.Rule, 0, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		key := rule.ID
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		if err := rule.Validate(); err != nil {
			issues = append(issues, Issue{Section: "rules", Key: key, Reason: "dropped: " + err.Error()})
			continue
		}
		if seen[rule.ID] {
			issues = append(issues, Issue{Section: "rules", Key: key, Reason: "dropped: duplicate id"})
			continue
		}
		seen[rule.ID] = true
		valid = append(valid, rule)
	}
	rs.Rules = syndrome.Order(valid)
	return rs, issues, nil
}
