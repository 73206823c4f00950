package intake

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/model/intake"
)

const (
	maxNameRunes = 40
	minAge       = 14
	maxAge       = 120
	dateLayout   = "2006/01/02"
)

// ValidationError describes a rejected reply. Hint is shown to the user
// before the prompt is repeated.
type ValidationError struct {
	Field string
	Hint  string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Hint
}

func invalid(field, hint string) error {
	return &ValidationError{Field: field, Hint: hint}
}

// mutation applies an accepted answer to a session copy.
type mutation func(*intake.Session)

// ParseName trims the name and enforces the length limit.
func ParseName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if strings.IndexFunc(name, func(r rune) bool { return !unicode.IsSpace(r) }) < 0 {
		return "", invalid("name", hintName)
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return "", invalid("name", hintName)
	}
	return name, nil
}

// ParseGender accepts 1/2/3 or the labels themselves.
func ParseGender(text string) (string, error) {
	switch strings.TrimSpace(text) {
	case "1", "男":
		return "男", nil
	case "2", "女":
		return "女", nil
	case "3", "其他":
		return "其他", nil
	}
	return "", invalid("gender", hintGender)
}

// ParseAge accepts an integer in [14,120].
func ParseAge(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < minAge || n > maxAge {
		return 0, invalid("age", hintAge)
	}
	return n, nil
}

// ParseDate accepts "1" for today or a real calendar date written as
// YYYY/MM/DD or YYYY-MM-DD. The result is always YYYY/MM/DD.
func ParseDate(text string, now time.Time) (string, error) {
	text = strings.TrimSpace(text)
	if text == "1" {
		return now.Format(dateLayout), nil
	}
	for _, layout := range []string{"2006/1/2", "2006-1-2"} {
		if d, err := time.Parse(layout, text); err == nil {
			return d.Format(dateLayout), nil
		}
	}
	return "", invalid("date", hintDate)
}

// ParseFlag accepts 1/2, 有/無 or y/n.
func ParseFlag(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "有", "y", "yes":
		return true, nil
	case "2", "無", "n", "no":
		return false, nil
	}
	return false, invalid("flag", hintFlag)
}

// ParsePreferences reads the section selector. "4", "all" or "全部" select
// everything; otherwise the reply lists 1, 2 and 3 separated by commas,
// spaces or 、, or packed together as in "13".
func ParsePreferences(text string) (intake.Preferences, error) {
	all := intake.Preferences{WantDetail: true, WantSummary: true, WantPersona: true}
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "4", "all", "全部":
		return all, nil
	}

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '、' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return intake.Preferences{}, invalid("preferences", hintWant)
	}
	var p intake.Preferences
	for _, tok := range tokens {
		for _, r := range tok {
			switch r {
			case '1':
				p.WantDetail = true
			case '2':
				p.WantSummary = true
			case '3':
				p.WantPersona = true
			case '4':
				return all, nil
			default:
				return intake.Preferences{}, invalid("preferences", hintWant)
			}
		}
	}
	return p, nil
}

func validateName(text string, _ time.Time) (mutation, error) {
	name, err := ParseName(text)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Collected.Name = name }, nil
}

func validateGender(text string, _ time.Time) (mutation, error) {
	gender, err := ParseGender(text)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Collected.Gender = gender }, nil
}

func validateAge(text string, _ time.Time) (mutation, error) {
	age, err := ParseAge(text)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Collected.Age = age }, nil
}

func validateDate(text string, now time.Time) (mutation, error) {
	date, err := ParseDate(text, now)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Collected.Date = date }, nil
}

func validateFlagA(text string, _ time.Time) (mutation, error) {
	on, err := ParseFlag(text)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Collected.FlagA = on }, nil
}

func validateFlagB(text string, _ time.Time) (mutation, error) {
	on, err := ParseFlag(text)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Collected.FlagB = on }, nil
}

func validateScore(dim assessment.DimensionKey) func(string, time.Time) (mutation, error) {
	return func(text string, _ time.Time) (mutation, error) {
		score, ok := assessment.ParseScore(text)
		if !ok {
			return nil, invalid("score "+string(dim), hintScore)
		}
		return func(s *intake.Session) {
			if s.Scores == nil {
				s.Scores = make(map[assessment.DimensionKey]int, 10)
			}
			s.Scores[dim] = score
		}, nil
	}
}

func validatePreferences(text string, _ time.Time) (mutation, error) {
	prefs, err := ParsePreferences(text)
	if err != nil {
		return nil, err
	}
	return func(s *intake.Session) { s.Preferences = prefs }, nil
}
