package intake

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericdynasty/line-oca-bot/internal/model/intake"
)

func TestParseName(t *testing.T) {
	name, err := ParseName("  王 小明 ")
	require.NoError(t, err)
	assert.Equal(t, "王 小明", name)

	_, err = ParseName(" \t ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	_, err = ParseName(strings.Repeat("名", 41))
	assert.Error(t, err)
	_, err = ParseName(strings.Repeat("名", 40))
	assert.NoError(t, err)
}

func TestParseGender(t *testing.T) {
	for in, want := range map[string]string{"1": "男", "2": "女", "3": "其他", "女": "女"} {
		got, err := ParseGender(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseGender("4")
	assert.Error(t, err)
}

func TestParseAge(t *testing.T) {
	for _, ok := range []string{"14", "120", " 30 "} {
		_, err := ParseAge(ok)
		assert.NoErrorf(t, err, "age %q", ok)
	}
	for _, bad := range []string{"13", "121", "abc", "15.5", ""} {
		_, err := ParseAge(bad)
		assert.Errorf(t, err, "age %q", bad)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "2025/09/02", true},
		{"2025/01/02", "2025/01/02", true},
		{"2025-9-2", "2025/09/02", true},
		{"2024/02/29", "2024/02/29", true},
		{"2025/02/30", "", false},
		{"2025/13/01", "", false},
		{"yesterday", "", false},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in, testNow)
		if !tt.ok {
			assert.Errorf(t, err, "date %q", tt.in)
			continue
		}
		require.NoErrorf(t, err, "date %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFlag(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "有": true, "Y": true, "2": false, "無": false, "n": false} {
		got, err := ParseFlag(in)
		require.NoErrorf(t, err, "flag %q", in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFlag("3")
	assert.Error(t, err)
}

func TestParsePreferences(t *testing.T) {
	all := intake.Preferences{WantDetail: true, WantSummary: true, WantPersona: true}
	tests := []struct {
		in   string
		want intake.Preferences
	}{
		{"4", all},
		{"ALL", all},
		{"全部", all},
		{"1", intake.Preferences{WantDetail: true}},
		{"2", intake.Preferences{WantSummary: true}},
		{"1,3", intake.Preferences{WantDetail: true, WantPersona: true}},
		{"1、2", intake.Preferences{WantDetail: true, WantSummary: true}},
		{"2 3", intake.Preferences{WantSummary: true, WantPersona: true}},
		{"13", intake.Preferences{WantDetail: true, WantPersona: true}},
		{"1,4", all},
	}
	for _, tt := range tests {
		got, err := ParsePreferences(tt.in)
		require.NoErrorf(t, err, "preferences %q", tt.in)
		assert.Equalf(t, tt.want, got, "preferences %q", tt.in)
	}
	for _, bad := range []string{"", "5", "1,x", "none"} {
		_, err := ParsePreferences(bad)
		assert.Errorf(t, err, "preferences %q", bad)
	}
}
