package assessment

import "strings"

// DimensionKey identifies one of the ten score axes.
type DimensionKey string

const (
	DimA DimensionKey = "A"
	DimB DimensionKey = "B"
	DimC DimensionKey = "C"
	DimD DimensionKey = "D"
	DimE DimensionKey = "E"
	DimF DimensionKey = "F"
	DimG DimensionKey = "G"
	DimH DimensionKey = "H"
	DimI DimensionKey = "I"
	DimJ DimensionKey = "J"
)

// Dimension carries the display metadata of a score axis.
type Dimension struct {
	Key      DimensionKey `json:"key"`
	Name     string       `json:"name"`
	Semantic string       `json:"semantic"`
}

// dimensions is the declared order. Intake asks for scores in this order and
// every tie-break in the report falls back to it.
var dimensions = []Dimension{
	{Key: DimA, Name: "穩定", Semantic: "stability"},
	{Key: DimB, Name: "價值", Semantic: "happiness"},
	{Key: DimC, Name: "變化", Semantic: "composure"},
	{Key: DimD, Name: "果敢", Semantic: "certainty"},
	{Key: DimE, Name: "活躍", Semantic: "activity"},
	{Key: DimF, Name: "樂觀", Semantic: "optimism"},
	{Key: DimG, Name: "責任", Semantic: "responsibility"},
	{Key: DimH, Name: "評估力", Semantic: "correct estimation"},
	{Key: DimI, Name: "欣賞能力", Semantic: "appreciative"},
	{Key: DimJ, Name: "滿意能力", Semantic: "communication"},
}

// Dimensions returns the ten dimensions in declared order.
func Dimensions() []Dimension {
	return append([]Dimension(nil), dimensions...)
}

// Keys returns the dimension keys in declared order.
func Keys() []DimensionKey {
	keys := make([]DimensionKey, len(dimensions))
	for i, d := range dimensions {
		keys[i] = d.Key
	}
	return keys
}

// Lookup finds a dimension by key.
func Lookup(key DimensionKey) (Dimension, bool) {
	for _, d := range dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return Dimension{}, false
}

// Index returns the declared position of key, or -1.
func Index(key DimensionKey) int {
	for i, d := range dimensions {
		if d.Key == key {
			return i
		}
	}
	return -1
}

// ParseKey accepts "a", " A " and similar spellings.
func ParseKey(raw string) (DimensionKey, bool) {
	key := DimensionKey(strings.ToUpper(strings.TrimSpace(raw)))
	if Index(key) < 0 {
		return "", false
	}
	return key, true
}

// Valid reports whether k is one of the ten declared keys.
func (k DimensionKey) Valid() bool {
	return Index(k) >= 0
}

// Name returns the display name, or the key itself when unknown.
func (k DimensionKey) Name() string {
	if d, ok := Lookup(k); ok {
		return d.Name
	}
	return string(k)
}
