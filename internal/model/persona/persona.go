package persona

// Persona is the archetype used for the persona blurb. It is picked from the
// sign of the two dimensions with the largest absolute score.
type Persona struct {
	ID          string `json:"id"`
	Leading     string `json:"leading"`  // tendency implied by the strongest dimension
	Trailing    string `json:"trailing"` // tendency implied by the second strongest
	Description string `json:"description,omitempty"`
}

// Title joins both tendencies the way the blurb prints them.
func (p Persona) Title() string {
	return p.Leading + "、" + p.Trailing
}

// ArchetypeID maps the signs of the top two scores to a persona ID. Zero
// counts as positive.
func ArchetypeID(firstPositive, secondPositive bool) string {
	first, second := "low", "low"
	if firstPositive {
		first = "high"
	}
	if secondPositive {
		second = "high"
	}
	return first + "-" + second
}

// Seed provides the four built-in archetypes.
func Seed() []Persona {
	return []Persona{
		{
			ID:          "high-high",
			Leading:     "主動",
			Trailing:    "外放",
			Description: "行動先於猶豫，樂於把想法說出口。",
		},
		{
			ID:          "high-low",
			Leading:     "主動",
			Trailing:    "內斂",
			Description: "有主見也肯行動，但習慣把感受收在心裡。",
		},
		{
			ID:          "low-high",
			Leading:     "保守",
			Trailing:    "外放",
			Description: "做決定前較謹慎，與人相處時卻相當開放。",
		},
		{
			ID:          "low-low",
			Leading:     "保守",
			Trailing:    "內斂",
			Description: "步調穩、話不多，需要時間建立信任。",
		},
	}
}
