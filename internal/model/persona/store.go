package persona

// Store resolves persona archetypes for the report and the HTTP listing.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore is a read-only archetype table. Later entries with a repeated
// ID replace earlier ones but keep the first position.
type MemoryStore struct {
	order []string
	byID  map[string]Persona
}

// NewMemoryStore indexes items by ID.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]Persona, len(items))}
	for _, p := range items {
		if _, seen := s.byID[p.ID]; !seen {
			s.order = append(s.order, p.ID)
		}
		s.byID[p.ID] = p
	}
	return s
}

// List returns archetypes in insertion order.
func (s *MemoryStore) List() []Persona {
	out := make([]Persona, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// FindByID looks up one archetype.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// ForLeaders picks the archetype matching the signs of the two strongest
// dimensions.
func (s *MemoryStore) ForLeaders(firstPositive, secondPositive bool) (Persona, bool) {
	return s.FindByID(ArchetypeID(firstPositive, secondPositive))
}
