package modifiers

// Attribute names a numeric card attribute that modifiers can shift.
type Attribute string

const (
	AttrAttack        Attribute = "attack"
	AttrDefense       Attribute = "defense"
	AttrCounterAttack Attribute = "counter_attack"
)

// Kind categorizes a modifier for display and dispel purposes. The engine
// treats all kinds identically when summing deltas.
type Kind string

const (
	KindBuff   Kind = "BUFF"
	KindDebuff Kind = "DEBUFF"
	KindStatus Kind = "STATUS"
)

// Permanent is the RemainingTurns value for modifiers that never expire.
const Permanent = -1

// Modifier is a timed additive delta to one attribute of a card.
type Modifier struct {
	SourceID       string // card instance that applied the modifier
	Attribute      Attribute
	Delta          int
	Kind           Kind
	RemainingTurns int // Permanent (-1) or a positive countdown
}

// Expired reports whether the modifier has run out of turns.
func (m Modifier) Expired() bool {
	return m.RemainingTurns == 0
}

// Set is an ordered collection of active modifiers with a derived-sum cache.
// Recomputation is idempotent and O(len(active)).
type Set struct {
	active []Modifier
	sums   map[Attribute]int
}

// NewSet creates an empty modifier set.
func NewSet() *Set {
	return &Set{sums: make(map[Attribute]int)}
}

// Add appends a modifier and recomputes the attribute sums.
func (s *Set) Add(m Modifier) {
	s.active = append(s.active, m)
	s.recompute()
}

// Remove deletes the first modifier equal to m and recomputes. It returns
// false if no matching modifier was present.
func (s *Set) Remove(m Modifier) bool {
	for i, existing := range s.active {
		if existing == m {
			s.active = append(s.active[:i], s.active[i+1:]...)
			s.recompute()
			return true
		}
	}
	return false
}

// RemoveBySource deletes every modifier applied by the given source card and
// returns how many were removed.
func (s *Set) RemoveBySource(sourceID string) int {
	removed := 0
	kept := s.active[:0]
	for _, m := range s.active {
		if m.SourceID == sourceID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.active = kept
	if removed > 0 {
		s.recompute()
	}
	return removed
}

// Tick decrements the remaining-turns counter of every timed modifier by one.
// Permanent modifiers are untouched. Call once per end of turn, before
// ClearExpired.
func (s *Set) Tick() {
	for i := range s.active {
		if s.active[i].RemainingTurns > 0 {
			s.active[i].RemainingTurns--
		}
	}
}

// ClearExpired removes every modifier whose countdown reached zero and
// returns the removed modifiers. A modifier must never survive the tick in
// which it expires.
func (s *Set) ClearExpired() []Modifier {
	var expired []Modifier
	kept := s.active[:0]
	for _, m := range s.active {
		if m.Expired() {
			expired = append(expired, m)
			continue
		}
		kept = append(kept, m)
	}
	s.active = kept
	if len(expired) > 0 {
		s.recompute()
	}
	return expired
}

// Sum returns the total delta currently applied to the attribute.
func (s *Set) Sum(attr Attribute) int {
	return s.sums[attr]
}

// Active returns a copy of the active modifiers in application order.
func (s *Set) Active() []Modifier {
	out := make([]Modifier, len(s.active))
	copy(out, s.active)
	return out
}

// Len returns the number of active modifiers.
func (s *Set) Len() int {
	return len(s.active)
}

func (s *Set) recompute() {
	for k := range s.sums {
		delete(s.sums, k)
	}
	for _, m := range s.active {
		s.sums[m.Attribute] += m.Delta
	}
}
