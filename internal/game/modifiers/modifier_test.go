package modifiers

import "testing"

func TestSetSumAcrossAttributes(t *testing.T) {
	s := NewSet()
	s.Add(Modifier{SourceID: "a", Attribute: AttrAttack, Delta: 2, Kind: KindBuff, RemainingTurns: Permanent})
	s.Add(Modifier{SourceID: "b", Attribute: AttrAttack, Delta: -1, Kind: KindDebuff, RemainingTurns: 2})
	s.Add(Modifier{SourceID: "b", Attribute: AttrDefense, Delta: 3, Kind: KindBuff, RemainingTurns: 1})

	if got := s.Sum(AttrAttack); got != 1 {
		t.Fatalf("expected attack sum 1, got %d", got)
	}
	if got := s.Sum(AttrDefense); got != 3 {
		t.Fatalf("expected defense sum 3, got %d", got)
	}
	if got := s.Sum(AttrCounterAttack); got != 0 {
		t.Fatalf("expected counter sum 0, got %d", got)
	}
}

func TestSetRecomputeIdempotent(t *testing.T) {
	s := NewSet()
	s.Add(Modifier{SourceID: "a", Attribute: AttrAttack, Delta: 2, RemainingTurns: Permanent})

	s.recompute()
	first := s.Sum(AttrAttack)
	s.recompute()
	if s.Sum(AttrAttack) != first {
		t.Fatalf("recompute not idempotent: %d vs %d", first, s.Sum(AttrAttack))
	}
}

func TestTickAndClearExpired(t *testing.T) {
	s := NewSet()
	s.Add(Modifier{SourceID: "a", Attribute: AttrAttack, Delta: 2, RemainingTurns: 1})
	s.Add(Modifier{SourceID: "b", Attribute: AttrAttack, Delta: 5, RemainingTurns: Permanent})

	s.Tick()
	expired := s.ClearExpired()

	if len(expired) != 1 || expired[0].SourceID != "a" {
		t.Fatalf("expected the 1-turn modifier to expire, got %v", expired)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 surviving modifier, got %d", s.Len())
	}
	if got := s.Sum(AttrAttack); got != 5 {
		t.Fatalf("expected attack sum 5 after expiry, got %d", got)
	}

	// Permanent modifiers never tick down.
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if got := len(s.ClearExpired()); got != 0 {
		t.Fatalf("permanent modifier expired after %d ticks", got)
	}
}

func TestRemoveBySource(t *testing.T) {
	s := NewSet()
	s.Add(Modifier{SourceID: "a", Attribute: AttrAttack, Delta: 1, RemainingTurns: Permanent})
	s.Add(Modifier{SourceID: "a", Attribute: AttrDefense, Delta: 1, RemainingTurns: Permanent})
	s.Add(Modifier{SourceID: "b", Attribute: AttrAttack, Delta: 1, RemainingTurns: Permanent})

	if removed := s.RemoveBySource("a"); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if s.Sum(AttrAttack) != 1 || s.Sum(AttrDefense) != 0 {
		t.Fatalf("unexpected sums after removal: attack=%d defense=%d", s.Sum(AttrAttack), s.Sum(AttrDefense))
	}
}

func TestRemoveMissingModifier(t *testing.T) {
	s := NewSet()
	if s.Remove(Modifier{SourceID: "x", Attribute: AttrAttack, Delta: 1}) {
		t.Fatal("expected Remove to return false for a missing modifier")
	}
}
