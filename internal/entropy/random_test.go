package entropy

import "testing"

func TestSameSeedSameDraws(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)
	for i := 0; i < 100; i++ {
		if av, bv := a.NormalInt(500, 150), b.NormalInt(500, 150); av != bv {
			t.Fatalf("draw %d diverged: %d vs %d", i, av, bv)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewSource(1)
	b := NewSource(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.NormalInt(500, 150) == b.NormalInt(500, 150) {
			same++
		}
	}
	if same == 100 {
		t.Error("different seeds produced identical draw sequences")
	}
}

func TestNormalIntZeroDeviation(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 10; i++ {
		if got := s.NormalInt(42, 0); got != 42 {
			t.Fatalf("NormalInt(42, 0) = %d", got)
		}
	}
}
