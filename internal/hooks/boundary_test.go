package hooks

import (
	"errors"
	"testing"

	"github.com/talgya/agora/internal/catalog"
	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/entropy"
	"github.com/talgya/agora/internal/mesh"
)

func testBoundary(t *testing.T, authority bool) *Boundary {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{ID: "parsnip", Category: 1, ListPrice: 35},
	}, []int{1}, nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := engine.DefaultConfig()
	eng := engine.New(cfg, cat, entropy.NewSource(1), 1)
	return NewBoundary(mesh.NewPeer(eng, nil, authority))
}

func TestGuardRecoversPanic(t *testing.T) {
	err := guard("test", func() error { panic("boom") })
	if err == nil {
		t.Fatal("panic was not converted to an error")
	}
}

func TestGuardPassesThroughError(t *testing.T) {
	want := errors.New("nope")
	if err := guard("test", func() error { return want }); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestGuardNilOnSuccess(t *testing.T) {
	if err := guard("test", func() error { return nil }); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestLifecycleOnAuthority(t *testing.T) {
	b := testBoundary(t, true)
	if err := b.OnSaveLoaded(); err != nil {
		t.Fatalf("OnSaveLoaded: %v", err)
	}
	if err := b.OnDayStart(1); err != nil {
		t.Errorf("OnDayStart: %v", err)
	}
	if err := b.OnSeasonStart(28); err != nil {
		t.Errorf("OnSeasonStart: %v", err)
	}
	if err := b.OnYearStart(112); err != nil {
		t.Errorf("OnYearStart: %v", err)
	}
	if err := b.OnSupplyChange("parsnip", -3); err != nil {
		t.Errorf("OnSupplyChange: %v", err)
	}
	if err := b.OnFullReset(); err != nil {
		t.Errorf("OnFullReset: %v", err)
	}
	if err := b.OnSessionEnd(); err != nil {
		t.Errorf("OnSessionEnd: %v", err)
	}
}

func TestMutatingHooksFailOffAuthority(t *testing.T) {
	b := testBoundary(t, false)
	if err := b.OnSaveLoaded(); err != nil {
		t.Fatalf("OnSaveLoaded: %v", err)
	}
	if err := b.OnDayStart(1); err == nil {
		t.Error("OnDayStart succeeded on a replica")
	}
	if err := b.OnFullReset(); err == nil {
		t.Error("OnFullReset succeeded on a replica")
	}
}

func TestFireDiscardsFailure(t *testing.T) {
	b := testBoundary(t, false)
	b.OnSaveLoaded()
	// Must not panic or propagate despite the underlying error.
	b.FireDayStart(1)
	b.FireSeasonStart(28)
	b.FireYearStart(112)
}
