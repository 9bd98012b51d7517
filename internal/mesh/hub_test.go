package mesh

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHubAndClientEndToEnd(t *testing.T) {
	authority := NewPeer(testEngine(t), newMemStore(), true)
	hub := NewHub(authority)
	if err := authority.Start(); err != nil {
		t.Fatalf("authority Start: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	replica := NewPeer(testEngine(t), nil, false)
	if err := replica.Start(); err != nil {
		t.Fatalf("replica Start: %v", err)
	}
	client := NewClient(replica, url)
	go client.Run()
	defer client.Close()

	// The client requests a snapshot on connect and becomes a replica.
	waitFor(t, "replica sync", func() bool { return replica.State() == StateReplica })
	if replica.Version() != authority.Version() {
		t.Errorf("replica version = %d, authority %d", replica.Version(), authority.Version())
	}

	// An authority-side supply change converges via an incremental delta.
	if err := authority.SupplyChange("parsnip", 10); err != nil {
		t.Fatalf("SupplyChange: %v", err)
	}
	want, _ := authority.Lookup("parsnip")
	waitFor(t, "delta convergence", func() bool {
		rec, ok := replica.Lookup("parsnip")
		return ok && rec.Supply == want.Supply
	})

	// A day transition converges via a full snapshot.
	if err := authority.DayTransition(authority.Day() + 1); err != nil {
		t.Fatalf("DayTransition: %v", err)
	}
	waitFor(t, "snapshot convergence", func() bool {
		return replica.Version() == authority.Version() && replica.Day() == authority.Day()
	})
}
