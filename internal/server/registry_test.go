package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/setupflow"
)

func TestRegistryPublishesTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.flows.Create()
	ch := f.broker.Subscribe(c.ID())
	defer f.broker.Unsubscribe(c.ID(), ch)

	if err := c.SelectPlayersByID(ctx, f.ids("Ana", "Bruno"), true); err != nil {
		t.Fatalf("SelectPlayersByID: %v", err)
	}

	var ev FlowEvent
	if err := json.Unmarshal(<-ch, &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Type != "transition" || ev.Seq != 1 || ev.From != "player_selection" || ev.Step != "pack_selection" || ev.Status != "active" {
		t.Errorf("event = %+v", ev)
	}

	c.SelectPackByID(ctx, f.small.ID)
	c.ChooseCount(6)
	<-ch
	<-ch
	if err := c.ChooseModes(ctx, hotseat.SelectionRandom, hotseat.VerdictAfterEach); err != nil {
		t.Fatalf("ChooseModes: %v", err)
	}
	if err := json.Unmarshal(<-ch, &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	sess, _ := c.Session()
	if ev.Status != "started" || ev.SessionID != sess.ID || ev.Seq != 4 {
		t.Errorf("start event = %+v, want session %s", ev, sess.ID)
	}

	flowID, ok := f.flows.ReleaseSession(sess.ID)
	if !ok || flowID != c.ID() {
		t.Errorf("ReleaseSession = %q, %v", flowID, ok)
	}
	if _, ok := f.flows.ReleaseSession(sess.ID); ok {
		t.Error("session released twice")
	}
}

func TestRegistryCancelClosesStream(t *testing.T) {
	f := newFixture(t)

	c := f.flows.Create()
	ch := f.broker.Subscribe(c.ID())
	defer f.broker.Unsubscribe(c.ID(), ch)

	if err := f.flows.Cancel(c.ID()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	var ev FlowEvent
	if err := json.Unmarshal(<-ch, &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Status != "aborted" {
		t.Errorf("event = %+v, want aborted", ev)
	}
	if _, ok := <-ch; ok {
		t.Error("stream still open after cancel")
	}
}

func TestRegistrySweepsIdleFlows(t *testing.T) {
	f := newFixture(t)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.flows.now = func() time.Time { return now }

	stale := f.flows.Create()
	now = now.Add(20 * time.Minute)
	fresh := f.flows.Create()
	now = now.Add(15 * time.Minute)

	if n := f.flows.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("swept %d flows, want 1", n)
	}
	if stale.Status() != setupflow.StatusAborted {
		t.Errorf("stale flow status = %s, want aborted", stale.Status())
	}
	if _, err := f.flows.Get(fresh.ID()); err != nil {
		t.Errorf("fresh flow was swept: %v", err)
	}
	if f.flows.Len() != 1 {
		t.Errorf("registry holds %d flows, want 1", f.flows.Len())
	}
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.flows.RunSweeper(ctx, time.Minute, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunSweeper returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunSweeper did not stop")
	}
}
