package domain

import (
	"errors"
	"testing"
	"time"
)

func TestReachable_CarriesCounts(t *testing.T) {
	o := Reachable(Players{Online: 3, Max: 20}, 12*time.Millisecond)
	if !o.Reachable || o.Players.Online != 3 || o.Players.Max != 20 {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	if o.Reason() != "" {
		t.Fatalf("reachable outcome should have no reason, got %q", o.Reason())
	}
	if o.Kind != KindNone {
		t.Fatalf("want no kind, got %q", o.Kind)
	}
}

func TestUnreachable_Reason(t *testing.T) {
	o := Unreachable(KindRefused, errors.New("connection refused"))
	if o.Reachable {
		t.Fatalf("want unreachable, got %+v", o)
	}
	if o.Reason() != "connection refused" {
		t.Fatalf("unexpected reason %q", o.Reason())
	}
	if o.Players != (Players{}) {
		t.Fatalf("unreachable outcome should not carry counts: %+v", o.Players)
	}
}

func TestUnreachable_NilErr(t *testing.T) {
	if got := Unreachable(KindTimeout, nil).Reason(); got != "" {
		t.Fatalf("want empty reason, got %q", got)
	}
}
