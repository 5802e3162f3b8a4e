package register

import "testing"

func TestUnionIdempotent(t *testing.T) {
	r := New(
		Action{Kind: Flag, Path: "p", Target: "seen"},
		Action{Kind: Capture, Path: "p", Target: "text"},
	)
	u := Union(r, r)
	if !u.Equals(r) {
		t.Fatalf("R+R should equal R, got %v vs %v", u, r)
	}
}

func TestAppendPreservesFirstOccurrenceOrder(t *testing.T) {
	r := New()
	r.Append(Action{Kind: Flag, Path: "p", Target: "a"})
	r.Append(Action{Kind: Flag, Path: "p", Target: "b"})
	r.Append(Action{Kind: Flag, Path: "p", Target: "a", Payload: "ignored-on-dup"})

	actions := r.Actions()
	if len(actions) != 2 {
		t.Fatalf("expected 2 distinct actions, got %d: %v", len(actions), actions)
	}
	if actions[0].Target != "a" || actions[1].Target != "b" {
		t.Fatalf("expected order [a,b], got %v", actions)
	}
	if actions[0].Payload != "" {
		t.Fatalf("duplicate append must not overwrite the first occurrence's payload")
	}
}

func TestUnionOrderSurvivingThenNewcomer(t *testing.T) {
	a := New(Action{Kind: CreateContext, Path: "p", Target: "X"})
	b := New(
		Action{Kind: TerminalizeContext, Path: "p", Target: ""},
		Action{Kind: CreateContext, Path: "p", Target: "X"},
		Action{Kind: ElevateContext, Path: "p", Target: ""},
	)

	u := Union(a, b)
	kinds := []Kind{}
	for _, act := range u.Actions() {
		kinds = append(kinds, act.Kind)
	}
	want := []Kind{CreateContext, TerminalizeContext, ElevateContext}
	if len(kinds) != len(want) {
		t.Fatalf("got %v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v want %v", kinds, want)
		}
	}
}

func TestEqualsIgnoresPayloadAndField(t *testing.T) {
	a := New(Action{Kind: Set, Path: "p", Target: "x", Payload: "TypeA"})
	b := New(Action{Kind: Set, Path: "p", Target: "x", Payload: "TypeB"})
	if !a.Equals(b) {
		t.Fatalf("registers differing only in payload should be considered equal actions")
	}
}
