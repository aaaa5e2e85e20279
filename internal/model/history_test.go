package model

import "testing"

func TestHistoryPushPop(t *testing.T) {
	h := NewHistory(2)
	h.Push(Snapshot{Buffer: "a"})
	h.Push(Snapshot{Buffer: "b"})
	h.Push(Snapshot{Buffer: "c"})
	if h.Len() != 2 || h.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", h.Len(), h.Dropped())
	}
	for _, want := range []string{"c", "b"} {
		s, ok := h.Pop()
		if !ok || s.Buffer != want {
			t.Fatalf("pop = %q %v, want %q", s.Buffer, ok, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Fatalf("pop on empty history")
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(0)
	h.Push(Snapshot{Buffer: "a"})
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("len=%d", h.Len())
	}
	h.Push(Snapshot{Buffer: "b"})
	if s, _ := h.Pop(); s.Buffer != "b" {
		t.Fatalf("got %q", s.Buffer)
	}
}
