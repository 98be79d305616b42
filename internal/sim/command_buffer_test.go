package sim

import "testing"

func TestCommandBufferWraparound(t *testing.T) {
	buffer := NewCommandBuffer(3, nil)
	cmds := []Command{
		{Source: "a"},
		{Source: "b"},
		{Source: "c"},
	}
	for _, cmd := range cmds {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed for %+v", cmd)
		}
	}
	if buffer.Push(Command{Source: "overflow"}) {
		t.Fatalf("expected push to fail when buffer full")
	}
	drained := buffer.Drain(nil)
	if len(drained) != len(cmds) {
		t.Fatalf("expected %d commands, got %d", len(cmds), len(drained))
	}
	for i, cmd := range drained {
		if cmd.Source != cmds[i].Source {
			t.Fatalf("expected drain order %v, got %v", cmds[i].Source, cmd.Source)
		}
	}
	// Push again to ensure the indices wrap correctly.
	for _, cmd := range []Command{{Source: "d"}, {Source: "e"}} {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed after drain for %+v", cmd)
		}
	}
	wrapped := buffer.Drain(drained[:0])
	if len(wrapped) != 2 {
		t.Fatalf("expected 2 commands after wraparound, got %d", len(wrapped))
	}
	if wrapped[0].Source != "d" || wrapped[1].Source != "e" {
		t.Fatalf("unexpected order after wraparound: %+v", wrapped)
	}
}

func TestCommandBufferOverflow(t *testing.T) {
	buffer := NewCommandBuffer(1, nil)
	if !buffer.Push(Command{Source: "one"}) {
		t.Fatalf("expected initial push to succeed")
	}
	if buffer.Push(Command{Source: "two"}) {
		t.Fatalf("expected push to fail when capacity exceeded")
	}
	drained := buffer.Drain(nil)
	if len(drained) != 1 || drained[0].Source != "one" {
		t.Fatalf("unexpected drained commands: %+v", drained)
	}
	if buffer.Len() != 0 {
		t.Fatalf("expected empty buffer after drain, got %d", buffer.Len())
	}
}
