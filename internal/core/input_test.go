package core

import "testing"

func TestInputFrameClone(t *testing.T) {
	f := NewInputFrame()
	f.Set(ActionUp)

	c := f.Clone()
	c.Set(ActionQuit)
	f.Clear()

	if !c.Has(ActionUp) || !c.Has(ActionQuit) {
		t.Errorf("clone lost actions: %v", c.Actions)
	}
	if f.Has(ActionQuit) {
		t.Error("setting on the clone leaked into the original")
	}
}

func TestZeroInputFrame(t *testing.T) {
	var f InputFrame
	if f.Has(ActionReload) {
		t.Error("zero frame should have no actions")
	}
	f.Set(ActionReload)
	if !f.Has(ActionReload) {
		t.Error("Set on a zero frame should allocate")
	}
	if c := (InputFrame{}).Clone(); c.Actions == nil {
		t.Error("clone of a zero frame should be usable")
	}
}
