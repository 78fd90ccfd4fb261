package main

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

func TestFieldEntryForwardsEscape(t *testing.T) {
	test.NewTempApp(t)

	escapes := 0
	entry := newFieldEntry(func() { escapes++ })
	test.Type(entry, "12")

	entry.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	if escapes != 1 {
		t.Fatalf("escape callback ran %d times, want 1", escapes)
	}
	if entry.Text != "12" {
		t.Fatalf("Text = %q after Escape, want %q", entry.Text, "12")
	}

	entry.TypedKey(&fyne.KeyEvent{Name: fyne.KeyBackspace})
	if escapes != 1 || entry.Text != "1" {
		t.Fatalf("Backspace not handled by the entry: escapes=%d text=%q", escapes, entry.Text)
	}
}
