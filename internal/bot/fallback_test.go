package bot

import "testing"

func TestUnknownTextTouchesNothing(t *testing.T) {
	app := New(1000, nil)

	// No store, no context: a handler that reached out to either would
	// panic, so a nil in and nil out proves stray text is a pure no-op.
	if err := app.UnknownText()(nil); err != nil {
		t.Fatalf("unknown text must be ignored, got %v", err)
	}
	if err := app.UnknownDocument()(nil); err != nil {
		t.Fatalf("unknown document must be ignored, got %v", err)
	}
}
