package agent

import (
	"strings"
	"testing"
)

func TestInstructionsAppendsTonePreset(t *testing.T) {
	got := Instructions("persona text", ToneFormal)
	if !strings.HasPrefix(got, "persona text") {
		t.Errorf("persona not leading: %q", got)
	}
	if !strings.Contains(got, "TOON:") {
		t.Errorf("tone section missing: %q", got)
	}
	if got == Instructions("persona text", ToneWarm) {
		t.Error("different tones produced identical instructions")
	}
}

func TestInstructionsUnknownToneFallsBack(t *testing.T) {
	if got := Instructions("p", "angry"); got != "p" {
		t.Errorf("unknown tone should yield bare persona, got %q", got)
	}
}

func TestInstructionsDefaultPersona(t *testing.T) {
	got := Instructions("", ToneWarm)
	if !strings.Contains(got, "Saman") {
		t.Errorf("default persona not applied: %q", got[:40])
	}
}
