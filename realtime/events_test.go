package realtime

import "testing"

func TestParseServerEventErrorDetail(t *testing.T) {
	raw := `{
		"type": "error",
		"error": {"type": "invalid_request_error", "code": "bad_audio", "message": "audio too short"}
	}`
	ev, err := parseServerEvent([]byte(raw))
	if err != nil {
		t.Fatalf("parseServerEvent: %v", err)
	}
	if ev.Type != EventError {
		t.Errorf("Type = %q, want %q", ev.Type, EventError)
	}
	if ev.Error == nil {
		t.Fatal("Error detail not decoded")
	}
	if ev.Error.Code != "bad_audio" || ev.Error.Message != "audio too short" {
		t.Errorf("detail = %+v", ev.Error)
	}
}

func TestParseServerEventDelta(t *testing.T) {
	ev, err := parseServerEvent([]byte(`{"type": "response.audio.delta", "delta": "AAAA"}`))
	if err != nil {
		t.Fatalf("parseServerEvent: %v", err)
	}
	if ev.Type != EventAudioDelta || ev.Delta != "AAAA" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Error != nil {
		t.Errorf("unexpected error detail: %+v", ev.Error)
	}
}
