package audio

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestToPCMArgs(t *testing.T) {
	args := toPCMArgs(PCM24kMono)
	got := strings.Join(args, " ")
	want := "-i pipe:0 -f s16le -ac 1 -ar 24000 -loglevel error pipe:1"
	if got != want {
		t.Errorf("toPCMArgs = %q, want %q", got, want)
	}
}

func TestFromPCMArgs(t *testing.T) {
	args := fromPCMArgs(PCM24kMono, OggOpus16k, DefaultOpusParams)
	got := strings.Join(args, " ")

	for _, part := range []string{
		"-f s16le -ar 24000 -ac 1 -i pipe:0",
		"-ar 16000",
		"-c:a libopus",
		"-b:a 16k",
		"-vbr on",
		"-compression_level 10",
		"-frame_duration 60",
		"-application voip",
		"-f ogg",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("fromPCMArgs missing %q in %q", part, got)
		}
	}
	if strings.Contains(got, "atempo") {
		t.Errorf("fromPCMArgs applied tempo filter without Tempo set: %q", got)
	}
}

func TestFromPCMArgsTempo(t *testing.T) {
	params := DefaultOpusParams
	params.Tempo = 1.25
	got := strings.Join(fromPCMArgs(PCM24kMono, OggOpus16k, params), " ")
	if !strings.Contains(got, "-af atempo=1.25") {
		t.Errorf("fromPCMArgs missing tempo filter: %q", got)
	}
}

func TestToPCMRejectsCompressedTarget(t *testing.T) {
	f := NewFFmpeg("")
	_, err := f.ToPCM(context.Background(), Buffer{}, OggOpus16k)
	var te *TranscodeError
	if !errors.As(err, &te) {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
	if te.Op != "to_pcm" {
		t.Errorf("Op = %q, want to_pcm", te.Op)
	}
}

func TestFromPCMRejectsCompressedInput(t *testing.T) {
	f := NewFFmpeg("")
	in := Buffer{Data: []byte{1, 2}, Format: OggOpus16k}
	_, err := f.FromPCM(context.Background(), in, OggOpus16k, DefaultOpusParams)
	var te *TranscodeError
	if !errors.As(err, &te) {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
}

func TestTranscodeErrorCarriesDiagnostic(t *testing.T) {
	err := &TranscodeError{Op: "to_pcm", Detail: "pipe:0: Invalid data found", Err: errors.New("exit status 1")}
	msg := err.Error()
	if !strings.Contains(msg, "Invalid data found") {
		t.Errorf("error message missing tool diagnostic: %q", msg)
	}
	if !strings.Contains(msg, "to_pcm") {
		t.Errorf("error message missing op: %q", msg)
	}
}

func TestPCMDuration(t *testing.T) {
	// one second of 24kHz mono 16-bit PCM
	b := Buffer{Data: make([]byte, 48000), Format: PCM24kMono}
	if d := PCMDuration(b); d != 1.0 {
		t.Errorf("PCMDuration = %v, want 1.0", d)
	}
	if d := PCMDuration(Buffer{Data: make([]byte, 100), Format: OggOpus16k}); d != 0 {
		t.Errorf("PCMDuration on compressed buffer = %v, want 0", d)
	}
}
