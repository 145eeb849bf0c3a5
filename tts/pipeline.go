package tts

import (
	"context"
	"fmt"
	"log"

	"saman-voice/audio"
)

// SynthesisError reports a failed synthesis at any pipeline stage.
// There is no partial-audio fallback.
type SynthesisError struct {
	Stage string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis (%s): %v", e.Stage, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Voice is the remote synthesis capability.
type Voice interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// speechTempo speeds playback up slightly during the final encode;
// synthesized Dutch reads a touch slow at 1.0.
const speechTempo = 1.25

// Pipeline converts a text reply into wire-format voice audio.
type Pipeline struct {
	voice      Voice
	transcoder audio.Transcoder
	maxChars   int
}

// NewPipeline wires the remote voice and the transcoder together.
func NewPipeline(voice Voice, transcoder audio.Transcoder) *Pipeline {
	return &Pipeline{voice: voice, transcoder: transcoder, maxChars: MaxChars}
}

// Synthesize runs the full chain: scrub and bound the text, insert
// pacing, one remote call, then adapt the returned audio to the
// outbound compressed format.
func (p *Pipeline) Synthesize(ctx context.Context, text string) (audio.Buffer, error) {
	prepared := prepareText(text, p.maxChars)
	if len(prepared) < len(text) {
		log.Printf("⚠️ reply text scrubbed/truncated %d -> %d chars", len(text), len(prepared))
	}
	paced := addNaturalPauses(prepared)

	mp3, err := p.voice.Synthesize(ctx, paced)
	if err != nil {
		return audio.Buffer{}, &SynthesisError{Stage: "remote", Err: err}
	}
	if len(mp3) == 0 {
		return audio.Buffer{}, &SynthesisError{Stage: "remote", Err: fmt.Errorf("empty audio returned")}
	}
	log.Printf("🗣️ synthesized %d chars -> %d compressed bytes", len(paced), len(mp3))

	pcm, err := p.transcoder.ToPCM(ctx, audio.Buffer{
		Data:   mp3,
		Format: audio.Format{Encoding: audio.EncodingMP3},
	}, audio.PCM24kMono)
	if err != nil {
		return audio.Buffer{}, &SynthesisError{Stage: "decode", Err: err}
	}

	params := audio.DefaultOpusParams
	params.Tempo = speechTempo
	out, err := p.transcoder.FromPCM(ctx, pcm, audio.OggOpus16k, params)
	if err != nil {
		return audio.Buffer{}, &SynthesisError{Stage: "encode", Err: err}
	}
	return out, nil
}
