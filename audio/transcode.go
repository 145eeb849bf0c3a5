package audio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
)

// OpusParams are the encoder knobs for the compressed outbound leg.
// The defaults match what the target messaging platform expects for
// voice bubbles.
type OpusParams struct {
	Bitrate       string  // e.g. "16k"
	FrameDuration int     // frame size in ms
	Application   string  // "voip" optimizes for speech
	Tempo         float64 // playback speed filter applied during encode, 0 = none
}

// DefaultOpusParams is the voice-message encoding profile.
var DefaultOpusParams = OpusParams{
	Bitrate:       "16k",
	FrameDuration: 60,
	Application:   "voip",
}

// Transcoder converts between compressed audio and raw linear PCM.
// Both operations are synchronous and stateless.
type Transcoder interface {
	// ToPCM decodes compressed audio (ogg/opus, mp3, ...) to raw PCM
	// in the target format.
	ToPCM(ctx context.Context, in Buffer, target Format) (Buffer, error)

	// FromPCM encodes raw PCM to the compressed target format using
	// the given codec parameters.
	FromPCM(ctx context.Context, in Buffer, target Format, params OpusParams) (Buffer, error)
}

// TranscodeError reports a failed conversion with the external tool's
// diagnostic output.
type TranscodeError struct {
	Op     string // "to_pcm" or "from_pcm"
	Detail string // stderr of the encoder process
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("transcode %s: %v: %s", e.Op, e.Err, e.Detail)
	}
	return fmt.Sprintf("transcode %s: %v", e.Op, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// FFmpeg is the production Transcoder. It spawns one ffmpeg process
// per call and pipes audio through stdin/stdout; no temp files are
// written, so a failed call leaves nothing behind.
type FFmpeg struct {
	Bin string
}

// NewFFmpeg returns a Transcoder shelling out to the given binary
// ("ffmpeg" if empty).
func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{Bin: bin}
}

func (f *FFmpeg) ToPCM(ctx context.Context, in Buffer, target Format) (Buffer, error) {
	if target.Encoding != EncodingPCM16 {
		return Buffer{}, &TranscodeError{Op: "to_pcm", Err: fmt.Errorf("target must be %s, got %s", EncodingPCM16, target.Encoding)}
	}
	out, err := f.run(ctx, "to_pcm", in.Data, toPCMArgs(target))
	if err != nil {
		return Buffer{}, err
	}
	log.Printf("🔄 transcoded %d compressed bytes -> %d PCM bytes", len(in.Data), len(out))
	return Buffer{Data: out, Format: target}, nil
}

func (f *FFmpeg) FromPCM(ctx context.Context, in Buffer, target Format, params OpusParams) (Buffer, error) {
	if in.Format.Encoding != EncodingPCM16 {
		return Buffer{}, &TranscodeError{Op: "from_pcm", Err: fmt.Errorf("input must be %s, got %s", EncodingPCM16, in.Format.Encoding)}
	}
	out, err := f.run(ctx, "from_pcm", in.Data, fromPCMArgs(in.Format, target, params))
	if err != nil {
		return Buffer{}, err
	}
	log.Printf("🔄 transcoded %d PCM bytes -> %d %s bytes", len(in.Data), len(out), target.Encoding)
	return Buffer{Data: out, Format: target}, nil
}

func (f *FFmpeg) run(ctx context.Context, op string, input []byte, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, f.Bin, args...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &TranscodeError{Op: op, Detail: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// toPCMArgs builds the decode argv. Input format is sniffed from the
// container; output is raw s16le on stdout.
func toPCMArgs(target Format) []string {
	return []string{
		"-i", "pipe:0",
		"-f", "s16le",
		"-ac", strconv.Itoa(target.Channels),
		"-ar", strconv.Itoa(target.SampleRate),
		"-loglevel", "error",
		"pipe:1",
	}
}

// fromPCMArgs builds the encode argv. Raw PCM comes in on stdin, so
// its format must be declared explicitly before -i.
func fromPCMArgs(src, target Format, params OpusParams) []string {
	args := []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(src.SampleRate),
		"-ac", strconv.Itoa(src.Channels),
		"-i", "pipe:0",
	}
	if params.Tempo > 0 {
		args = append(args, "-af", fmt.Sprintf("atempo=%g", params.Tempo))
	}
	args = append(args,
		"-ar", strconv.Itoa(target.SampleRate),
		"-c:a", "libopus",
		"-b:a", params.Bitrate,
		"-vbr", "on",
		"-compression_level", "10",
		"-frame_duration", strconv.Itoa(params.FrameDuration),
		"-application", params.Application,
		"-f", "ogg",
		"-loglevel", "error",
		"pipe:1",
	)
	return args
}
