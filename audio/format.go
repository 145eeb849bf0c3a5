package audio

import "fmt"

// Encoding identifies how the bytes of a Buffer are encoded.
type Encoding string

const (
	EncodingPCM16   Encoding = "s16le"    // raw signed 16-bit little-endian PCM
	EncodingOggOpus Encoding = "ogg/opus" // opus stream in an ogg container
	EncodingMP3     Encoding = "mp3"
)

// Format tags a byte sequence with its audio parameters.
type Format struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %dbit", f.Encoding, f.SampleRate, f.Channels, f.BitDepth)
}

// Buffer is an audio byte sequence plus the format tag describing it.
// Transcoding never mutates a Buffer in place; it returns a new one.
type Buffer struct {
	Data   []byte
	Format Format
}

// Len returns the byte length of the buffer.
func (b Buffer) Len() int { return len(b.Data) }

// Standard formats used across the pipeline.
var (
	// PCM24kMono is what the realtime session speaks on both legs.
	PCM24kMono = Format{Encoding: EncodingPCM16, SampleRate: 24000, Channels: 1, BitDepth: 16}

	// OggOpus16k is the WhatsApp voice-bubble wire format. The 16kHz
	// rate is required by the platform for waveform rendering.
	OggOpus16k = Format{Encoding: EncodingOggOpus, SampleRate: 16000, Channels: 1, BitDepth: 16}
)

// PCMDuration returns the playback duration in seconds of raw PCM data
// in the given format. Returns 0 for non-PCM formats.
func PCMDuration(b Buffer) float64 {
	if b.Format.Encoding != EncodingPCM16 || b.Format.SampleRate == 0 {
		return 0
	}
	bytesPerSec := b.Format.SampleRate * b.Format.Channels * b.Format.BitDepth / 8
	return float64(len(b.Data)) / float64(bytesPerSec)
}
