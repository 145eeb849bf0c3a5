package realtime

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/gorilla/websocket"

	"saman-voice/audio"
)

// Exchange states, in order. One exchange is a single pass through
// them; there is no reconnect path.
type state int

const (
	stateConnecting state = iota
	stateConfiguring
	stateUploading
	stateListening
	stateAssembling
	stateClosing
)

func (s state) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConfiguring:
		return "configuring"
	case stateUploading:
		return "uploading"
	case stateListening:
		return "listening"
	case stateAssembling:
		return "assembling"
	default:
		return "closing"
	}
}

// Exchange runs one complete voice turn: transcode the inbound
// compressed audio to PCM, stream it up, wait for the server-side VAD
// to produce a reply, and return the reply as compressed audio.
// Synchronous from the caller's perspective; all-or-nothing.
func (c *Client) Exchange(ctx context.Context, in audio.Buffer, instructions string) (audio.Buffer, error) {
	pcm, err := c.transcoder.ToPCM(ctx, in, audio.PCM24kMono)
	if err != nil {
		return audio.Buffer{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.connect(ctx)
	if err != nil {
		return audio.Buffer{}, err
	}
	// The channel must be closed on every exit path.
	defer conn.Close()

	// Unblock a pending read when the deadline fires.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	if err := c.configure(conn, instructions); err != nil {
		return audio.Buffer{}, err
	}
	if err := c.upload(conn, pcm.Data); err != nil {
		return audio.Buffer{}, err
	}

	out := newAssembly(c.maxBytes)
	if err := c.listen(ctx, conn, out); err != nil {
		return audio.Buffer{}, err
	}

	if out.size() == 0 {
		// A silent reply is never valid.
		return audio.Buffer{}, &EmptyResponseError{}
	}
	log.Printf("🔊 assembled %d response bytes (%.1fs)", out.size(),
		audio.PCMDuration(audio.Buffer{Data: out.bytes(), Format: audio.PCM24kMono}))

	reply := audio.Buffer{Data: out.bytes(), Format: audio.PCM24kMono}
	return c.transcoder.FromPCM(ctx, reply, audio.OggOpus16k, audio.DefaultOpusParams)
}

func (c *Client) send(conn Conn, ev clientEvent) error {
	data, err := ev.marshal()
	if err != nil {
		return &TransportError{Stage: "send", Err: err}
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return &TransportError{Stage: "send", Err: err}
	}
	return nil
}

// configure negotiates the session: both modalities, the voice
// identity, instructions, and server-driven turn detection.
func (c *Client) configure(conn Conn, instructions string) error {
	cfg := NewSessionConfig(c.voice, instructions)
	if err := c.send(conn, newSessionUpdateEvent(cfg)); err != nil {
		return err
	}
	log.Printf("📤 [%s] session configured (server_vad)", stateConfiguring)
	return nil
}

// upload base64-encodes the PCM and emits bounded append events. No
// commit follows: in server-VAD mode the remote side decides when the
// turn ended.
func (c *Client) upload(conn Conn, pcm []byte) error {
	encoded := base64.StdEncoding.EncodeToString(pcm)
	chunks := chunkString(encoded, c.chunkSize)
	for _, chunk := range chunks {
		if err := c.send(conn, newAppendEvent(chunk)); err != nil {
			return err
		}
	}
	log.Printf("📤 [%s] sent %d bytes PCM in %d append events", stateUploading, len(pcm), len(chunks))
	return nil
}

// listen consumes events in arrival order until the terminal set
// {response.done, error} is reached. audio.done alone does not end the
// exchange: a trailing audio.delta can still arrive before
// response.done.
func (c *Client) listen(ctx context.Context, conn Conn, out *assembly) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return &TransportError{Stage: "receive", Err: ctx.Err()}
			}
			return &TransportError{Stage: "receive", Err: err}
		}

		ev, err := parseServerEvent(data)
		if err != nil {
			// Unparseable payloads are skipped, not fatal.
			log.Printf("⚠️ [%s] skipping unparseable event: %v", stateListening, err)
			continue
		}

		switch ev.Type {
		case EventAudioDelta:
			chunk, err := base64.StdEncoding.DecodeString(ev.Delta)
			if err != nil {
				log.Printf("⚠️ [%s] bad audio delta payload: %v", stateListening, err)
				continue
			}
			if err := out.append(chunk); err != nil {
				return &TransportError{Stage: "receive", Err: err}
			}

		case EventAudioDone:
			// Not terminal: wait for response.done.
			log.Printf("📥 [%s] audio stream complete", stateListening)

		case EventResponseDone:
			log.Printf("📥 [%s] response done", stateListening)
			return nil

		case EventError:
			perr := &RemoteProtocolError{}
			if ev.Error != nil {
				perr.Code = ev.Error.Code
				perr.Message = ev.Error.Message
			}
			return perr

		case EventTranscriptDelta:
			log.Printf("📝 [%s] transcript: %s", stateListening, ev.Delta)

		case EventSessionCreated, EventSessionUpdated, EventBufferCommitted,
			EventItemCreated, EventResponseCreated, EventOutputItemAdded,
			EventContentPartAdded:
			log.Printf("📥 [%s] %s", stateListening, ev.Type)

		default:
			log.Printf("📥 [%s] ignoring event %q", stateListening, ev.Type)
		}
	}
}

// chunkString splits s into pieces of at most n characters.
func chunkString(s string, n int) []string {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(s)+n-1)/n)
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return append(chunks, s)
}
