package realtime

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"saman-voice/audio"
)

// passthroughTranscoder tags bytes with the target format without
// touching them, standing in for the external encoder.
type passthroughTranscoder struct {
	toPCMErr   error
	fromPCMErr error
}

func (p *passthroughTranscoder) ToPCM(ctx context.Context, in audio.Buffer, target audio.Format) (audio.Buffer, error) {
	if p.toPCMErr != nil {
		return audio.Buffer{}, p.toPCMErr
	}
	return audio.Buffer{Data: in.Data, Format: target}, nil
}

func (p *passthroughTranscoder) FromPCM(ctx context.Context, in audio.Buffer, target audio.Format, params audio.OpusParams) (audio.Buffer, error) {
	if p.fromPCMErr != nil {
		return audio.Buffer{}, p.fromPCMErr
	}
	return audio.Buffer{Data: in.Data, Format: target}, nil
}

// scriptedConn feeds a fixed event sequence to the listen loop and
// records everything written.
type scriptedConn struct {
	script  [][]byte
	idx     int
	writes  [][]byte
	readErr error
	closed  bool
}

func (c *scriptedConn) WriteMessage(messageType int, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	return nil
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if c.idx < len(c.script) {
		msg := c.script[c.idx]
		c.idx++
		return 1, msg, nil
	}
	if c.readErr != nil {
		return 0, nil, c.readErr
	}
	return 0, nil, io.EOF
}

func (c *scriptedConn) Close() error {
	c.closed = true
	return nil
}

type fakeDialer struct {
	conn *scriptedConn
	err  error
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func audioDelta(payload string) []byte {
	return []byte(fmt.Sprintf(`{"type":"response.audio.delta","delta":"%s"}`,
		base64.StdEncoding.EncodeToString([]byte(payload))))
}

func event(typ string) []byte {
	return []byte(fmt.Sprintf(`{"type":"%s"}`, typ))
}

func newTestClient(conn *scriptedConn, opts ...Option) *Client {
	opts = append([]Option{WithDialer(&fakeDialer{conn: conn})}, opts...)
	return NewClient("test-key", "wss://example.test/v1/realtime?model=m", "alloy",
		&passthroughTranscoder{}, opts...)
}

func TestExchangeAssemblesDeltasInArrivalOrder(t *testing.T) {
	conn := &scriptedConn{script: [][]byte{
		event(EventSessionCreated),
		event(EventSessionUpdated),
		event(EventResponseCreated),
		audioDelta("abc"),
		audioDelta("def"),
		event(EventAudioDone),
		// a trailing delta between audio.done and response.done must
		// still be collected
		audioDelta("ghi"),
		event(EventResponseDone),
	}}

	out, err := newTestClient(conn).Exchange(context.Background(),
		audio.Buffer{Data: []byte("opus-in"), Format: audio.OggOpus16k}, "persona")
	if err != nil {
		t.Fatal(err)
	}
	if string(out.Data) != "abcdefghi" {
		t.Errorf("assembled audio = %q, want abcdefghi", out.Data)
	}
	if out.Format != audio.OggOpus16k {
		t.Errorf("output format = %v, want %v", out.Format, audio.OggOpus16k)
	}
	if !conn.closed {
		t.Error("channel not closed after successful exchange")
	}
}

func TestExchangeConfiguresSessionFirst(t *testing.T) {
	conn := &scriptedConn{script: [][]byte{
		audioDelta("x"),
		event(EventResponseDone),
	}}
	if _, err := newTestClient(conn).Exchange(context.Background(),
		audio.Buffer{Data: []byte("in"), Format: audio.OggOpus16k}, "persona"); err != nil {
		t.Fatal(err)
	}

	if len(conn.writes) == 0 {
		t.Fatal("nothing written")
	}
	first := string(conn.writes[0])
	for _, want := range []string{
		`"type":"session.update"`,
		`"modalities":["audio","text"]`,
		`"voice":"alloy"`,
		`"instructions":"persona"`,
		`"turn_detection":{"type":"server_vad"}`,
		`"input_audio_format":"pcm16"`,
	} {
		if !strings.Contains(first, want) {
			t.Errorf("session.update missing %s: %s", want, first)
		}
	}
	// server VAD decides the turn end; no commit event is ever sent
	for _, w := range conn.writes {
		if strings.Contains(string(w), "commit") {
			t.Errorf("unexpected commit event: %s", w)
		}
	}
}

func TestExchangeChunksUpload(t *testing.T) {
	pcm := make([]byte, 100)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	encodedLen := base64.StdEncoding.EncodedLen(len(pcm))
	chunkSize := 25
	wantChunks := (encodedLen + chunkSize - 1) / chunkSize

	conn := &scriptedConn{script: [][]byte{audioDelta("x"), event(EventResponseDone)}}
	_, err := newTestClient(conn, WithChunkSize(chunkSize)).Exchange(context.Background(),
		audio.Buffer{Data: pcm, Format: audio.OggOpus16k}, "")
	if err != nil {
		t.Fatal(err)
	}

	var appends []string
	for _, w := range conn.writes[1:] { // writes[0] is session.update
		s := string(w)
		if !strings.Contains(s, `"type":"input_audio_buffer.append"`) {
			t.Fatalf("unexpected event after session.update: %s", s)
		}
		start := strings.Index(s, `"audio":"`) + len(`"audio":"`)
		end := strings.Index(s[start:], `"`)
		appends = append(appends, s[start:start+end])
	}

	if len(appends) != wantChunks {
		t.Fatalf("got %d append events, want %d", len(appends), wantChunks)
	}
	for i, a := range appends {
		if len(a) > chunkSize {
			t.Errorf("chunk %d length %d exceeds bound %d", i, len(a), chunkSize)
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.Join(appends, ""))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(pcm) {
		t.Error("concatenated chunks do not round-trip to the original PCM")
	}
}

func TestExchangeEmptyResponse(t *testing.T) {
	conn := &scriptedConn{script: [][]byte{
		event(EventResponseCreated),
		event(EventAudioDone),
		event(EventResponseDone),
	}}
	_, err := newTestClient(conn).Exchange(context.Background(),
		audio.Buffer{Data: []byte("in"), Format: audio.OggOpus16k}, "")

	var empty *EmptyResponseError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyResponseError, got %v", err)
	}
	if !conn.closed {
		t.Error("channel leaked after empty response")
	}
}

func TestExchangeRemoteErrorEvent(t *testing.T) {
	conn := &scriptedConn{script: [][]byte{
		audioDelta("partial"),
		[]byte(`{"type":"error","error":{"type":"invalid_request_error","code":"bad_audio","message":"audio malformed"}}`),
		// must never be reached
		event(EventResponseDone),
	}}
	_, err := newTestClient(conn).Exchange(context.Background(),
		audio.Buffer{Data: []byte("in"), Format: audio.OggOpus16k}, "")

	var perr *RemoteProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected RemoteProtocolError, got %v", err)
	}
	if perr.Code != "bad_audio" || perr.Message != "audio malformed" {
		t.Errorf("diagnostic not propagated: %+v", perr)
	}
	if !conn.closed {
		t.Error("channel leaked after protocol error")
	}
}

func TestExchangeSkipsUnparseableEvents(t *testing.T) {
	conn := &scriptedConn{script: [][]byte{
		[]byte(`{not json`),
		audioDelta("ok"),
		event(EventResponseDone),
	}}
	out, err := newTestClient(conn).Exchange(context.Background(),
		audio.Buffer{Data: []byte("in"), Format: audio.OggOpus16k}, "")
	if err != nil {
		t.Fatal(err)
	}
	if string(out.Data) != "ok" {
		t.Errorf("assembled audio = %q, want ok", out.Data)
	}
}

func TestExchangeTransportErrorMidStream(t *testing.T) {
	conn := &scriptedConn{
		script:  [][]byte{audioDelta("partial")},
		readErr: errors.New("connection reset"),
	}
	_, err := newTestClient(conn).Exchange(context.Background(),
		audio.Buffer{Data: []byte("in"), Format: audio.OggOpus16k}, "")

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Stage != "receive" {
		t.Errorf("Stage = %q, want receive", terr.Stage)
	}
	if !conn.closed {
		t.Error("channel leaked after transport error")
	}
}

func TestExchangeConnectRefused(t *testing.T) {
	c := NewClient("k", "wss://example.test", "alloy", &passthroughTranscoder{},
		WithDialer(&fakeDialer{err: errors.New("connection refused")}))
	_, err := c.Exchange(context.Background(),
		audio.Buffer{Data: []byte("in"), Format: audio.OggOpus16k}, "")

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Stage != "connect" {
		t.Errorf("Stage = %q, want connect", terr.Stage)
	}
}

func TestChunkString(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want []string
	}{
		{"abcdef", 2, []string{"ab", "cd", "ef"}},
		{"abcde", 2, []string{"ab", "cd", "e"}},
		{"ab", 8, []string{"ab"}},
		{"", 4, nil},
	}
	for _, tc := range cases {
		got := chunkString(tc.in, tc.n)
		if len(got) != len(tc.want) {
			t.Errorf("chunkString(%q,%d) = %v, want %v", tc.in, tc.n, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("chunkString(%q,%d)[%d] = %q, want %q", tc.in, tc.n, i, got[i], tc.want[i])
			}
		}
	}
}
