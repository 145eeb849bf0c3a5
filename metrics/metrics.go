// Package metrics exposes Prometheus counters for the exchange
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesReceived counts inbound webhook messages by type.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saman_messages_received_total",
		Help: "Inbound messages by type (text, audio, other).",
	}, []string{"type"})

	// Exchanges counts completed voice/text exchanges by result.
	Exchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saman_exchanges_total",
		Help: "Exchanges by result (ok, error, rejected).",
	}, []string{"result"})

	// TranscodeFailures counts external encoder failures.
	TranscodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saman_transcode_failures_total",
		Help: "Failed ffmpeg transcode invocations.",
	})

	// SynthesisCalls counts remote TTS calls by result.
	SynthesisCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saman_synthesis_calls_total",
		Help: "Remote speech synthesis calls by result (ok, error).",
	}, []string{"result"})
)
