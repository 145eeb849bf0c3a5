package agent

import (
	"bytes"
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"saman-voice/convo"
)

const (
	// Reply bounds. Together with the conversation sliding window
	// they cap the cost of every text-generation call.
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// Client calls the remote text-generation and transcription APIs.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient builds an agent client for the given chat model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		api:         openai.NewClient(apiKey),
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

// Reply sends the ordered thread turns and returns one assistant turn.
// Turn roles are already wire-compatible with the chat API.
func (c *Client) Reply(ctx context.Context, turns []convo.Turn) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(t.Role), Content: t.Text})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	log.Printf("🤖 generated reply (%d chars)", len(reply))
	return reply, nil
}

// Transcribe converts raw audio bytes to text. The filename hint lets
// the remote side sniff the container format.
func (c *Client) Transcribe(ctx context.Context, audioBytes []byte, filename string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audioBytes),
		FilePath: filename,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	log.Printf("📝 transcribed %d bytes -> %d chars", len(audioBytes), len(resp.Text))
	return resp.Text, nil
}
