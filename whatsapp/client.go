package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Client talks to the WhatsApp Business Cloud API.
type Client struct {
	baseURL       string // e.g. https://graph.facebook.com/v21.0
	phoneNumberID string
	accessToken   string
	http          *http.Client
}

// NewClient builds a client for one business phone number.
func NewClient(apiVersion, phoneNumberID, accessToken string) *Client {
	return &Client{
		baseURL:       "https://graph.facebook.com/" + apiVersion,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		http:          &http.Client{Timeout: 60 * time.Second},
	}
}

// normalizePhone strips formatting; the API wants digits with country
// code and no plus sign.
func normalizePhone(to string) string {
	r := strings.NewReplacer("+", "", " ", "", "-", "")
	return r.Replace(to)
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, detail)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               normalizePhone(to),
		Type:             "text",
		Text:             &textBody{Body: body},
	}
	var resp sendResponse
	if err := c.postJSON(ctx, c.messagesURL(), payload, &resp); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	log.Printf("📤 text message sent to %s", normalizePhone(to))
	return nil
}

// MarkRead flags an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	payload := sendRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	if err := c.postJSON(ctx, c.messagesURL(), payload, nil); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// DownloadMedia resolves a media ID to its URL and fetches the bytes.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("resolve media returned %d: %s", resp.StatusCode, detail)
	}

	var info mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode media info: %w", err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("media %s has no download url", mediaID)
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, err
	}
	dlReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	dlResp, err := c.http.Do(dlReq)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download media returned %d", dlResp.StatusCode)
	}

	data, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	log.Printf("📥 downloaded media %s: %d bytes", mediaID, len(data))
	return data, nil
}

// SendVoice uploads ogg/opus audio and sends it as a voice message.
// The MIME parameter and the voice flag are both required for the
// platform to render a playable voice bubble.
func (c *Client) SendVoice(ctx context.Context, to string, oggBytes []byte) error {
	mediaID, err := c.uploadVoice(ctx, oggBytes)
	if err != nil {
		return fmt.Errorf("send voice: %w", err)
	}

	payload := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               normalizePhone(to),
		Type:             "audio",
		Audio:            &audioBody{ID: mediaID, Voice: true},
	}
	var resp sendResponse
	if err := c.postJSON(ctx, c.messagesURL(), payload, &resp); err != nil {
		return fmt.Errorf("send voice: %w", err)
	}
	log.Printf("📤 voice message sent to %s (media %s)", normalizePhone(to), mediaID)
	return nil
}

func (c *Client) uploadVoice(ctx context.Context, oggBytes []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="voice_message.ogg"`)
	hdr.Set("Content-Type", VoiceMIMEType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(oggBytes); err != nil {
		return "", err
	}
	if err := w.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/media", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("upload returned %d: %s", resp.StatusCode, detail)
	}

	var up mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if up.ID == "" {
		return "", fmt.Errorf("upload response missing media id")
	}
	return up.ID, nil
}
