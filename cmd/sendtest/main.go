package main

import (
	"context"
	"flag"
	"log"
	"time"

	"saman-voice/config"
	"saman-voice/whatsapp"
)

// Sends one test text message through the WhatsApp Cloud API, so the
// credentials and recipient can be checked without running the bot.
func main() {
	to := flag.String("to", "", "recipient phone number (defaults to first ALLOWED_PHONES entry)")
	body := flag.String("text", "Test message from saman-voice.", "message body")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	recipient := *to
	if recipient == "" {
		if len(cfg.AllowedPhones) == 0 {
			log.Fatal("no recipient: pass -to or set ALLOWED_PHONES")
		}
		recipient = cfg.AllowedPhones[0]
	}

	client := whatsapp.NewClient(cfg.WhatsAppAPIVersion, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppAccessToken)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.SendText(ctx, recipient, *body); err != nil {
		log.Fatalf("Failed to send text: %v", err)
	}
	log.Printf("✅ Sent text to %s", recipient)
}
