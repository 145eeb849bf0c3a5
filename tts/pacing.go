// Package tts turns a finished text reply into a playable voice
// message: pacing transform, remote synthesis, format adaptation.
package tts

import (
	"regexp"
	"strings"
)

// MaxChars is the character budget of the remote synthesis call.
const MaxChars = 4000

// unsafeChars matches everything outside the word/punctuation set the
// synthesis call renders reliably (emoji and symbol classes are
// rejected or mispronounced).
var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"()-]`)

// addNaturalPauses inserts pause markers at sentence and clause
// boundaries so synthesized speech sounds less monotone.
func addNaturalPauses(text string) string {
	// Breathing pauses at sentence ends.
	text = strings.ReplaceAll(text, ". ", "... ")
	text = strings.ReplaceAll(text, "! ", "... ")
	text = strings.ReplaceAll(text, "? ", "... ")

	// Light pauses after commas.
	text = strings.ReplaceAll(text, ", ", "... ")

	// Filler words get a pause instead of a thinking sound.
	text = strings.ReplaceAll(text, "Nou,", "Nou... ")
	text = strings.ReplaceAll(text, "Kijk,", "Kijk... ")
	text = strings.ReplaceAll(text, "Dus,", "Dus... ")
	text = strings.ReplaceAll(text, "Maar,", "Maar... ")

	// A single subtle thinking sound at the start keeps it human.
	if strings.HasPrefix(text, "Ja ") {
		text = "Uhm... " + text
	} else if strings.HasPrefix(text, "Nou ") {
		text = strings.Replace(text, "Nou ", "Nou... uhm... ", 1)
	}

	// Breathing point before conjunctions.
	text = strings.ReplaceAll(text, " en ", "... en ")

	return text
}

// prepareText scrubs unsafe characters and enforces the character
// budget, marking a truncation with an ellipsis. The budget counts
// runes, never splitting a multibyte letter.
func prepareText(text string, maxChars int) string {
	cleaned := unsafeChars.ReplaceAllString(text, "")
	if runes := []rune(cleaned); len(runes) > maxChars {
		cleaned = string(runes[:maxChars]) + "..."
	}
	return cleaned
}
