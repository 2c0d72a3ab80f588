package relay

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ValidationError rejects a malformed inbound request. It is surfaced to the
// client as HTTP 400 and never forwarded.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// stripMarks decomposes to NFD and removes combining diacritical marks,
// so "São" becomes "Sao".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// AgentKey converts a human-readable agent name into the stable machine key
// used on the wire: diacritics stripped, lowercased, punctuation removed,
// whitespace runs collapsed to single hyphens.
//
//	AgentKey("Agente Comercial (SDR)") == "agente-comercial-sdr"
//	AgentKey("São Paulo!!")            == "sao-paulo"
//
// The function is pure and idempotent: hyphens survive re-normalization.
func AgentKey(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	key := strings.ToLower(folded)
	key = nonKeyChars.ReplaceAllString(key, "")
	key = spaceRuns.ReplaceAllString(strings.TrimSpace(key), "-")
	return key
}

// Normalize validates a raw client request and shapes it into the canonical
// payload forwarded to the webhook. Audio bodies longer than maxAudioBase64
// bytes are truncated to the cap rather than rejected; a lossy but deliberate
// policy to avoid transport failures on oversized recordings.
func Normalize(req InboundRequest, maxAudioBase64 int) (OutboundMessage, error) {
	if strings.TrimSpace(req.Agent) == "" {
		return OutboundMessage{}, &ValidationError{Field: "agent", Reason: "required"}
	}
	if req.Message == "" {
		return OutboundMessage{}, &ValidationError{Field: "message", Reason: "required"}
	}
	if req.TypeMessage == "" {
		return OutboundMessage{}, &ValidationError{Field: "typeMessage", Reason: "required"}
	}
	if req.TypeMessage != KindText && req.TypeMessage != KindAudio {
		return OutboundMessage{}, &ValidationError{
			Field:  "typeMessage",
			Reason: fmt.Sprintf("unrecognized kind %q, must be %q or %q", req.TypeMessage, KindText, KindAudio),
		}
	}

	body := req.Message
	if req.TypeMessage == KindAudio && maxAudioBase64 > 0 && len(body) > maxAudioBase64 {
		body = body[:maxAudioBase64]
	}

	return OutboundMessage{
		Agent:       AgentKey(req.Agent),
		Message:     body,
		TypeMessage: req.TypeMessage,
	}, nil
}
