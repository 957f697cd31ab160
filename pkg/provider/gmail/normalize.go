package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"newsbox-backend/internal/newsletter/domain"

	"google.golang.org/api/gmail/v1"
)

// normalize converts a Gmail message into the canonical candidate form.
// Returns ok=false when no sender address can be determined; such messages
// are dropped from the candidate set rather than failing the sync.
func normalize(msg *gmail.Message) (domain.CandidateMessage, bool) {
	if msg == nil || msg.Payload == nil {
		return domain.CandidateMessage{}, false
	}

	headers := make(map[string]string, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		headers[h.Name] = h.Value
	}

	name, address := parseSender(headers["From"])
	if address == "" {
		return domain.CandidateMessage{}, false
	}

	received := time.Now()
	if msg.InternalDate > 0 {
		received = time.UnixMilli(msg.InternalDate)
	}

	text, html := extractBodies(msg.Payload)

	return domain.CandidateMessage{
		MessageID:   msg.Id,
		SenderName:  name,
		SenderEmail: strings.ToLower(address),
		Subject:     headers["Subject"],
		BodyText:    text,
		BodyHTML:    html,
		ReceivedAt:  received,
		Headers:     headers,
	}, true
}

// parseSender extracts the display name and primary address from a From
// header. A multi-address From keeps only the first entry.
func parseSender(from string) (name, address string) {
	if from == "" {
		return "", ""
	}

	if list, err := mail.ParseAddressList(from); err == nil && len(list) > 0 {
		return list[0].Name, list[0].Address
	}

	// Fall back to manual "Name <addr>" splitting for malformed headers.
	if idx := strings.Index(from, "<"); idx >= 0 {
		name = strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		address = strings.TrimSpace(strings.Trim(from[idx:], "<>"))
		return name, address
	}

	if strings.Contains(from, "@") {
		return "", strings.TrimSpace(from)
	}
	return "", ""
}

// decodeBody decodes Gmail body data, which the API usually emits as
// unpadded base64url but may carry padding.
func decodeBody(data string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(data)
}

// extractBodies walks the MIME tree and returns the plain-text and HTML
// parts where present.
func extractBodies(payload *gmail.MessagePart) (text, html string) {
	if payload == nil {
		return "", ""
	}

	// The payload itself may be the body for single-part messages.
	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := decodeBody(payload.Body.Data); err == nil {
			if payload.MimeType == "text/html" {
				return "", string(data)
			}
			return string(data), ""
		}
	}

	var walk func(parts []*gmail.MessagePart)
	walk = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := decodeBody(part.Body.Data)
				if err == nil {
					switch part.MimeType {
					case "text/html":
						if html == "" {
							html = string(data)
						}
					case "text/plain":
						if text == "" {
							text = string(data)
						}
					}
				}
			}
			if len(part.Parts) > 0 {
				walk(part.Parts)
			}
		}
	}
	walk(payload.Parts)

	return text, html
}
