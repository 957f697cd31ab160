package outlook

import (
	"strings"
	"time"

	"newsbox-backend/internal/newsletter/domain"

	"github.com/microsoftgraph/msgraph-sdk-go/models"
)

// normalize converts a Graph message into the canonical candidate form.
// Returns ok=false when the sender address is missing.
func normalize(msg models.Messageable) (domain.CandidateMessage, bool) {
	if msg == nil {
		return domain.CandidateMessage{}, false
	}

	candidate := domain.CandidateMessage{
		ReceivedAt: time.Now(),
		Headers:    make(map[string]string),
	}

	if id := msg.GetId(); id != nil {
		candidate.MessageID = *id
	}
	if subject := msg.GetSubject(); subject != nil {
		candidate.Subject = *subject
	}

	if from := msg.GetFrom(); from != nil {
		if addr := from.GetEmailAddress(); addr != nil {
			if name := addr.GetName(); name != nil {
				candidate.SenderName = *name
			}
			if address := addr.GetAddress(); address != nil {
				candidate.SenderEmail = strings.ToLower(*address)
			}
		}
	}
	if candidate.SenderEmail == "" {
		return domain.CandidateMessage{}, false
	}

	if received := msg.GetReceivedDateTime(); received != nil {
		candidate.ReceivedAt = *received
	}

	for _, h := range msg.GetInternetMessageHeaders() {
		if name := h.GetName(); name != nil {
			if value := h.GetValue(); value != nil {
				candidate.Headers[*name] = *value
			}
		}
	}

	candidate.BodyText, candidate.BodyHTML = extractBodies(msg)
	if candidate.BodyText == "" {
		if preview := msg.GetBodyPreview(); preview != nil {
			candidate.BodyText = *preview
		}
	}

	return candidate, true
}

// extractBodies splits the Graph body into text/HTML variants.
func extractBodies(msg models.Messageable) (text, html string) {
	body := msg.GetBody()
	if body == nil {
		return "", ""
	}

	content := body.GetContent()
	if content == nil || *content == "" {
		return "", ""
	}

	if t := body.GetContentType(); t != nil && *t == models.HTML_BODYTYPE {
		return "", *content
	}
	return *content, ""
}
