package domain

import "time"

// Confidence is the classifier tier assigned to a candidate message. It
// orders preview output only; admission is decided by the whitelist.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank maps the tier to a sortable integer (higher surfaces first).
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// CandidateMessage is the provider-agnostic view of one external message.
// It is never persisted; it is the unit passed normalizer -> classifier ->
// whitelist gate.
type CandidateMessage struct {
	MessageID   string            `json:"message_id"`
	SenderName  string            `json:"sender_name"`
	SenderEmail string            `json:"sender_email"`
	Subject     string            `json:"subject"`
	BodyText    string            `json:"body_text"`
	BodyHTML    string            `json:"body_html"`
	ReceivedAt  time.Time         `json:"received_at"`
	Headers     map[string]string `json:"headers,omitempty"`

	// Classifier output
	Confidence Confidence `json:"confidence"`
	Score      float64    `json:"score"`
}

// HasBody reports whether either body variant was already fetched.
func (m *CandidateMessage) HasBody() bool {
	return m.BodyText != "" || m.BodyHTML != ""
}
