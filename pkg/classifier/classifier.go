// Package classifier scores candidate messages for newsletter likelihood.
// Scoring is purely additive over independent signals, so a message with
// more newsletter signals never ranks below one with fewer.
package classifier

import (
	"strings"

	"newsbox-backend/internal/newsletter/domain"
)

// Signal names recorded on the result for per-heuristic testing.
const (
	SignalListUnsubscribe = "list-unsubscribe"
	SignalListID          = "list-id"
	SignalPrecedenceBulk  = "precedence-bulk"
	SignalSenderPattern   = "sender-pattern"
	SignalSubjectKeyword  = "subject-keyword"
	SignalHTMLHeavy       = "html-heavy"
	SignalTrackingPixel   = "tracking-pixel"
)

// Signal weights. The rubric is versioned by changing these constants; the
// tier thresholds below stay fixed.
const (
	weightListUnsubscribe = 0.40
	weightListID          = 0.30
	weightPrecedenceBulk  = 0.25
	weightSenderPattern   = 0.20
	weightSubjectKeyword  = 0.15
	weightHTMLHeavy       = 0.10
	weightTrackingPixel   = 0.10
)

// Tier thresholds over the summed score.
const (
	thresholdHigh   = 0.50
	thresholdMedium = 0.25
)

// Result is the classifier output for one candidate.
type Result struct {
	Confidence domain.Confidence
	Score      float64
	Signals    []string
}

var senderPatterns = []string{
	"newsletter", "noreply", "no-reply", "donotreply", "do-not-reply",
	"digest", "news@", "updates@", "weekly@", "hello@", "notifications@",
}

var subjectKeywords = []string{
	"newsletter", "digest", "weekly", "monthly", "edition", "issue #",
	"unsubscribe", "roundup", "what's new",
}

var trackingMarkers = []string{
	`width="1"`, `height="1"`, "open.gif", "track/open", "pixel.gif",
	"/o.gif", "email_open",
}

// Classify scores a candidate message and assigns its confidence tier.
func Classify(msg *domain.CandidateMessage) Result {
	var score float64
	var signals []string

	if headerPresent(msg.Headers, "List-Unsubscribe") || headerPresent(msg.Headers, "List-Unsubscribe-Post") {
		score += weightListUnsubscribe
		signals = append(signals, SignalListUnsubscribe)
	}

	if headerPresent(msg.Headers, "List-Id") {
		score += weightListID
		signals = append(signals, SignalListID)
	}

	switch strings.ToLower(headerValue(msg.Headers, "Precedence")) {
	case "bulk", "list":
		score += weightPrecedenceBulk
		signals = append(signals, SignalPrecedenceBulk)
	}

	sender := strings.ToLower(msg.SenderEmail)
	for _, pattern := range senderPatterns {
		if strings.Contains(sender, pattern) {
			score += weightSenderPattern
			signals = append(signals, SignalSenderPattern)
			break
		}
	}

	subject := strings.ToLower(msg.Subject)
	for _, keyword := range subjectKeywords {
		if strings.Contains(subject, keyword) {
			score += weightSubjectKeyword
			signals = append(signals, SignalSubjectKeyword)
			break
		}
	}

	if htmlHeavy(msg.BodyText, msg.BodyHTML) {
		score += weightHTMLHeavy
		signals = append(signals, SignalHTMLHeavy)
	}

	if hasTrackingPixel(msg.BodyHTML) {
		score += weightTrackingPixel
		signals = append(signals, SignalTrackingPixel)
	}

	return Result{
		Confidence: tierFor(score),
		Score:      score,
		Signals:    signals,
	}
}

func tierFor(score float64) domain.Confidence {
	switch {
	case score >= thresholdHigh:
		return domain.ConfidenceHigh
	case score >= thresholdMedium:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// htmlHeavy reports whether the message is dominated by HTML content, a
// typical shape for designed newsletter templates.
func htmlHeavy(text, html string) bool {
	if html == "" {
		return false
	}
	if text == "" {
		return len(html) > 512
	}
	return len(html) > 3*len(text)
}

func hasTrackingPixel(html string) bool {
	if html == "" {
		return false
	}
	lower := strings.ToLower(html)
	for _, marker := range trackingMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Header lookup is case-insensitive; providers disagree on header casing.
func headerValue(headers map[string]string, name string) string {
	if headers == nil {
		return ""
	}
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func headerPresent(headers map[string]string, name string) bool {
	return headerValue(headers, name) != ""
}
