package usecase

import (
	"strings"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"
)

// admitCandidates filters candidates down to those from whitelisted senders
// that have not already been imported. Both sets are keyed by lowercased
// values; duplicates are dropped silently.
func admitCandidates(candidates []newsletterdomain.CandidateMessage, whitelisted map[string]bool, imported map[string]bool) []newsletterdomain.CandidateMessage {
	admitted := make([]newsletterdomain.CandidateMessage, 0, len(candidates))
	for _, c := range candidates {
		sender := strings.ToLower(c.SenderEmail)
		if sender == "" || !whitelisted[sender] {
			continue
		}
		if imported[c.MessageID] {
			continue
		}
		admitted = append(admitted, c)
	}
	return admitted
}

// whitelistSet builds the lowercase membership set the gate checks against.
func whitelistSet(entries []*newsletterdomain.WhitelistEntry) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[strings.ToLower(e.Email)] = true
	}
	return set
}

// importedSet builds the message-id membership set from already stored rows.
func importedSet(messageIDs []string) map[string]bool {
	set := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		set[id] = true
	}
	return set
}
