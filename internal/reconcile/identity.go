package reconcile

import (
	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	"github.com/ozmsg/gateway/internal/provider"
)

// Identity returns the dedup key for a provider message: the provider's own
// id when present, otherwise a deterministic synthetic id. Using a stable
// synthetic id keeps dedup correct across repeated fetches of the same
// unidentified message.
func Identity(msg provider.Message) string {
	if msg.ID != "" {
		return msg.ID
	}
	return inboxdomain.SyntheticID(msg.From, msg.To, msg.Content, msg.ReceivedAt)
}
