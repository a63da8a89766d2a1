package notify

import (
	"context"

	"github.com/openwatch/beacon/internal/domain"
)

// Notifier delivers one down-alert for an endpoint to a recipient address.
// Channels that have no per-recipient routing (e.g. Slack) may ignore the
// recipient.
type Notifier interface {
	Send(ctx context.Context, recipient string, ep domain.Endpoint) error
}

type Multi []Notifier

func (m Multi) Send(ctx context.Context, recipient string, ep domain.Endpoint) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, recipient, ep); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
