package notify

import "context"

// Message is one push notification payload fanned out to a token batch.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Outcome classifies the per-token delivery result reported by the provider.
type Outcome int

const (
	// Delivered means the provider accepted the message for the token.
	Delivered Outcome = iota
	// RejectedPermanent means the token is unusable, e.g. an unregistered
	// device, and should be surfaced for out-of-band cleanup.
	RejectedPermanent
	// RejectedTransient covers temporary provider failures. Sends are not
	// retried within a sweep.
	RejectedTransient
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case RejectedPermanent:
		return "rejected_permanent"
	case RejectedTransient:
		return "rejected_transient"
	default:
		return "unknown"
	}
}

// Receipt is the per-token delivery outcome for one dispatch batch.
type Receipt struct {
	Token   string
	Outcome Outcome
	Reason  string
}

// Notifier delivers one message to a batch of device tokens and reports a
// receipt per token. Implementations chunk the batch into provider-sized
// requests. A non-nil error reports transport problems; receipts already
// collected are still returned.
type Notifier interface {
	Send(ctx context.Context, tokens []string, msg Message) ([]Receipt, error)
}
