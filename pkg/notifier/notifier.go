package notifier

import "context"

// Notifier sends a formatted message. Extra arguments that are attachments are rendered as such,
// the rest are format arguments of a string message.
type Notifier interface {
	Notify(obj interface{}, args ...interface{})

	// Flush waits until the queued messages are delivered.
	Flush(ctx context.Context) error
}

type NullNotifier struct{}

func (n *NullNotifier) Notify(obj interface{}, args ...interface{}) {}

func (n *NullNotifier) Flush(ctx context.Context) error {
	return nil
}
