package event

import "context"

// CountNotifier is told the new total item count after every successful cart
// write. Implementations must not block the caller for long.
type CountNotifier interface {
	NotifyCartCount(ctx context.Context, count int)
}

// CountNotifierFunc adapts a function to CountNotifier.
type CountNotifierFunc func(ctx context.Context, count int)

// NotifyCartCount calls f.
func (f CountNotifierFunc) NotifyCartCount(ctx context.Context, count int) {
	f(ctx, count)
}

// Notifiers fans one notification out to every member, in order. Nil members
// are skipped.
type Notifiers []CountNotifier

// NotifyCartCount notifies every member.
func (n Notifiers) NotifyCartCount(ctx context.Context, count int) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.NotifyCartCount(ctx, count)
		}
	}
}
