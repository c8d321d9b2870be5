//go:build !linux

package notify

// New returns a no-op notifier; desktop notifications need D-Bus.
func New() Notifier {
	return stubNotifier{}
}

type stubNotifier struct{}

func (stubNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (stubNotifier) Close(uint32) error                  { return nil }
