package messenger

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by prompts and menus. Callers match with errors.Is.
var (
	// ErrTransport wraps any failure reported by a platform adapter.
	ErrTransport = errors.New("messenger: transport error") //nolint:gochecknoglobals // sentinel error

	// ErrTimeout is returned when no qualifying input arrived in the wait window.
	ErrTimeout = errors.New("messenger: timed out waiting for input") //nolint:gochecknoglobals // sentinel error

	// ErrInvalidChoice is returned when the awaited user reacted with an unknown marker.
	ErrInvalidChoice = errors.New("messenger: invalid choice") //nolint:gochecknoglobals // sentinel error

	// ErrStructural marks caller mistakes detected before any network call.
	ErrStructural = errors.New("messenger: structural error") //nolint:gochecknoglobals // sentinel error
)

// Structural errors.
var (
	ErrNoPages         = fmt.Errorf("%w: pages is empty", ErrStructural)           //nolint:gochecknoglobals // sentinel error
	ErrPageOutOfRange  = fmt.Errorf("%w: page is out of bounds", ErrStructural)    //nolint:gochecknoglobals // sentinel error
	ErrInvalidTimeout  = fmt.Errorf("%w: timeout must be positive", ErrStructural) //nolint:gochecknoglobals // sentinel error
	ErrDuplicateMarker = fmt.Errorf("%w: duplicate control marker", ErrStructural) //nolint:gochecknoglobals // sentinel error
	ErrNoMarkers       = fmt.Errorf("%w: no markers given", ErrStructural)         //nolint:gochecknoglobals // sentinel error
)

// Transport wraps a platform failure so that errors.Is(err, ErrTransport) holds.
// op names the failing call, e.g. "discord.Messenger.SendMessage".
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
