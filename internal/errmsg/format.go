// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpInitialize   Op = "initialize application"
	OpConfigLoad   Op = "load configuration"
	OpStateOpen    Op = "open settings database"
	OpMetricsServe Op = "serve metrics"
	OpBootstrap    Op = "start console"

	// Settings
	OpSettingsLoad Op = "load settings"
	OpPresetToggle Op = "update presets"
	OpGUIDEnsure   Op = "create listener id"

	// Station directory
	OpStationsLoad Op = "load station list"
	OpStationsSave Op = "cache station list"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackLoad  Op = "load audio"
	OpPlaybackSeek  Op = "seek"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
