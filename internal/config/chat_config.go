package config

import "time"

const (
	// History pagination
	MessagePageSize = 20

	// Typing
	TypingDebounce = 3 * time.Second

	// Connection
	ConnectTimeout       = 20 * time.Second
	ReconnectDelay       = 2 * time.Second
	MaxReconnectAttempts = 10

	// Defaults for the user directory lookup
	DirectoryPageSize = 50
)

// UnknownUserName is rendered when a profile snapshot arrives without a name.
const UnknownUserName = "Unknown User"
