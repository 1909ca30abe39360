package linklist

import "log/slog"

// DefaultFallback titles the category created for content that appears
// before the first heading.
const DefaultFallback = "Uncategorized"

// Config configures a Parser.
type Config struct {
	// Fallback is the title of the synthetic category (default: "Uncategorized").
	Fallback string `json:"fallback" yaml:"fallback"`

	// Descriptions accepts "- [title](url) - description" bullets as links
	// and keeps the trailing text in Link.Description.
	Descriptions bool `json:"descriptions" yaml:"descriptions"`

	// Logger for progress messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Fallback == "" {
		c.Fallback = DefaultFallback
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
