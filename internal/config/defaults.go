package config

// DefaultPagePattern names standalone pages by sequence number.
const DefaultPagePattern = "post-%d.html"

// Default returns a configuration populated with the values used when the
// file leaves a field out.
func Default() Config {
	return Config{
		Normalizer: NormalizerConfig{
			FallbackCategory: "General",
			DefaultImage:     "/images/default-post.jpg",
			StopCategories:   []string{"uncategorized", "general", "blog"},
			ExcerptChars:     160,
			WordsPerMinute:   200,
			MinReadMinutes:   2,
			FullWidth:        1200,
			ThumbWidth:       600,
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        5000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
			BufferSizeKb:      4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Notify: NotifyConfig{
			TimeoutSec: 10,
		},
	}
}
