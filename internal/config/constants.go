package config

import "time"

const (
	// Fixed post-completion cooldown between summarization cycles.
	SummaryCooldown = 30 * time.Second

	// Summarizer request timeout
	RequestTimeout = 90 * time.Second

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Rate limit (messages per minute)
	RateLimitPerMinute = 10

	// Stale request cleanup
	StaleRequestCleanup = 60 * time.Second
	StaleRequestAge     = 3 * time.Minute

	// Media preview
	ThumbnailWidth   = 320
	FrameSampleRatio = 0.10
	FrameTimeout     = 20 * time.Second

	// Media filenames listed by /media
	MediaListLimit = 10
)

// MediaBudgetOptions selectable in /settings.
var MediaBudgetOptions = []int{5, 10, 15, 25}
