package domain

import "time"

// User is one Telegram chat with its summarization preferences and the
// currently loaded archive. The archive itself lives on disk; only its
// path is persisted.
type User struct {
	ID         int64
	TelegramID int64
	FirstName  string
	Username   string

	// Settings
	TimeWindow    TimeWindow
	DetailLevel   DetailLevel
	IncludeMedia  bool
	MediaBudget   int
	SelectedModel string

	// Currently loaded archive; empty until the first upload.
	ArchivePath string
	ArchiveName string

	LastSummaryAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasArchive reports whether an archive has been loaded for this chat.
func (u *User) HasArchive() bool {
	return u.ArchivePath != ""
}
