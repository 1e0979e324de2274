package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/set-night/chatdigest/internal/domain"
)

// BuildTimeline parses the archive's transcript and correlates message
// bodies with the archive's media listing. Parsing is a pure function
// of the transcript text and listing, so rebuilding from the same
// archive yields an identical timeline.
func BuildTimeline(a *Archive) (*domain.Timeline, error) {
	raw, err := a.ReadTranscript()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	messages := ParseTranscript(bytes.NewReader(raw))
	for i := range messages {
		correlateMedia(&messages[i], a)
	}

	return &domain.Timeline{
		Messages:   messages,
		ImageFiles: append([]string(nil), a.Images...),
		VideoFiles: append([]string(nil), a.Videos...),
	}, nil
}

// correlateMedia sets the media reference when the body both looks
// like a media filename and exactly matches an enumerated archive
// entry. A body that merely mentions a filename stays plain text.
func correlateMedia(msg *domain.Message, a *Archive) {
	body := strings.TrimSpace(msg.Body)
	switch {
	case IsImageName(body) && a.HasMedia(body):
		msg.ImageRef = body
	case IsVideoName(body) && a.HasMedia(body):
		msg.VideoRef = body
	}
}

// FilterByWindow returns the suffix of messages with timestamp at or
// after now minus the window's lookback, preserving order. WindowAll
// returns messages unchanged. An unrecognized window yields an empty
// result and ErrUnknownWindow so the caller can surface "no messages"
// instead of crashing.
func FilterByWindow(messages []domain.Message, window domain.TimeWindow, now time.Time) ([]domain.Message, error) {
	if window == domain.WindowAll {
		return messages, nil
	}

	lookback, ok := window.Duration()
	if !ok {
		return nil, domain.ErrUnknownWindow
	}

	cutoff := now.Add(-lookback)
	var out []domain.Message
	for _, msg := range messages {
		if !msg.Timestamp.Before(cutoff) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// Analyze tallies per-author text and media activity over messages and
// returns the most active author of each kind. Ties are broken by
// first occurrence in message order: counts are kept in insertion
// order and only a strictly greater count displaces the current top,
// which keeps the result reproducible. Empty tallies yield
// domain.NotAvailable.
func Analyze(messages []domain.Message) (topText, topMedia string) {
	type tally struct {
		text  int
		media int
	}
	counts := make(map[string]*tally)
	var order []string

	for _, msg := range messages {
		if msg.Author == domain.SystemAuthor {
			continue
		}
		t, ok := counts[msg.Author]
		if !ok {
			t = &tally{}
			counts[msg.Author] = t
			order = append(order, msg.Author)
		}
		if msg.HasMedia() {
			t.media++
		} else {
			t.text++
		}
	}

	topText, topMedia = domain.NotAvailable, domain.NotAvailable
	bestText, bestMedia := 0, 0
	for _, author := range order {
		t := counts[author]
		if t.text > bestText {
			bestText, topText = t.text, author
		}
		if t.media > bestMedia {
			bestMedia, topMedia = t.media, author
		}
	}
	return topText, topMedia
}
