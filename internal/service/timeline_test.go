package service

import (
	"strings"
	"testing"
	"time"

	"github.com/set-night/chatdigest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimelineCorrelation(t *testing.T) {
	transcript := strings.Join([]string{
		"29/01/2020, 23:29 - Alice: IMG-0001.jpg (file attached)",
		"29/01/2020, 23:30 - Bob: IMG-MISSING.jpg (file attached)",
		"29/01/2020, 23:31 - Alice: check out IMG-0001.jpg later",
		"29/01/2020, 23:32 - Carol: VID-0001.mp4 (file attached)",
	}, "\n")
	path := writeTestArchive(t, [][2]string{
		{"chat.txt", transcript},
		{"IMG-0001.jpg", "jpgdata"},
		{"VID-0001.mp4", "mp4data"},
	})

	a, err := OpenArchive(path)
	require.NoError(t, err)
	timeline, err := BuildTimeline(a)
	require.NoError(t, err)
	require.Len(t, timeline.Messages, 4)

	// exact archive match
	assert.Equal(t, "IMG-0001.jpg", timeline.Messages[0].ImageRef)
	// referenced but absent from the archive: stays text
	assert.Empty(t, timeline.Messages[1].ImageRef)
	// mentions a filename mid-sentence: stays text
	assert.Empty(t, timeline.Messages[2].ImageRef)
	assert.Equal(t, "VID-0001.mp4", timeline.Messages[3].VideoRef)

	assert.Equal(t, []string{"IMG-0001.jpg"}, timeline.ImageFiles)
	assert.Equal(t, []string{"VID-0001.mp4"}, timeline.VideoFiles)
	assert.Equal(t, []string{"IMG-0001.jpg", "VID-0001.mp4"}, timeline.MediaFiles())
}

func TestFilterByWindow(t *testing.T) {
	now := time.Date(2020, 1, 31, 12, 0, 0, 0, time.Local)
	messages := []domain.Message{
		{Timestamp: now.Add(-48 * time.Hour), Author: "Alice", Body: "old"},
		{Timestamp: now.Add(-1 * time.Hour), Author: "Bob", Body: "recent"},
	}

	got, err := FilterByWindow(messages, domain.WindowDay, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].Body)

	got, err = FilterByWindow(messages, domain.WindowWeek, now)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFilterByWindowBoundary(t *testing.T) {
	now := time.Date(2020, 1, 31, 12, 0, 0, 0, time.Local)
	messages := []domain.Message{
		{Timestamp: now.Add(-24 * time.Hour), Body: "exactly at cutoff"},
	}

	// A message exactly on the cutoff is kept.
	got, err := FilterByWindow(messages, domain.WindowDay, now)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilterByWindowAll(t *testing.T) {
	messages := []domain.Message{
		{Timestamp: time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local), Body: "ancient"},
	}
	got, err := FilterByWindow(messages, domain.WindowAll, time.Now())
	require.NoError(t, err)
	assert.Equal(t, messages, got)
}

func TestFilterByWindowUnknown(t *testing.T) {
	messages := []domain.Message{{Body: "x"}}
	got, err := FilterByWindow(messages, domain.TimeWindow("fortnight"), time.Now())
	assert.ErrorIs(t, err, domain.ErrUnknownWindow)
	assert.Empty(t, got)
}

func TestAnalyze(t *testing.T) {
	messages := []domain.Message{
		{Author: "Alice", Body: "a"},
		{Author: "Bob", Body: "b"},
		{Author: "Bob", ImageRef: "IMG-1.jpg"},
		{Author: "Alice", Body: "c"},
		{Author: domain.SystemAuthor, Body: "subject changed"},
	}

	topText, topMedia := Analyze(messages)
	assert.Equal(t, "Alice", topText)
	assert.Equal(t, "Bob", topMedia)
}

func TestAnalyzeTieBreak(t *testing.T) {
	// Equal counts: the author seen first in message order wins.
	messages := []domain.Message{
		{Author: "Bob", Body: "a"},
		{Author: "Alice", Body: "b"},
		{Author: "Alice", Body: "c"},
		{Author: "Bob", Body: "d"},
	}

	topText, _ := Analyze(messages)
	assert.Equal(t, "Bob", topText)
}

func TestAnalyzeEmpty(t *testing.T) {
	topText, topMedia := Analyze(nil)
	assert.Equal(t, domain.NotAvailable, topText)
	assert.Equal(t, domain.NotAvailable, topMedia)

	topText, topMedia = Analyze([]domain.Message{
		{Author: domain.SystemAuthor, Body: "only system noise"},
	})
	assert.Equal(t, domain.NotAvailable, topText)
	assert.Equal(t, domain.NotAvailable, topMedia)
}
