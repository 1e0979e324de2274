package service

import (
	"strings"
	"testing"
	"time"

	"github.com/set-night/chatdigest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineFormats(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		ts     time.Time
		author string
		body   string
	}{
		{
			name:   "android 4-digit year",
			line:   "29/01/2020, 23:29 - Alice: hello there",
			ts:     time.Date(2020, 1, 29, 23, 29, 0, 0, time.Local),
			author: "Alice",
			body:   "hello there",
		},
		{
			name:   "ios bracketed with seconds",
			line:   "[29/01/2020, 23:29:15] Bob: sup",
			ts:     time.Date(2020, 1, 29, 23, 29, 15, 0, time.Local),
			author: "Bob",
			body:   "sup",
		},
		{
			name:   "us 12-hour clock",
			line:   "1/29/20, 11:29 PM - Alice: late night",
			ts:     time.Date(2020, 1, 29, 23, 29, 0, 0, time.Local),
			author: "Alice",
			body:   "late night",
		},
		{
			name:   "lowercase meridiem",
			line:   "1/29/20, 11:29 pm - Alice: late night",
			ts:     time.Date(2020, 1, 29, 23, 29, 0, 0, time.Local),
			author: "Alice",
			body:   "late night",
		},
		{
			name:   "2-digit year 24-hour clock",
			line:   "29/01/20, 23:29 - Carol: short year",
			ts:     time.Date(2020, 1, 29, 23, 29, 0, 0, time.Local),
			author: "Carol",
			body:   "short year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := ParseLine(tt.line)
			require.True(t, ok)
			assert.True(t, msg.Timestamp.Equal(tt.ts), "got %v want %v", msg.Timestamp, tt.ts)
			assert.Equal(t, tt.author, msg.Author)
			assert.Equal(t, tt.body, msg.Body)
		})
	}
}

func TestParseLineSystemEvent(t *testing.T) {
	msg, ok := ParseLine("29/01/2020, 23:29 - Messages and calls are end-to-end encrypted.")
	require.True(t, ok)
	assert.Equal(t, domain.SystemAuthor, msg.Author)
	assert.Equal(t, "Messages and calls are end-to-end encrypted.", msg.Body)
}

func TestParseLineFileAttached(t *testing.T) {
	msg, ok := ParseLine("29/01/2020, 23:29 - Alice: IMG-20200129-WA0001.jpg (file attached)")
	require.True(t, ok)
	assert.Equal(t, "IMG-20200129-WA0001.jpg", msg.Body)
}

func TestParseLineMediaOmitted(t *testing.T) {
	_, ok := ParseLine("29/01/2020, 23:29 - Alice: <Media omitted>")
	assert.False(t, ok)
}

func TestParseLineUnicodeNoise(t *testing.T) {
	// Newer iOS exports prefix lines with a direction mark and use a
	// narrow no-break space before the meridiem.
	msg, ok := ParseLine("\u200e[29/01/2020, 23:29:15] Alice: \u200eimage omitted")
	require.True(t, ok)
	assert.Equal(t, "Alice", msg.Author)
	assert.Equal(t, "image omitted", msg.Body)

	msg, ok = ParseLine("1/29/20, 11:29\u202fPM - Alice: hi")
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Body)
}

func TestParseLineRejects(t *testing.T) {
	lines := []string{
		"",
		"just a stray line",
		"29/01/2020 23:29 - Alice: missing comma",
		// structurally valid, calendar-invalid date
		"31/02/2020, 23:29 - Alice: nope",
		"99/99/2020, 23:29 - Alice: nope",
	}
	for _, line := range lines {
		_, ok := ParseLine(line)
		assert.False(t, ok, "line %q should not parse", line)
	}
}

func TestParseTranscriptContinuations(t *testing.T) {
	transcript := strings.Join([]string{
		"junk header before the first message",
		"29/01/2020, 23:29 - Alice: first line",
		"second line",
		"third line",
		"",
		"29/01/2020, 23:30 - Bob: reply",
	}, "\n")

	messages := ParseTranscript(strings.NewReader(transcript))
	require.Len(t, messages, 2)
	assert.Equal(t, "first line\nsecond line\nthird line", messages[0].Body)
	assert.Equal(t, "reply", messages[1].Body)
}

func TestParseTranscriptCRLF(t *testing.T) {
	transcript := "29/01/2020, 23:29 - Alice: one\r\n29/01/2020, 23:30 - Bob: two\r\n"
	messages := ParseTranscript(strings.NewReader(transcript))
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Body)
	assert.Equal(t, "two", messages[1].Body)
}

func TestParseTranscriptDeterministic(t *testing.T) {
	transcript := strings.Join([]string{
		"29/01/2020, 23:29 - Alice: hello",
		"wrapped",
		"[30/01/2020, 08:12:03] Bob: morning",
		"1/30/20, 9:45 AM - Carol: IMG-1.jpg (file attached)",
	}, "\n")

	first := ParseTranscript(strings.NewReader(transcript))
	second := ParseTranscript(strings.NewReader(transcript))
	assert.Equal(t, first, second)
}
