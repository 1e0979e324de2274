package service

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/set-night/chatdigest/internal/domain"
)

// mediaOmitted is what WhatsApp writes for attachments in exports
// produced without media. Such lines carry no content at all.
const mediaOmitted = "<Media omitted>"

var fileAttachedRe = regexp.MustCompile(`\s*\(file attached\)$`)

// linePattern pairs a structural line match with the timestamp layout
// that must also parse for the candidate to win. Ordered from most to
// least specific; evaluation is early-exit.
type linePattern struct {
	re     *regexp.Regexp
	layout string
}

var linePatterns = []linePattern{
	// 29/01/2020, 23:29 - Alice: hello
	{regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}, \d{1,2}:\d{2}) - (.*)$`), "2/1/2006, 15:04"},
	// [29/01/2020, 23:29:15] Alice: hello
	{regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{4}, \d{1,2}:\d{2}:\d{2})\] (.*)$`), "2/1/2006, 15:04:05"},
	// 1/29/20, 11:29 PM - Alice: hello
	{regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2}, \d{1,2}:\d{2} [APap][Mm]) - (.*)$`), "1/2/06, 3:04 PM"},
	// 29/01/20, 23:29 - Alice: hello
	{regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2}, \d{1,2}:\d{2}) - (.*)$`), "2/1/06, 15:04"},
}

// ParseLine converts one transcript line into a Message. ok is false
// for lines that match no pattern, carry an invalid timestamp, or are
// a bare media-omission placeholder; none of those is an error.
func ParseLine(line string) (domain.Message, bool) {
	line = normalizeLine(line)

	for _, p := range linePatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// A structural match with an out-of-range date (31/02, month 13)
		// falls through to the next candidate rather than being
		// reinterpreted silently.
		ts, err := time.ParseInLocation(p.layout, strings.ToUpper(m[1]), time.Local)
		if err != nil {
			continue
		}

		author, body, found := strings.Cut(m[2], ": ")
		if !found {
			author = domain.SystemAuthor
			body = m[2]
		}

		body = fileAttachedRe.ReplaceAllString(strings.TrimSpace(body), "")
		body = strings.TrimSpace(body)
		if body == mediaOmitted {
			return domain.Message{}, false
		}

		return domain.Message{
			Timestamp: ts,
			Author:    strings.TrimSpace(author),
			Body:      body,
		}, true
	}

	return domain.Message{}, false
}

// ParseTranscript parses a whole transcript into messages, in input
// order. A non-matching, non-empty line following a parsed message is
// a continuation of a multi-line body and is appended to it; leading
// unparseable lines are dropped.
func ParseTranscript(r io.Reader) []domain.Message {
	var messages []domain.Message

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if msg, ok := ParseLine(line); ok {
			messages = append(messages, msg)
			continue
		}
		if strings.TrimSpace(line) == "" || len(messages) == 0 {
			continue
		}
		last := &messages[len(messages)-1]
		last.Body += "\n" + normalizeLine(line)
	}

	return messages
}

// normalizeLine strips direction marks and narrow no-break spaces that
// newer WhatsApp exports put around timestamps.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200e", "")
	line = strings.ReplaceAll(line, "\u202f", " ")
	return strings.TrimSpace(line)
}
