package domain

// Summary part types as emitted by the external summarizer.
const (
	PartText       = "text"
	PartKeyMessage = "key_message"
	PartMedia      = "media"
)

// SummaryPart is one typed unit of the summarizer's structured reply.
// Content and Author are set for text-like parts; Filename references
// one of the attachments that were offered with the request.
type SummaryPart struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Author   string `json:"author,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SentimentBucket is one (label, count) pair of the optional
// sentiment breakdown.
type SentimentBucket struct {
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// SummaryResult is the validated structured reply for one
// summarization cycle. It is owned by the caller only while the
// summary is rendered and discarded on the next request.
type SummaryResult struct {
	Parts        []SummaryPart     `json:"summary_parts"`
	BulletPoints []string          `json:"bullet_points"`
	Sentiments   []SentimentBucket `json:"sentiments,omitempty"`
}
