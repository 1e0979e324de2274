package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/chatdigest/internal/domain"
	"github.com/shopspring/decimal"
)

// transcriptTimeLayout is the local rendering of message timestamps in
// the flattened chat log.
const transcriptTimeLayout = "2006-01-02 15:04"

// detailSpec maps a detail level to the bounds requested from the
// summarizer. These are instructions, not guarantees; the reply is
// validated defensively regardless.
type detailSpec struct {
	maxWords int
	keyMin   int
	keyMax   int
	mediaMin int
	mediaMax int
}

var detailSpecs = map[domain.DetailLevel]detailSpec{
	domain.DetailBrief:    {maxWords: 120, keyMin: 1, keyMax: 3, mediaMin: 0, mediaMax: 2},
	domain.DetailStandard: {maxWords: 240, keyMin: 2, keyMax: 5, mediaMin: 1, mediaMax: 4},
	domain.DetailVerbose:  {maxWords: 450, keyMin: 4, keyMax: 8, mediaMin: 2, mediaMax: 8},
}

// SummaryRequest is the assembled payload of one summarization cycle:
// detail-conditioned instructions, the flattened transcript, and the
// bounded media selection to attach.
type SummaryRequest struct {
	Instructions string
	Transcript   string
	Images       []string // selected image filenames, most recent first
	Videos       []string // selected video filenames, most recent first
	MessageCount int
}

// MediaCount returns how many attachments were selected.
func (r *SummaryRequest) MediaCount() int {
	return len(r.Images) + len(r.Videos)
}

// BuildSummaryRequest turns a filtered message set into a request.
// Pure: no archive access happens here; attachment bytes are resolved
// at send time.
func BuildSummaryRequest(messages []domain.Message, detail domain.DetailLevel, mediaBudget int) *SummaryRequest {
	images, videos := SelectMedia(messages, mediaBudget)
	return &SummaryRequest{
		Instructions: buildInstructions(detail, len(images), len(videos)),
		Transcript:   FlattenTranscript(messages),
		Images:       images,
		Videos:       videos,
		MessageCount: len(messages),
	}
}

// FlattenTranscript renders messages one per line as
// "[timestamp] author: body". Media-bearing messages get a placeholder
// instead of the raw filename so the summarizer cannot misquote it as
// free text.
func FlattenTranscript(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		body := msg.Body
		switch {
		case msg.ImageRef != "":
			body = "[Image Sent]"
		case msg.VideoRef != "":
			body = fmt.Sprintf("[Video Sent: %s]", msg.VideoRef)
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			msg.Timestamp.Format(transcriptTimeLayout), msg.Author, body))
	}
	return strings.Join(lines, "\n")
}

// SelectMedia picks up to budget distinct media filenames from
// messages, most recent first, split by kind. Duplicate references
// count once against the budget.
func SelectMedia(messages []domain.Message, budget int) (images, videos []string) {
	if budget <= 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	total := 0
	for i := len(messages) - 1; i >= 0 && total < budget; i-- {
		msg := messages[i]
		switch {
		case msg.ImageRef != "":
			if _, ok := seen[msg.ImageRef]; ok {
				continue
			}
			seen[msg.ImageRef] = struct{}{}
			images = append(images, msg.ImageRef)
			total++
		case msg.VideoRef != "":
			if _, ok := seen[msg.VideoRef]; ok {
				continue
			}
			seen[msg.VideoRef] = struct{}{}
			videos = append(videos, msg.VideoRef)
			total++
		}
	}
	return images, videos
}

func buildInstructions(detail domain.DetailLevel, imageCount, videoCount int) string {
	spec, ok := detailSpecs[detail]
	if !ok {
		spec = detailSpecs[domain.DetailStandard]
	}

	var b strings.Builder
	b.WriteString("Summarize the following WhatsApp group chat conversation. ")
	fmt.Fprintf(&b, "Produce an ordered list of typed summary parts. Prose parts (type \"text\") together must not exceed %d words. ", spec.maxWords)
	fmt.Fprintf(&b, "Include between %d and %d parts of type \"key_message\", each quoting one notable message verbatim in \"content\" with its \"author\". ", spec.keyMin, spec.keyMax)

	if imageCount+videoCount > 0 {
		fmt.Fprintf(&b, "Attached below are %d image(s) and %d video still frame(s), each preceded by a FILENAME tag. ", imageCount, videoCount)
		fmt.Fprintf(&b, "Describe their content in the summary and include between %d and %d parts of type \"media\", each carrying exactly one of the tagged filenames in \"filename\". ", spec.mediaMin, spec.mediaMax)
		b.WriteString("Never invent a filename that was not tagged. ")
	}

	b.WriteString("Follow the parts with key bullet points. ")
	b.WriteString("Optionally add a sentiment breakdown as (sentiment, count) buckets over the participants' messages.")
	return b.String()
}

// summarySchema is the output contract sent with every request.
const summarySchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["summary_parts", "bullet_points"],
	"properties": {
		"summary_parts": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["type"],
				"properties": {
					"type": {"type": "string", "enum": ["text", "key_message", "media"]},
					"content": {"type": "string"},
					"author": {"type": "string"},
					"filename": {"type": "string"}
				}
			}
		},
		"bullet_points": {"type": "array", "items": {"type": "string"}},
		"sentiments": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["sentiment", "count"],
				"properties": {
					"sentiment": {"type": "string"},
					"count": {"type": "integer"}
				}
			}
		}
	}
}`

// SummarizerService drives one summarization cycle against the
// external model: payload assembly, the network call, and defensive
// parsing of the structured reply.
type SummarizerService struct {
	openRouter *OpenRouterService
	frames     *FrameService
}

func NewSummarizerService(openRouter *OpenRouterService, frames *FrameService) *SummarizerService {
	return &SummarizerService{openRouter: openRouter, frames: frames}
}

// Summarize sends req to model and returns the validated result plus
// the request cost in USD. The archive is reopened per attachment; an
// unreadable or undecodable entry is skipped, never fatal.
func (s *SummarizerService) Summarize(ctx context.Context, a *Archive, req *SummaryRequest, model *domain.AIModel) (*domain.SummaryResult, decimal.Decimal, error) {
	parts := []interface{}{
		textPart(req.Instructions + "\n\n--- CHAT LOG ---\n" + req.Transcript + "\n--- END CHAT LOG ---"),
	}

	// Filenames actually attached; the reply is validated against this
	// set, not against the requested selection.
	attached := make(map[string]struct{})

	if model.Capabilities.Vision {
		for _, name := range req.Images {
			data, err := a.ReadMedia(name)
			if err != nil {
				slog.Warn("skipping unreadable image", "name", name, "error", err)
				continue
			}
			mime := MIMEForImage(name)
			if mime == "" {
				continue
			}
			parts = append(parts, textPart("FILENAME: "+name), imagePart(mime, data))
			attached[name] = struct{}{}
		}
		for _, name := range req.Videos {
			frame, err := s.frames.SampleArchiveFrame(ctx, a, name, 0)
			if err != nil {
				slog.Warn("skipping undecodable video", "name", name, "error", err)
				continue
			}
			parts = append(parts, textPart("FILENAME: "+name), imagePart("image/jpeg", frame))
			attached[name] = struct{}{}
		}
	}

	format := &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:   "chat_summary",
			Strict: true,
			Schema: json.RawMessage(summarySchema),
		},
	}

	resp, err := s.openRouter.Chat(ctx, []ChatMessage{{Role: "user", Content: parts}}, model.ID, format)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if len(resp.Choices) == 0 {
		return nil, decimal.Zero, domain.ErrEmptyReply
	}

	result, err := ParseSummaryReply(resp.Choices[0].Message.Content, attached)
	if err != nil {
		return nil, decimal.Zero, err
	}

	cost := CalculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
		model.PromptPrice, model.CompletionPrice)
	if resp.Usage.TotalCost > 0 {
		cost = decimal.NewFromFloat(resp.Usage.TotalCost)
	}

	return result, cost, nil
}

// ParseSummaryReply parses the summarizer's reply into a
// SummaryResult. The reply is untrusted structured data: parts with an
// unknown type, and media parts whose filename is not in the attached
// set, are dropped part-wise rather than failing the whole result.
func ParseSummaryReply(content string, attached map[string]struct{}) (*domain.SummaryResult, error) {
	content = stripCodeFence(content)

	var result domain.SummaryResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parse summary reply: %w", err)
	}

	kept := result.Parts[:0]
	for _, part := range result.Parts {
		switch part.Type {
		case domain.PartText, domain.PartKeyMessage:
			kept = append(kept, part)
		case domain.PartMedia:
			if _, ok := attached[part.Filename]; !ok {
				slog.Warn("dropping media part with unattached filename", "filename", part.Filename)
				continue
			}
			kept = append(kept, part)
		default:
			slog.Warn("dropping summary part with unknown type", "type", part.Type)
		}
	}
	result.Parts = kept

	return &result, nil
}

// stripCodeFence removes a ```json fence some models wrap around their
// reply despite the response format.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func textPart(text string) map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": text}
}

func imagePart(mime string, data []byte) map[string]interface{} {
	return map[string]interface{}{
		"type": "image_url",
		"image_url": map[string]string{
			"url": "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		},
	}
}
