package domain

// Attachment describes one attachment of a provider message.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// Envelope is the normalized, flattened view of a provider message,
// independent of its original nested transport shape.
type Envelope struct {
	ID          string       `json:"id"`
	ThreadID    string       `json:"thread_id,omitempty"`
	Subject     string       `json:"subject"`
	Sender      string       `json:"sender"`
	Snippet     string       `json:"snippet,omitempty"`
	Body        string       `json:"body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// SummaryMode selects between the single-message and thread prompts.
type SummaryMode string

const (
	SummarySingle SummaryMode = "single"
	SummaryThread SummaryMode = "thread"
)

// Summary is the contract-bound result of a summarization call. ActionItems
// and KeyDates are always present, empty rather than nil, so consumers never
// see an ambiguous partial structure.
type Summary struct {
	Summary      string   `json:"summary"`
	ActionItems  []string `json:"action_items"`
	KeyDates     []string `json:"key_dates"`
	Participants []string `json:"participants,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// ReplyMode selects between drafting a fresh reply and regenerating a
// different version of a previous one.
type ReplyMode string

const (
	ReplyFresh      ReplyMode = "fresh"
	ReplyRegenerate ReplyMode = "regenerate"
)

// ThreadMessage is one message of a conversation in provider order, as
// consumed by thread summarization.
type ThreadMessage struct {
	Sender string
	Date   string
	Plain  string
	HTML   string
}

// EventResult is the tagged outcome of a calendar insert: a link on
// success, a reportable message on failure.
type EventResult struct {
	Link  string `json:"link,omitempty"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the insert succeeded.
func (r EventResult) OK() bool { return r.Error == "" }
