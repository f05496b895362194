package models

// VideoStatus tracks the processing lifecycle of a video.
// pending -> ready on successful ingestion, pending -> failed otherwise.
// Both end states are terminal for a given attempt.
type VideoStatus string

const (
	StatusPending VideoStatus = "pending"
	StatusReady   VideoStatus = "ready"
	StatusFailed  VideoStatus = "failed"
)

// VideoRecord holds the metadata and processing state for one video.
type VideoRecord struct {
	VideoID         string      `json:"video_id"`
	Title           string      `json:"title"`
	Channel         string      `json:"channel"`
	ThumbnailURL    string      `json:"thumbnail_url"`
	DurationSeconds int         `json:"duration_seconds"`
	Status          VideoStatus `json:"status"`
}

// TranscriptSegment is one timestamped piece of raw transcript text,
// as returned by the transcript fetcher.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
}

// TranscriptChunk is one embeddable window of transcript text.
// Position is zero-based and contiguous within a video; StartTime is the
// start of the first segment that contributed to the chunk.
type TranscriptChunk struct {
	VideoID   string    `json:"video_id"`
	Position  int       `json:"chunk_index"`
	StartTime float64   `json:"start_time"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// RetrievalResult pairs a chunk with its similarity score for a query.
type RetrievalResult struct {
	Chunk TranscriptChunk `json:"chunk"`
	Score float64         `json:"score"`
}

// ChatTurn is one message in a conversation. Role is "user" or "assistant".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Source is a citation rendered back to the client: a snippet of the chunk
// the answer was grounded on, plus where it starts in the video.
type Source struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
}

// ChatAnswer is the orchestrator output: the answer text and the exact
// retrieval results it was grounded on.
type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Question types and difficulties.
const (
	QuestionMCQ  = "mcq"
	QuestionOpen = "open"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is one quiz question. For mcq questions Options carry an
// uppercase letter prefix ("A. ...") and Correct stores the same convention;
// callers compare by leading letter, case-insensitively. For open questions
// Options is empty and Correct holds the reference answer.
type Question struct {
	ID          int      `json:"id"`
	Difficulty  string   `json:"difficulty"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
	StartTime   float64  `json:"start_time"`
}

// Quiz is the fixed-length, ordered question set generated once per video.
type Quiz struct {
	VideoID   string     `json:"video_id"`
	Questions []Question `json:"questions"`
}

// GradingResult scores an open answer on a 0-3 rubric.
type GradingResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	XPEarned int    `json:"xp_earned"`
}

// DeepConcept is one summarized concept anchored to a transcript timestamp.
type DeepConcept struct {
	Name        string  `json:"name"`
	Explanation string  `json:"explanation"`
	StartTime   float64 `json:"start_time"`
}

// SummaryRecord is the structured summary of one video.
type SummaryRecord struct {
	Overview            string        `json:"overview"`
	DeepConcepts        []DeepConcept `json:"deep_concepts"`
	ActionableTakeaways []string      `json:"actionable_takeaways"`
}

// GameCompletion is the acknowledgement for a finished quiz run.
type GameCompletion struct {
	Level              string  `json:"level"`
	XP                 int     `json:"xp"`
	ComprehensionScore float64 `json:"comprehension_score"`
	WeakestConcept     string  `json:"weakest_concept,omitempty"`
}
