package schema

// OutcomeKind tags the result of one answer attempt. The tag crosses the
// component boundary instead of a reserved phrase hidden in generated text,
// so transport callers can branch without sniffing strings.
type OutcomeKind string

const (
	// OutcomeAnswered means the generator produced an answer from context.
	OutcomeAnswered OutcomeKind = "answered"
	// OutcomeNoContext means retrieval found nothing usable, or the
	// generator declined for lack of grounding.
	OutcomeNoContext OutcomeKind = "no_context"
	// OutcomeError means the generation collaborator failed.
	OutcomeError OutcomeKind = "error"
)

// Outcome is the tagged result of Ask.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	Answer      string      `json:"answer,omitempty"`
	Sources     []string    `json:"sources,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
	Intent      string      `json:"intent,omitempty"`
	Confidence  float64     `json:"confidence"`
	Err         error       `json:"-"`
}

// IngestState is the terminal state of one ingestion attempt.
type IngestState string

const (
	// IngestUnchanged: the new fingerprint equals the stored one; no store
	// mutation was performed.
	IngestUnchanged IngestState = "unchanged"
	// IngestReplaced: old chunks were purged and new chunks inserted.
	IngestReplaced IngestState = "replaced"
	// IngestFailed: hash failure, zero extractable content, or deletion
	// retry exhaustion. No partial write past the point of failure.
	IngestFailed IngestState = "failed"
)

// IngestReport summarizes one ingestion attempt for the caller.
type IngestReport struct {
	File           string      `json:"file"`
	State          IngestState `json:"state"`
	Fingerprint    string      `json:"fingerprint,omitempty"`
	Pages          int         `json:"pages,omitempty"`
	ChunksInserted int         `json:"chunks_inserted"`
	ChunksDeleted  int         `json:"chunks_deleted"`
	Duplicates     int         `json:"duplicates"`
	Filtered       int         `json:"filtered"`
}
