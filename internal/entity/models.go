package entity

import "time"

// SourceKind tells which input text a chunk was cut from.
type SourceKind string

const (
	SourceMain      SourceKind = "main"
	SourceAuxiliary SourceKind = "auxiliary"
)

// Chunk is a bounded substring of one of the pipeline inputs. Chunks are
// immutable once produced; Index preserves original offset order until
// prioritization re-orders by score.
type Chunk struct {
	Index  int
	Source SourceKind
	Text   string
}

// CharBudget describes how many characters a single model call may carry.
type CharBudget struct {
	MaxChars              int
	TemplateOverheadChars int
	SafetyMarginChars     int
}

// Available returns the budget left for content after template overhead and
// safety margin, clamped to at least 1.
func (b CharBudget) Available() int {
	available := b.MaxChars - b.TemplateOverheadChars - b.SafetyMarginChars
	if available < 1 {
		return 1
	}
	return available
}

// ChunkLimits caps how many chunks survive prioritization per side.
// Zero means no limit.
type ChunkLimits struct {
	MainLimit int
	AuxLimit  int
}

// ChunkPriority is one scoring record returned by the relevance call.
type ChunkPriority struct {
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// NeutralScore is assigned to chunks the scoring call missed or that the
// fallback path produces.
const NeutralScore = 5

// WorkUnit is one (main chunk, aux chunk) pairing dispatched as a single
// model call.
type WorkUnit struct {
	MainChunk string
	AuxChunk  string
}

// Stage identifies which phase of the pipeline a progress event belongs to.
type Stage string

const (
	StageProcessing Stage = "processing"
	StageSynthesis  Stage = "synthesis"
)

// ProgressEvent reports batch completion. Completed is monotonically
// non-decreasing within a stage; Total is fixed once the stage's work unit
// set is finalized.
type ProgressEvent struct {
	Stage     Stage `json:"stage"`
	Completed int   `json:"completed"`
	Total     int   `json:"total"`
}

// JoinStrategy selects how synthesis parts are combined when the reduction
// itself had to be chunked.
type JoinStrategy string

const (
	// JoinConcat joins parts with the standard separator. Safe default for
	// prose output.
	JoinConcat JoinStrategy = "concat"
	// JoinJSONArrayMerge treats every part as a JSON array and concatenates
	// them element-wise. Falls back to concat when a part does not parse.
	JoinJSONArrayMerge JoinStrategy = "json_array_merge"
)

// Message is one element of a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusPending      RunStatus = "pending"
	RunStatusPartitioning RunStatus = "partitioning"
	RunStatusPrioritizing RunStatus = "prioritizing"
	RunStatusProcessing   RunStatus = "processing"
	RunStatusSynthesizing RunStatus = "synthesizing"
	RunStatusCompleted    RunStatus = "completed"
	RunStatusCancelled    RunStatus = "cancelled"
	RunStatusFailed       RunStatus = "failed"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusCancelled, RunStatusFailed:
		return true
	}
	return false
}

// Run is one registered pipeline invocation.
type Run struct {
	ID             string
	Status         RunStatus
	Progress       *ProgressEvent
	EstimatedCalls int
	Result         *string
	Error          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
