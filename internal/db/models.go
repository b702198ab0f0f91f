package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Document represents an uploaded annual report and its parse state.
// Parsed content lives on the same row; parsing is 1:1 with the file.
type Document struct {
	ID           uuid.UUID
	RelativePath string
	FileURL      string
	FileHash     string
	CompanyName  string
	Year         int
	ParsedText   *string
	ParseError   *string
	UploadedAt   time.Time
	ParsedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Chunk represents one window of document text. DisplayContent is the
// path-prefixed form that gets indexed and shown to the model.
type Chunk struct {
	ID             uuid.UUID
	DocumentID     uuid.UUID
	ChunkIndex     int
	Content        string
	DisplayContent string
	Language       string
	CreatedAt      time.Time
}

// SearchEntry is the indexed projection of a chunk, written under a
// generation number. Only entries in the active generation are queryable.
type SearchEntry struct {
	ID           uuid.UUID
	Generation   int64
	ChunkID      uuid.UUID
	ChunkIndex   int
	DocumentPath string
	FileURL      string
	Content      string
	CompanyName  string
	Year         int
	Language     string
	Embedding    *pgvector.Vector
	CreatedAt    time.Time
}

// Criterion is a versioned evaluation question with its prompt template.
type Criterion struct {
	ID           string
	Version      string
	Question     string
	Cluster      []string
	Role         string
	Instructions string
	OutputSchema string
	Prompt       string
	Weight       float64
	Active       bool
	CreatedAt    time.Time
}

// MediaScanRecord tracks a disqualifying topic found in media coverage
// of a company. Independent of the document pipeline.
type MediaScanRecord struct {
	CompanyName string
	Topic       string
	UpdatedAt   time.Time
}

// EvaluationResult is one judgment for a (criterion, company) cell of an
// analysis run. Append-only.
type EvaluationResult struct {
	ID               uuid.UUID
	RunID            string
	CriterionID      string
	CriterionVersion string
	Question         string
	Prompt           string
	CompanyName      string
	Result           string
	Justification    string
	Evidence         string
	Output           json.RawMessage
	CreatedAt        time.Time
}

// RunInfo summarizes one analysis run for the review screens.
type RunInfo struct {
	RunID         string
	CriteriaCount int
	CompanyCount  int
	ResultCount   int
	StartedAt     time.Time
}

// Stats holds the counts shown on the dashboard.
type Stats struct {
	Documents        int
	ParsedDocuments  int
	Chunks           int
	SearchableChunks int
	ActiveCriteria   int
	MediaScans       int
	Runs             int
}
