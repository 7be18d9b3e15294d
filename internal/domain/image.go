package domain

import (
	"encoding/json"
	"time"
)

// ProcessingType records which operation produced an image.
type ProcessingType string

const (
	ProcessingUpload   ProcessingType = "upload"
	ProcessingStyle    ProcessingType = "style"
	ProcessingEnhance  ProcessingType = "enhance"
	ProcessingGenerate ProcessingType = "generate"
)

// ImageRecord is one history entry. Records are immutable after creation.
type ImageRecord struct {
	ID             int64           `json:"id"`
	UserID         *int64          `json:"userId"`
	OriginalURL    string          `json:"originalUrl"`
	ProcessedURL   *string         `json:"processedUrl"`
	ThumbnailURL   *string         `json:"thumbnailUrl"`
	Style          *string         `json:"style"`
	AIPrompt       *string         `json:"aiPrompt"`
	ProcessingType ProcessingType  `json:"processingType"`
	Metadata       json.RawMessage `json:"metadata"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NewImageRecord is the insert shape for SaveImage; the store assigns ID and
// CreatedAt.
type NewImageRecord struct {
	UserID         *int64
	OriginalURL    string
	ProcessedURL   *string
	ThumbnailURL   *string
	Style          *string
	AIPrompt       *string
	ProcessingType ProcessingType
	Metadata       json.RawMessage
}
