package models

import (
	"time"

	"github.com/google/uuid"
)

// Credentials holds the two API keys resolved at startup. Empty means not configured.
type Credentials struct {
	TextAPIKey  string `json:"-"` // GOOGLE_API_KEY
	ImageAPIKey string `json:"-"` // STABILITY_API_KEY
}

// Complete reports whether both keys are present.
func (c Credentials) Complete() bool {
	return c.TextAPIKey != "" && c.ImageAPIKey != ""
}

// State is a step of the generation pipeline for one submission
type State string

const (
	StateIdle            State = "idle"
	StateValidating      State = "validating"
	StateGeneratingText  State = "generating_text"
	StateGeneratingImage State = "generating_image"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// FailureKind classifies why a submission ended in StateFailed
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureConfig          FailureKind = "config"
	FailureInput           FailureKind = "input"
	FailureTextGeneration  FailureKind = "text_generation"
	FailureImageGeneration FailureKind = "image_generation"
	FailureUnexpected      FailureKind = "unexpected"
)

// MessageLevel is the severity of a status message shown next to the form
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelSuccess MessageLevel = "success"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// Message is a status line rendered by the presentation layer
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}

// Image represents a generated image. It is never persisted.
type Image struct {
	Data     []byte
	MimeType string // e.g. "image/png"
	Caption  string
}

// Submission is the request-scoped record of one form submission
type Submission struct {
	ID          uuid.UUID
	Idea        string
	Prompt      string
	Image       *Image
	State       State
	FailureKind FailureKind
	CreatedAt   time.Time
}

// CreateCreatureRequest is the body of POST /v1/creatures
type CreateCreatureRequest struct {
	Idea string `json:"idea"`
}

// CreatureResponse is the result of POST /v1/creatures
type CreatureResponse struct {
	ID          uuid.UUID   `json:"id"`
	State       State       `json:"state"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	Messages    []Message   `json:"messages"`
	Prompt      string      `json:"prompt,omitempty"`
	ImageBase64 string      `json:"image_base64,omitempty"`
	MimeType    string      `json:"mime_type,omitempty"`
	Caption     string      `json:"caption,omitempty"`
}

// HealthResponse is the result of GET /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	TextKey  bool   `json:"text_key"`
	ImageKey bool   `json:"image_key"`
}
