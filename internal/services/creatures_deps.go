package services

import (
	"context"

	"github.com/snappy-loop/seacreatures/internal/models"
)

// TextGenerator expands an instruction into an art prompt (e.g. llm.GenAIClient).
type TextGenerator interface {
	GenerateText(ctx context.Context, instruction, apiKey string) (string, error)
}

// ImageGenerator renders a prompt into image bytes (e.g. stability.Client).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, apiKey string) ([]byte, error)
}

// Presenter receives everything a submission wants to show the user.
type Presenter interface {
	Message(level models.MessageLevel, text string)
	Prompt(prompt string)
	Image(img *models.Image)
}
