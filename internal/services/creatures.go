package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/seacreatures/internal/llm"
	"github.com/snappy-loop/seacreatures/internal/models"
	"github.com/snappy-loop/seacreatures/internal/stability"
	"golang.org/x/sync/semaphore"
)

var (
	ErrMissingCredentials = errors.New("API keys are not configured")
	ErrBlankIdea          = errors.New("idea is blank")
	ErrIdeaTooLong        = errors.New("idea is too long")
)

// GenerationError is the terminal error of a failed submission.
type GenerationError struct {
	Kind models.FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// CreatureService turns ideas into images, one submission at a time
type CreatureService struct {
	text          TextGenerator
	image         ImageGenerator
	creds         models.Credentials
	maxIdeaLength int
	sem           *semaphore.Weighted
}

// NewCreatureService creates a new CreatureService. maxIdeaLength <= 0 disables the length check.
func NewCreatureService(text TextGenerator, image ImageGenerator, creds models.Credentials, maxIdeaLength int) *CreatureService {
	return &CreatureService{
		text:          text,
		image:         image,
		creds:         creds,
		maxIdeaLength: maxIdeaLength,
		sem:           semaphore.NewWeighted(1),
	}
}

// Submit runs one idea through the pipeline and reports progress to p.
// Failures are reported to p and recorded on the returned submission; they are never returned.
func (s *CreatureService) Submit(ctx context.Context, idea string, p Presenter) *models.Submission {
	sub := &models.Submission{
		ID:        uuid.New(),
		Idea:      idea,
		State:     models.StateIdle,
		CreatedAt: time.Now(),
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.report(sub, p, &GenerationError{Kind: models.FailureUnexpected, Err: fmt.Errorf("waiting for previous submission: %w", err)})
		return sub
	}
	defer s.sem.Release(1)

	if err := s.run(ctx, sub, p); err != nil {
		s.report(sub, p, err)
		return sub
	}

	log.Info().
		Str("submission_id", sub.ID.String()).
		Dur("duration", time.Since(sub.CreatedAt)).
		Msg("Submission completed")
	return sub
}

func (s *CreatureService) run(ctx context.Context, sub *models.Submission, p Presenter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("submission_id", sub.ID.String()).
				Interface("panic", r).
				Msg("Recovered from panic during submission")
			err = &GenerationError{Kind: models.FailureUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	s.transition(sub, models.StateValidating)
	if err := s.validate(sub.Idea); err != nil {
		return err
	}

	s.transition(sub, models.StateGeneratingText)
	p.Message(models.LevelInfo, "Step 1: asking Google Gemini to turn your idea into an art prompt...")

	prompt, err := s.text.GenerateText(ctx, llm.ComposeInstruction(sub.Idea), s.creds.TextAPIKey)
	if err != nil {
		return &GenerationError{Kind: models.FailureTextGeneration, Err: err}
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return &GenerationError{Kind: models.FailureTextGeneration, Err: errors.New("text model returned an empty prompt")}
	}
	sub.Prompt = prompt

	p.Message(models.LevelSuccess, "Art prompt ready!")
	p.Prompt(prompt)

	s.transition(sub, models.StateGeneratingImage)
	p.Message(models.LevelInfo, "Step 2: asking Stability AI to paint from the prompt...")

	data, err := s.image.GenerateImage(ctx, prompt, s.creds.ImageAPIKey)
	if err != nil {
		return &GenerationError{Kind: models.FailureImageGeneration, Err: err}
	}

	sub.Image = &models.Image{
		Data:     data,
		MimeType: stability.MimeType,
		Caption:  fmt.Sprintf("AI artwork for “%s”", sub.Idea),
	}
	s.transition(sub, models.StateDone)

	p.Message(models.LevelSuccess, "Done! A one-of-a-kind sea creature has been born!")
	p.Image(sub.Image)
	return nil
}

// validate checks credentials first, then the idea.
func (s *CreatureService) validate(idea string) error {
	if !s.creds.Complete() {
		return &GenerationError{Kind: models.FailureConfig, Err: ErrMissingCredentials}
	}
	if strings.TrimSpace(idea) == "" {
		return &GenerationError{Kind: models.FailureInput, Err: ErrBlankIdea}
	}
	if s.maxIdeaLength > 0 {
		if n := utf8.RuneCountInString(idea); n > s.maxIdeaLength {
			return &GenerationError{
				Kind: models.FailureInput,
				Err:  fmt.Errorf("%w: %d characters, the limit is %d", ErrIdeaTooLong, n, s.maxIdeaLength),
			}
		}
	}
	return nil
}

// report moves sub to Failed and shows the message for its failure kind.
func (s *CreatureService) report(sub *models.Submission, p Presenter, err error) {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		genErr = &GenerationError{Kind: models.FailureUnexpected, Err: err}
	}

	sub.FailureKind = genErr.Kind
	s.transition(sub, models.StateFailed)

	level, text := failureMessage(genErr)
	log.Warn().
		Str("submission_id", sub.ID.String()).
		Str("failure_kind", string(genErr.Kind)).
		Err(genErr.Err).
		Msg("Submission failed")
	p.Message(level, text)
}

func failureMessage(e *GenerationError) (models.MessageLevel, string) {
	switch e.Kind {
	case models.FailureConfig:
		return models.LevelError, "Error: API keys are not configured. Set GOOGLE_API_KEY and STABILITY_API_KEY in a local .env file or in the secrets store."
	case models.FailureInput:
		if errors.Is(e.Err, ErrIdeaTooLong) {
			return models.LevelWarning, fmt.Sprintf("Your idea is too long (%s). Please shorten it.", strings.TrimPrefix(e.Err.Error(), ErrIdeaTooLong.Error()+": "))
		}
		return models.LevelWarning, "Please enter some text to inspire the AI!"
	case models.FailureImageGeneration:
		var imgErr *stability.ImageGenError
		if errors.As(e.Err, &imgErr) {
			return models.LevelError, imgErr.Error()
		}
		return models.LevelError, fmt.Sprintf("Stability AI returned an error: %v", e.Err)
	default:
		return models.LevelError, fmt.Sprintf("Oops, something unexpected went wrong while creating your creature: %v", e.Err)
	}
}

func (s *CreatureService) transition(sub *models.Submission, to models.State) {
	log.Debug().
		Str("submission_id", sub.ID.String()).
		Str("from", string(sub.State)).
		Str("to", string(to)).
		Msg("Submission state changed")
	sub.State = to
}
