package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/seacreatures/internal/models"
)

// pageData is rendered by the "index" template.
type pageData struct {
	Idea       string
	Messages   []models.Message
	Prompt     string
	ImageURL   template.URL
	Caption    string
	TextModel  string
	ImageModel string
}

// pagePresenter collects submission output into pageData.
type pagePresenter struct {
	data *pageData
}

func (p *pagePresenter) Message(level models.MessageLevel, text string) {
	p.data.Messages = append(p.data.Messages, models.Message{Level: level, Text: text})
}

func (p *pagePresenter) Prompt(prompt string) { p.data.Prompt = prompt }

func (p *pagePresenter) Image(img *models.Image) {
	p.data.ImageURL = dataURI(img)
	p.data.Caption = img.Caption
}

// jsonPresenter collects submission output into a CreatureResponse.
type jsonPresenter struct {
	resp *models.CreatureResponse
}

func (p *jsonPresenter) Message(level models.MessageLevel, text string) {
	p.resp.Messages = append(p.resp.Messages, models.Message{Level: level, Text: text})
}

func (p *jsonPresenter) Prompt(prompt string) { p.resp.Prompt = prompt }

func (p *jsonPresenter) Image(img *models.Image) {
	p.resp.ImageBase64 = base64.StdEncoding.EncodeToString(img.Data)
	p.resp.MimeType = img.MimeType
	p.resp.Caption = img.Caption
}

// dataURI inlines img so nothing is stored server-side.
func dataURI(img *models.Image) template.URL {
	return template.URL("data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
}

func (h *Handler) newPage() *pageData {
	return &pageData{TextModel: h.textModel, ImageModel: h.imageModel}
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "index", h.newPage())
}

// Submit handles POST / (form field "idea"). Failures are shown on the page, so the status is always 200.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	data := h.newPage()
	if err := parseForm(r); err != nil {
		log.Warn().Err(err).Msg("Failed to parse form")
		data.Messages = append(data.Messages, models.Message{
			Level: models.LevelError,
			Text:  "Your submission could not be read. Please try again.",
		})
		renderPage(w, "index", data)
		return
	}
	data.Idea = r.PostFormValue("idea")

	// A client disconnect must not abort a submission halfway.
	ctx := context.WithoutCancel(r.Context())
	sub := h.creatures.Submit(ctx, data.Idea, &pagePresenter{data: data})
	log.Info().
		Str("submission_id", sub.ID.String()).
		Str("state", string(sub.State)).
		Msg("Form submission handled")

	renderPage(w, "index", data)
}

// maxFormMemory bounds the in-memory part of a multipart form.
const maxFormMemory = 1 << 20

// parseForm accepts both urlencoded and multipart form bodies.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

// CreateCreature handles POST /v1/creatures
func (h *Handler) CreateCreature(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCreatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := &models.CreatureResponse{Messages: []models.Message{}}
	sub := h.creatures.Submit(context.WithoutCancel(r.Context()), req.Idea, &jsonPresenter{resp: resp})
	resp.ID = sub.ID
	resp.State = sub.State
	resp.FailureKind = sub.FailureKind

	writeJSON(w, statusForSubmission(sub), resp)
}

func statusForSubmission(sub *models.Submission) int {
	if sub.State == models.StateDone {
		return http.StatusOK
	}
	switch sub.FailureKind {
	case models.FailureInput:
		return http.StatusBadRequest
	case models.FailureConfig:
		return http.StatusServiceUnavailable
	case models.FailureTextGeneration, models.FailureImageGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
