package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
	"github.com/ignite/leadroom/internal/templates"
)

// ProspectSource loads prospects for prompt context.
type ProspectSource interface {
	GetProspect(ctx context.Context, prospectID string) (*domain.Prospect, error)
}

// TrackingRecorder persists the tracking record for a generated email.
type TrackingRecorder interface {
	CreateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error
}

// GenerateRequest identifies what to generate.
type GenerateRequest struct {
	ProspectID  string      `json:"prospect_id"`
	CampaignID  int64       `json:"campaign_id"`
	Room        domain.Room `json:"room"`
	EmailNumber int         `json:"email_number"`
	IncludeURL  string      `json:"include_url,omitempty"`
}

// GenerateResponse is what GenerateAndTrack hands back to the caller.
type GenerateResponse struct {
	TrackingID    uuid.UUID   `json:"tracking_id"`
	TrackingToken string      `json:"tracking_token"`
	Subject       string      `json:"subject"`
	BodyHTML      string      `json:"body_html"`
	BodyText      string      `json:"body_text"`
	GeneratedByAI bool        `json:"generated_by_ai"`
	Room          domain.Room `json:"room"`
	CostUSD       float64     `json:"cost_usd"`
}

// Service orchestrates one generation: rate check, template pick,
// prompt render, model call with fallback, usage accounting, and the
// tracking record.
type Service struct {
	generator Generator
	templates *templates.Service
	renderer  *templates.PromptRenderer
	limiter   *RateLimiter
	prospects ProspectSource
	records   TrackingRecorder

	timeout    time.Duration
	estTokens  int
	inputRate  float64
	outputRate float64
}

// NewService wires the generation pipeline. estTokens is the per-call
// token estimate reserved at rate-check time.
func NewService(
	gen Generator,
	tmpl *templates.Service,
	renderer *templates.PromptRenderer,
	limiter *RateLimiter,
	prospects ProspectSource,
	records TrackingRecorder,
	timeout time.Duration,
	estTokens int,
	inputRate, outputRate float64,
) *Service {
	if estTokens <= 0 {
		estTokens = 2000
	}
	return &Service{
		generator:  gen,
		templates:  tmpl,
		renderer:   renderer,
		limiter:    limiter,
		prospects:  prospects,
		records:    records,
		timeout:    timeout,
		estTokens:  estTokens,
		inputRate:  inputRate,
		outputRate: outputRate,
	}
}

// GenerateAndTrack runs the full pipeline. A model failure falls back
// to a deterministic render of the template sections. A record is
// never left pending without a body: if even the fallback yields no
// content the record is created as failed.
func (s *Service) GenerateAndTrack(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.ProspectID == "" {
		return nil, fmt.Errorf("%w: prospect_id is required", domain.ErrValidation)
	}
	if !req.Room.Valid() {
		return nil, fmt.Errorf("%w: unknown room %q", domain.ErrValidation, req.Room)
	}
	if req.EmailNumber < 1 {
		req.EmailNumber = 1
	}

	prospect, err := s.prospects.GetProspect(ctx, req.ProspectID)
	if err != nil {
		return nil, fmt.Errorf("load prospect: %w", err)
	}

	// Reserve budget before doing any work. Denial consumes nothing.
	if err := s.limiter.Check(ctx, prospect.ClientID, s.estTokens); err != nil {
		return nil, err
	}

	tmpl, err := s.templates.Pick(ctx, req.CampaignID, req.Room, req.EmailNumber)
	if err != nil {
		s.release(ctx, prospect.ClientID)
		return nil, err
	}

	prospectCtx := templates.ProspectContext(prospect)
	prompt, err := s.renderer.Render(tmpl, prospectCtx)
	if err != nil {
		s.release(ctx, prospect.ClientID)
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	result, generatedByAI := s.generate(ctx, prompt, tmpl, prospectCtx)

	cost := Cost(result.PromptTokens, result.CompletionTokens, s.inputRate, s.outputRate)
	if err := s.limiter.Record(ctx, prospect.ClientID, s.estTokens, result.PromptTokens, result.CompletionTokens, cost); err != nil {
		logger.Warn("usage accounting failed", "client_id", prospect.ClientID, "error", err.Error())
	}

	// A fallback over a template with no body sections produces
	// nothing usable. The attempt is still recorded, as failed, so
	// the slot it consumed is auditable.
	status := domain.EmailPending
	if result.BodyText == "" && result.BodyHTML == "" {
		status = domain.EmailFailed
	}

	templateID := tmpl.ID
	rec := &domain.EmailTrackingRecord{
		ID:               uuid.New(),
		ProspectID:       prospect.ID,
		EmailNumber:      req.EmailNumber,
		Room:             req.Room,
		Subject:          result.Subject,
		BodyHTML:         result.BodyHTML,
		BodyText:         result.BodyText,
		GeneratedByAI:    generatedByAI,
		TemplateUsed:     &templateID,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		URLIncluded:      req.IncludeURL,
		TrackingToken:    uuid.NewString(),
		Status:           status,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.records.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create tracking record: %w", err)
	}

	if status == domain.EmailFailed {
		logger.Warn("generation produced no content",
			"tracking_id", rec.ID.String(),
			"prospect_id", prospect.ID,
			"template_id", templateID.String())
		return nil, fmt.Errorf("%w: no usable content from model or fallback", domain.ErrGenerationFailed)
	}

	logger.Info("email generated",
		"tracking_id", rec.ID.String(),
		"prospect_id", prospect.ID,
		"room", string(req.Room),
		"generated_by_ai", generatedByAI,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"cost_usd", cost)

	return &GenerateResponse{
		TrackingID:    rec.ID,
		TrackingToken: rec.TrackingToken,
		Subject:       rec.Subject,
		BodyHTML:      rec.BodyHTML,
		BodyText:      rec.BodyText,
		GeneratedByAI: generatedByAI,
		Room:          req.Room,
		CostUSD:       cost,
	}, nil
}

// generate calls the model under a timeout and falls back to the
// static template path on any failure. The fallback never fails.
func (s *Service) generate(ctx context.Context, prompt string, tmpl domain.Template, prospectCtx map[string]interface{}) (*Result, bool) {
	if s.generator != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		result, err := s.generator.Generate(callCtx, prompt)
		if err == nil {
			return result, true
		}
		logger.Warn("model call failed, using static fallback",
			"template_id", tmpl.ID.String(), "error", err.Error())
	}
	return StaticFallback(tmpl, s.renderer, prospectCtx), false
}

func (s *Service) release(ctx context.Context, clientID string) {
	if err := s.limiter.Release(ctx, clientID, s.estTokens); err != nil {
		logger.Warn("reservation release failed", "client_id", clientID, "error", err.Error())
	}
}

// StaticFallback builds deterministic content from the template's own
// sections when no model output is available. Token counts are zero
// because no model was called.
func StaticFallback(tmpl domain.Template, renderer *templates.PromptRenderer, prospectCtx map[string]interface{}) *Result {
	render := func(key string) string {
		src, ok := tmpl.PromptSections[key]
		if !ok || src == "" {
			return ""
		}
		out, err := renderer.Render(domain.Template{PromptSections: map[string]string{key: src}}, prospectCtx)
		if err != nil {
			return src
		}
		return out
	}

	subject := render(domain.SectionObjective)
	if subject == "" {
		subject = tmpl.Name
	}
	subject = firstLine(subject)

	var body []string
	for _, key := range []string{domain.SectionContext, domain.SectionStructure, domain.SectionCallToAction} {
		if part := render(key); part != "" {
			body = append(body, part)
		}
	}
	bodyText := strings.Join(body, "\n\n")
	if bodyText == "" {
		bodyText = subject
	}

	var html strings.Builder
	for _, para := range strings.Split(bodyText, "\n\n") {
		html.WriteString("<p>")
		html.WriteString(para)
		html.WriteString("</p>\n")
	}

	return &Result{
		Subject:  subject,
		BodyHTML: html.String(),
		BodyText: bodyText,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
