package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/generation"
	"github.com/ignite/leadroom/internal/pkg/httputil"
	"github.com/ignite/leadroom/internal/scoring"
	"github.com/ignite/leadroom/internal/settings"
	"github.com/ignite/leadroom/internal/templates"
	"github.com/ignite/leadroom/internal/tracking"
)

// Handlers holds the services the HTTP layer fronts.
type Handlers struct {
	Settings   *settings.Resolver
	Scoring    *scoring.Service
	Templates  *templates.Service
	Generation *generation.Service
	Tracking   *tracking.Service

	startedAt time.Time
}

// NewHandlers wires the handler set.
func NewHandlers(
	settingsSvc *settings.Resolver,
	scoringSvc *scoring.Service,
	templatesSvc *templates.Service,
	generationSvc *generation.Service,
	trackingSvc *tracking.Service,
) *Handlers {
	return &Handlers{
		Settings:   settingsSvc,
		Scoring:    scoringSvc,
		Templates:  templatesSvc,
		Generation: generationSvc,
		Tracking:   trackingSvc,
		startedAt:  time.Now(),
	}
}

// HealthCheck reports liveness and uptime.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// GetSettings returns the fully resolved settings for a client with
// per-axis provenance.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		httputil.BadRequest(w, "clientID is required")
		return
	}
	resolved, err := h.Settings.ResolveSettings(r.Context(), clientID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.OK(w, resolved)
}

type putSettingsRequest struct {
	ThresholdsOverride *domain.RoomThresholds `json:"thresholds_override,omitempty"`
	ScoringOverride    domain.ScoringOverride `json:"scoring_override,omitempty"`
	Version            int                    `json:"version"`
}

// PutSettings saves a client override. Version must match the stored
// row for an update; 0 creates a fresh override.
func (h *Handlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		httputil.BadRequest(w, "clientID is required")
		return
	}
	var req putSettingsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	cs := &domain.ClientSettings{
		ClientID:           clientID,
		ThresholdsOverride: req.ThresholdsOverride,
		ScoringOverride:    req.ScoringOverride,
		Version:            req.Version,
	}
	if err := h.Settings.SaveOverride(r.Context(), cs); err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.OK(w, cs)
}

// DeleteSettings removes a client override so the client reverts to
// global settings.
func (h *Handlers) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		httputil.BadRequest(w, "clientID is required")
		return
	}
	if err := h.Settings.DeleteOverride(r.Context(), clientID); err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.NoContent(w)
}

type scoreRequest struct {
	ClientID   string                    `json:"client_id"`
	Room       domain.Room               `json:"room"`
	Attributes domain.ProspectAttributes `json:"attributes"`
}

// ScoreProspect scores a prospect's attributes under the client's
// resolved rules and classifies the resulting room.
func (h *Handlers) ScoreProspect(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.ClientID == "" {
		httputil.BadRequest(w, "client_id is required")
		return
	}
	score, err := h.Scoring.ScoreProspect(r.Context(), req.ClientID, req.Room, req.Attributes)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.OK(w, score)
}

// GetTemplates returns the merged template list for a campaign room.
func (h *Handlers) GetTemplates(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(chi.URLParam(r, "campaignID"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "campaignID must be an integer")
		return
	}
	room := domain.Room(chi.URLParam(r, "room"))
	merged, err := h.Templates.Resolve(r.Context(), campaignID, room)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"campaign_id": campaignID,
		"room":        room,
		"templates":   merged,
	})
}

type generateResponse struct {
	*generation.GenerateResponse
	OpenURL  string `json:"open_url"`
	ClickURL string `json:"click_url"`
}

// GenerateEmail runs the generation pipeline and returns the content
// with signed tracking URLs.
func (h *Handlers) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req generation.GenerateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	resp, err := h.Generation.GenerateAndTrack(r.Context(), req)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	signer := h.Tracking.Signer()
	httputil.Created(w, generateResponse{
		GenerateResponse: resp,
		OpenURL:          signer.OpenURL(resp.TrackingToken),
		ClickURL:         signer.ClickURL(resp.TrackingToken),
	})
}

type markCopiedRequest struct {
	ProspectID string `json:"prospect_id"`
	URL        string `json:"url"`
}

// MarkCopied records a copy event for a tracking record.
func (h *Handlers) MarkCopied(w http.ResponseWriter, r *http.Request) {
	trackingID, err := uuid.Parse(chi.URLParam(r, "trackingID"))
	if err != nil {
		httputil.BadRequest(w, "trackingID must be a UUID")
		return
	}
	var req markCopiedRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.ProspectID == "" {
		httputil.BadRequest(w, "prospect_id is required")
		return
	}
	rec, err := h.Tracking.MarkCopied(r.Context(), trackingID, req.ProspectID, req.URL)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.OK(w, rec)
}

// trackingPixel is a 1x1 transparent GIF.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackOpen serves the open pixel. The pixel is returned even when the
// event is rejected so broken links do not render in the email client.
func (h *Handlers) TrackOpen(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	sig := chi.URLParam(r, "sig")
	_ = h.Tracking.MarkOpened(r.Context(), token, sig)

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(trackingPixel)
}

// TrackClick records the click and redirects to the destination URL.
func (h *Handlers) TrackClick(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	sig := chi.URLParam(r, "sig")
	dest, err := h.Tracking.MarkClicked(r.Context(), token, sig)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	if dest == "" {
		httputil.NotFound(w, "no destination URL on this email")
		return
	}
	http.Redirect(w, r, dest, http.StatusFound)
}
