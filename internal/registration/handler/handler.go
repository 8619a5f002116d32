package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"enroll/internal/registration/models"
	id "enroll/pkg/domain"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/httputil"
	"enroll/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the wizard as seen by the HTTP surface.
type Service interface {
	Start(ctx context.Context) (*models.Snapshot, error)
	Get(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
	Close(ctx context.Context, sessionID id.SessionID) error
	SubmitData(ctx context.Context, sessionID id.SessionID, form *models.UserData, confirmed bool) (*models.Snapshot, error)
	ContinueValidation(ctx context.Context, sessionID id.SessionID, acct models.ExistingAccount) (*models.Snapshot, error)
	AttachDocument(ctx context.Context, sessionID id.SessionID, side models.Side, mimeType string, size int64, data []byte) (*models.Snapshot, error)
	RemoveDocument(ctx context.Context, sessionID id.SessionID, side models.Side) (*models.Snapshot, error)
	SaveImages(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
	RequestOTP(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
	SubmitCodes(ctx context.Context, sessionID id.SessionID, emailCode, phoneCode string) (*models.Snapshot, error)
	Resend(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
	Back(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
	Reset(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
}

// Handler serves the registration wizard over HTTP.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Register mounts the registration routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", h.handleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleClose)
			r.Post("/data", h.handleSubmitData)
			r.Post("/continue", h.handleContinue)
			r.Post("/documents", h.withSession(h.service.SaveImages))
			r.Put("/documents/{side}", h.handleAttachDocument)
			r.Delete("/documents/{side}", h.handleRemoveDocument)
			r.Post("/otp", h.withSession(h.service.RequestOTP))
			r.Post("/otp/confirm", h.handleConfirmCodes)
			r.Post("/otp/resend", h.withSession(h.service.Resend))
			r.Post("/back", h.withSession(h.service.Back))
			r.Post("/reset", h.withSession(h.service.Reset))
		})
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Start(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to start registration", err)
		return
	}
	w.Header().Set("Location", "/registrations/"+snap.ID)
	httputil.WriteJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withSession(h.service.Get)(w, r)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	sessionID, ctx, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	if err := h.service.Close(ctx, sessionID); err != nil {
		h.fail(ctx, w, "failed to close registration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmitData(w http.ResponseWriter, r *http.Request) {
	sessionID, ctx, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	var req SubmitDataRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid submit data request", err)
		return
	}
	h.respond(ctx, w, "data submission failed")(h.service.SubmitData(ctx, sessionID, req.User, req.Confirmed))
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	sessionID, ctx, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	var acct models.ExistingAccount
	if err := decodeJSON(r, &acct); err != nil {
		h.fail(ctx, w, "invalid continue validation request", err)
		return
	}
	h.respond(ctx, w, "continue validation failed")(h.service.ContinueValidation(ctx, sessionID, acct))
}

func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	sessionID, ctx, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	side, err := models.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		h.fail(ctx, w, "invalid document side", err)
		return
	}
	upload, err := readUpload(w, r)
	if err != nil {
		h.fail(ctx, w, "invalid document upload", err)
		return
	}
	h.respond(ctx, w, "document attach failed")(
		h.service.AttachDocument(ctx, sessionID, side, upload.MimeType, upload.Size, upload.Data))
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	sessionID, ctx, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	side, err := models.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		h.fail(ctx, w, "invalid document side", err)
		return
	}
	h.respond(ctx, w, "document removal failed")(h.service.RemoveDocument(ctx, sessionID, side))
}

func (h *Handler) handleConfirmCodes(w http.ResponseWriter, r *http.Request) {
	sessionID, ctx, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	var req ConfirmCodesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid confirm codes request", err)
		return
	}
	h.respond(ctx, w, "code confirmation failed")(h.service.SubmitCodes(ctx, sessionID, req.EmailCode, req.PhoneCode))
}

// withSession adapts a flow that needs nothing but the session id.
func (h *Handler) withSession(fn func(context.Context, id.SessionID) (*models.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ctx, ok := h.sessionFromPath(w, r)
		if !ok {
			return
		}
		h.respond(ctx, w, "registration flow failed")(fn(ctx, sessionID))
	}
}

func (h *Handler) sessionFromPath(w http.ResponseWriter, r *http.Request) (id.SessionID, context.Context, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(r.Context(), w, "invalid session id", dErrors.Wrap(err, dErrors.CodeNotFound, "registration session not found"))
		return id.SessionID{}, nil, false
	}
	return sessionID, requestcontext.WithSessionID(r.Context(), sessionID), true
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, failure string) func(*models.Snapshot, error) {
	return func(snap *models.Snapshot, err error) {
		if err != nil {
			h.fail(ctx, w, failure, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, snap)
	}
}

// fail logs at a level matching the error and renders it.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	args := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
	if sid := requestcontext.SessionID(ctx); !sid.IsNil() {
		args = append(args, "session_id", sid.String())
	}
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
