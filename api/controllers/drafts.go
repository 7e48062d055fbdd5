package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/angelmondragon/gearmarket-web/api/middleware"
	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/api/validators"
	"github.com/angelmondragon/gearmarket-web/internal/drafts"
	"github.com/angelmondragon/gearmarket-web/internal/gallery"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
	"github.com/angelmondragon/gearmarket-web/internal/uploads"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
)

const (
	uploadField      = "images"
	multipartMemory  = 8 << 20
	payloadTooLarge  = "업로드 용량이 너무 큽니다."
	multipartMissing = "이미지 파일을 선택해주세요."
)

type openDraftRequest struct {
	GearID int64 `json:"gearId" validate:"omitempty,gt=0"`
}

type representativeRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

type reorderRequest struct {
	From *int `json:"from" validate:"required,gte=0"`
	To   *int `json:"to" validate:"required,gte=0"`
}

type dragStartRequest struct {
	Index    *int        `json:"index" validate:"required,gte=0"`
	PointerX float64     `json:"pointerX"`
	PointerY float64     `json:"pointerY"`
	Box      gallery.Box `json:"box"`
}

type dragMoveRequest struct {
	PointerX float64       `json:"pointerX"`
	PointerY float64       `json:"pointerY"`
	Boxes    []gallery.Box `json:"boxes"`
}

// DraftHandlers serves the image gallery editor. Every route sits behind
// RequireSession, so the session id is always in the context.
type DraftHandlers struct {
	svc     drafts.Service
	uploads config.UploadsConfig
	logg    *logger.Logger
}

func NewDraftHandlers(svc drafts.Service, cfg config.UploadsConfig, logg *logger.Logger) *DraftHandlers {
	return &DraftHandlers{svc: svc, uploads: cfg, logg: logg}
}

func (h *DraftHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	responses.WriteError(r.Context(), h.logg, w, err)
}

func (h *DraftHandlers) Open(w http.ResponseWriter, r *http.Request) {
	var body openDraftRequest
	if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Open(r.Context(), middleware.SessionIDFromContext(r.Context()), body.GearID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, view)
}

func (h *DraftHandlers) Get(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.View(r.Context(), sessionID, draftID)
	})
}

func (h *DraftHandlers) Discard(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		if err := h.svc.Discard(r.Context(), sessionID, draftID); err != nil {
			return nil, err
		}
		return map[string]any{"id": draftID, "discarded": true}, nil
	})
}

// Attach accepts the multipart "images" field. Files past the gallery's capacity
// and non-image files are dropped with a warning rather than failing the request.
func (h *DraftHandlers) Attach(w http.ResponseWriter, r *http.Request) {
	draftID, err := validators.PathParam(r, "draftId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, payloadTooLarge))
			return
		}
		h.fail(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, multipartMissing))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		h.fail(w, r, pkgerrors.New(pkgerrors.CodeValidation, multipartMissing).WithDetails(map[string]any{"field": uploadField}))
		return
	}

	files, err := uploads.FromMultipart(headers, h.uploads.MaxFileBytes)
	if err != nil {
		h.fail(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, multipartMissing))
		return
	}

	result, err := h.svc.Attach(r.Context(), middleware.SessionIDFromContext(r.Context()), draftID, files)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	responses.WriteSuccess(w, result)
}

// Preview streams an uploaded file back so the editor can show it before submit.
// format=dataurl returns it inline as a data URL instead.
func (h *DraftHandlers) Preview(w http.ResponseWriter, r *http.Request) {
	draftID, err := validators.PathParam(r, "draftId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := validators.PathParam(r, "itemId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	meta, data, err := h.svc.Preview(r.Context(), middleware.SessionIDFromContext(r.Context()), draftID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "dataurl" {
		responses.WriteSuccess(w, map[string]string{"dataUrl": uploads.DataURL(uploads.File{MIME: meta.MIME, Data: data})})
		return
	}

	w.Header().Set("Content-Type", meta.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *DraftHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	itemID, err := validators.PathParam(r, "itemId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.Remove(r.Context(), sessionID, draftID, itemID)
	})
}

func (h *DraftHandlers) SetRepresentative(w http.ResponseWriter, r *http.Request) {
	var body representativeRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.SetRepresentative(r.Context(), sessionID, draftID, body.ItemID)
	})
}

func (h *DraftHandlers) Reorder(w http.ResponseWriter, r *http.Request) {
	var body reorderRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.Reorder(r.Context(), sessionID, draftID, *body.From, *body.To)
	})
}

func (h *DraftHandlers) DragStart(w http.ResponseWriter, r *http.Request) {
	var body dragStartRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.PointerDown(r.Context(), sessionID, draftID, *body.Index, body.PointerX, body.PointerY, body.Box)
	})
}

func (h *DraftHandlers) DragMove(w http.ResponseWriter, r *http.Request) {
	var body dragMoveRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.PointerMove(r.Context(), sessionID, draftID, body.PointerX, body.PointerY, body.Boxes)
	})
}

func (h *DraftHandlers) DragEnd(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.PointerUp(r.Context(), sessionID, draftID)
	})
}

func (h *DraftHandlers) DragCancel(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, func(sessionID, draftID string) (any, error) {
		return h.svc.Cancel(r.Context(), sessionID, draftID)
	})
}

// Submit validates the listing form against the draft's gallery and creates or
// updates the listing. The draft is discarded only when the API accepts it.
func (h *DraftHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var form gears.ListingForm
	if err := validators.DecodeJSON(r, &form); err != nil {
		h.fail(w, r, err)
		return
	}
	draftID, err := validators.PathParam(r, "draftId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	gear, err := h.svc.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), draftID, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, gear)
}

func (h *DraftHandlers) withDraft(w http.ResponseWriter, r *http.Request, fn func(sessionID, draftID string) (any, error)) {
	draftID, err := validators.PathParam(r, "draftId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := fn(middleware.SessionIDFromContext(r.Context()), draftID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	responses.WriteSuccess(w, out)
}

func (h *DraftHandlers) maxRequestBytes() int64 {
	limits := h.uploads
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = uploads.DefaultMaxFiles
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = uploads.DefaultMaxFileBytes
	}
	// Room for a few files past the limit so they can be dropped with a warning.
	return int64(limits.MaxFiles+2)*(limits.MaxFileBytes+1) + 1<<20
}
