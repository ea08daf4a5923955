package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/api/transport"
	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/pkg/httpcontext"
	noteUC "github.com/dhanadurga/backend/usecase/note"
)

type NoteHandler struct {
	baseHandler
	svc *noteUC.Service
}

func NewNoteHandler(svc *noteUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary List notes
// @Tags notes
// @Router /api/v1/notes [get]
func (h *NoteHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	notes, err := h.svc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	h.respondSuccess(ctx, http.StatusOK, notes)
}

// @Summary Create a note
// @Tags notes
// @Router /api/v1/notes [post]
func (h *NoteHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.NoteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Content == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.svc.Create(stdCtx, &domain.Note{
		UserID:  userID,
		Content: req.Content,
		Date:    req.Date,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a note
// @Tags notes
// @Router /api/v1/notes/{id} [put]
func (h *NoteHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.badRequest(ctx, "missing id")
		return
	}

	var patch map[string]interface{}
	if err := json.Unmarshal(ctx.PostBody(), &patch); err != nil || len(patch) == 0 {
		h.badRequest(ctx, "invalid payload")
		return
	}
	delete(patch, "id")
	delete(patch, "user_id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.Update(stdCtx, userID, id, patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete a note
// @Tags notes
// @Router /api/v1/notes/{id} [delete]
func (h *NoteHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.badRequest(ctx, "missing id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
