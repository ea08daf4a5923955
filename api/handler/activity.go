package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/pkg/httpcontext"
	activityUC "github.com/dhanadurga/backend/usecase/activity"
)

type ActivityHandler struct {
	baseHandler
	store *activityUC.Store
}

func NewActivityHandler(store *activityUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary List activities
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	query := activityUC.Query{
		Category: string(args.Peek("category")),
		Date:     string(args.Peek("date")),
		Status:   string(args.Peek("status")),
		Period:   string(args.Peek("period")),
		DateFrom: string(args.Peek("date_from")),
		DateTo:   string(args.Peek("date_to")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.store.FindMany(stdCtx, userID, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if items == nil {
		items = []domain.Activity{}
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary Create an activity
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *ActivityHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var item domain.Activity
	if err := json.Unmarshal(ctx.PostBody(), &item); err != nil || item.Title == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}
	item.UserID = userID

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.store.Create(stdCtx, &item)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get one activity
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *ActivityHandler) Get(ctx *fasthttp.RequestCtx) {
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

	item, _, err := h.store.GetByID(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, item)
}

// @Summary Update an activity
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *ActivityHandler) Update(ctx *fasthttp.RequestCtx) {
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

	updated, err := h.store.UpdateByID(stdCtx, id, userID, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if updated == nil {
		// The write went to the offline buffer; there is no fresh copy
		// to return yet.
		h.respondSuccess(ctx, http.StatusAccepted, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete an activity
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *ActivityHandler) Delete(ctx *fasthttp.RequestCtx) {
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

	if err := h.store.DeleteByID(stdCtx, id, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
