package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/api/transport"
	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/pkg/httpcontext"
	habitUC "github.com/dhanadurga/backend/usecase/habit"
)

type HabitHandler struct {
	baseHandler
	svc *habitUC.Service
}

func NewHabitHandler(svc *habitUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary List habits
// @Tags habits
// @Router /api/v1/habits [get]
func (h *HabitHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	habits, err := h.svc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if habits == nil {
		habits = []domain.Habit{}
	}
	h.respondSuccess(ctx, http.StatusOK, habits)
}

// @Summary Create a habit
// @Tags habits
// @Router /api/v1/habits [post]
func (h *HabitHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.HabitRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Title == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.svc.Create(stdCtx, &domain.Habit{
		UserID:    userID,
		Title:     req.Title,
		Frequency: req.Frequency,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Toggle a habit's completion for one date
// @Tags habits
// @Router /api/v1/habits/{id}/toggle [post]
func (h *HabitHandler) Toggle(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.badRequest(ctx, "missing id")
		return
	}

	var req transport.HabitToggleRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Date == "" {
		h.badRequest(ctx, "date is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	done, err := h.svc.Toggle(stdCtx, userID, id, req.Date)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"date":      req.Date,
		"completed": done,
	})
}

// @Summary Update a habit
// @Tags habits
// @Router /api/v1/habits/{id} [put]
func (h *HabitHandler) Update(ctx *fasthttp.RequestCtx) {
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

// @Summary Delete a habit
// @Tags habits
// @Router /api/v1/habits/{id} [delete]
func (h *HabitHandler) Delete(ctx *fasthttp.RequestCtx) {
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
