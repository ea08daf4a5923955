package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/pkg/httpcontext"
	"github.com/dhanadurga/backend/usecase/schedule"
)

type ScheduleHandler struct {
	baseHandler
	engine *schedule.Engine
	// Configured working window, used when the request does not override it.
	workStart string
	workEnd   string
}

func NewScheduleHandler(engine *schedule.Engine, adapter *httpcontext.Adapter, logger *zap.Logger, workStart, workEnd string) *ScheduleHandler {
	return &ScheduleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		workStart:   workStart,
		workEnd:     workEnd,
	}
}

// @Summary Check a proposed time slot for conflicts
// @Tags schedule
// @Router /api/v1/schedule/conflicts [get]
func (h *ScheduleHandler) CheckConflict(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	date := string(args.Peek("date"))
	start := string(args.Peek("start_time"))
	if date == "" || start == "" {
		h.badRequest(ctx, "date and start_time are required")
		return
	}
	end := string(args.Peek("end_time"))
	exclude := string(args.Peek("exclude_id"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	conflicted, colliding, err := h.engine.HasConflict(stdCtx, userID, date, start, end, exclude)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"conflict": conflicted,
		"with":     colliding,
	})
}

// @Summary Free slots within the working window
// @Tags schedule
// @Router /api/v1/schedule/free-slots [get]
func (h *ScheduleHandler) FreeSlots(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	date := string(args.Peek("date"))
	if date == "" {
		h.badRequest(ctx, "date is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	workStart := string(args.Peek("work_start"))
	if workStart == "" {
		workStart = h.workStart
	}
	workEnd := string(args.Peek("work_end"))
	if workEnd == "" {
		workEnd = h.workEnd
	}

	slots, err := h.engine.FreeSlots(stdCtx, userID, date, workStart, workEnd)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if slots == nil {
		slots = []schedule.Slot{}
	}
	h.respondSuccess(ctx, http.StatusOK, slots)
}
