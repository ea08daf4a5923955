package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/pkg/httpcontext"
	statsUC "github.com/dhanadurga/backend/usecase/stats"
)

type StatsHandler struct {
	baseHandler
	agg *statsUC.Aggregator
}

func NewStatsHandler(agg *statsUC.Aggregator, adapter *httpcontext.Adapter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		agg:         agg,
	}
}

// @Summary Completion, routine and plan statistics
// @Tags stats
// @Router /api/v1/stats [get]
func (h *StatsHandler) Summary(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.agg.Completion(stdCtx, userID, string(ctx.QueryArgs().Peek("category")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summary)
}

// @Summary Per-day totals for the last seven days
// @Tags stats
// @Router /api/v1/stats/weekly [get]
func (h *StatsHandler) Weekly(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	series, err := h.agg.WeeklySeries(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, series)
}
