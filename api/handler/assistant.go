package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/api/transport"
	"github.com/dhanadurga/backend/pkg/httpcontext"
	assistantUC "github.com/dhanadurga/backend/usecase/assistant"
)

type AssistantHandler struct {
	baseHandler
	svc *assistantUC.Service
}

func NewAssistantHandler(svc *assistantUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary One assistant chat turn
// @Tags ai
// @Router /api/v1/ai/chat [post]
func (h *AssistantHandler) Chat(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ChatRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Message == "" {
		h.badRequest(ctx, "message is required")
		return
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			h.badRequest(ctx, "image must be base64")
			return
		}
		image = decoded
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.svc.Chat(stdCtx, userID, h.userEmail(ctx), req.Message, image, req.ImageMIME)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
