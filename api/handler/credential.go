package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/api/transport"
	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/pkg/httpcontext"
	credentialUC "github.com/dhanadurga/backend/usecase/credential"
)

type CredentialHandler struct {
	baseHandler
	vault *credentialUC.Vault
}

func NewCredentialHandler(vault *credentialUC.Vault, adapter *httpcontext.Adapter, logger *zap.Logger) *CredentialHandler {
	return &CredentialHandler{
		baseHandler: newBaseHandler(adapter, logger),
		vault:       vault,
	}
}

// @Summary List credentials (decrypted)
// @Tags credentials
// @Router /api/v1/credentials [get]
func (h *CredentialHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	creds, err := h.vault.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if creds == nil {
		creds = []domain.Credential{}
	}
	h.respondSuccess(ctx, http.StatusOK, creds)
}

// @Summary Store a credential
// @Tags credentials
// @Router /api/v1/credentials [post]
func (h *CredentialHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CredentialRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.ServiceName == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.vault.Create(stdCtx, &domain.Credential{
		UserID:          userID,
		ServiceName:     req.ServiceName,
		IdentifierType:  req.IdentifierType,
		IdentifierValue: req.IdentifierValue,
		Password:        req.Password,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	// Never echo the stored secret back on create.
	created.Password = ""
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a credential
// @Tags credentials
// @Router /api/v1/credentials/{id} [put]
func (h *CredentialHandler) Update(ctx *fasthttp.RequestCtx) {
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

	if err := h.vault.Update(stdCtx, userID, id, patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete a credential
// @Tags credentials
// @Router /api/v1/credentials/{id} [delete]
func (h *CredentialHandler) Delete(ctx *fasthttp.RequestCtx) {
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

	if err := h.vault.Delete(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
