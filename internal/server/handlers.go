package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hubrr/internal/crypto"
	"hubrr/internal/directory"
	"hubrr/internal/domain"
	"hubrr/internal/registry"
	"hubrr/pkg/logger"
)

// KeysHandler serves bundle upload and lookup.
type KeysHandler struct {
	reg     registry.Registry
	log     *logger.Logger
	metrics *Metrics
}

func NewKeysHandler(reg registry.Registry, l *logger.Logger, m *Metrics) *KeysHandler {
	return &KeysHandler{reg: reg, log: l, metrics: m}
}

func (h *KeysHandler) Upload(c *gin.Context) {
	var dto directory.BundleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.metrics.Uploads.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid json body", CodeInvalidRequest))
		return
	}

	b, err := dto.Bundle()
	if err == nil {
		err = b.Validate()
	}
	if err == nil && !crypto.VerifySignedPreKey(b) {
		err = errors.New("signed prekey signature does not verify")
	}
	if err != nil {
		h.metrics.Uploads.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error(), CodeInvalidBundle))
		return
	}

	owner := b.DeviceID.String()
	if subject, ok := c.Get(subjectKey); ok {
		owner = subject.(string)
	}

	if err := h.reg.Put(c.Request.Context(), owner, directory.FromBundle(b)); err != nil {
		h.metrics.Uploads.WithLabelValues("error").Inc()
		h.log.With(c.Request.Context()).Error("store bundle", zap.String("owner", owner), zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse("storage error", CodeInternal))
		return
	}

	h.metrics.Uploads.WithLabelValues("ok").Inc()
	h.log.With(c.Request.Context()).Info("bundle stored",
		zap.String("owner", owner),
		zap.String("device_id", b.DeviceID.String()),
		zap.String("fingerprint", crypto.Fingerprint(b.IdentityPub).String()))
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"owner": owner}))
}

// Fetch answers with the bare bundle JSON, or 404 when nothing was published.
func (h *KeysHandler) Fetch(c *gin.Context) {
	peer := strings.TrimSpace(c.Param("peer"))
	if peer == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse("missing peer", CodeInvalidRequest))
		return
	}

	dto, ok, err := h.reg.Get(c.Request.Context(), peer)
	if err != nil {
		h.metrics.Fetches.WithLabelValues("error").Inc()
		h.log.With(c.Request.Context()).Error("load bundle", zap.String("peer", peer), zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse("storage error", CodeInternal))
		return
	}
	if !ok {
		h.metrics.Fetches.WithLabelValues("miss").Inc()
		c.JSON(http.StatusNotFound, NewErrorResponse(domain.ErrNotFound.Error(), CodeNotFound))
		return
	}

	h.metrics.Fetches.WithLabelValues("hit").Inc()
	c.JSON(http.StatusOK, dto)
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": "ok"}))
}
