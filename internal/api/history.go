package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	env *Env
}

func NewHistoryHandler(env *Env) *HistoryHandler {
	return &HistoryHandler{env: env}
}

// List pages call history; a verified super admin sees every tenant's calls.
func (h *HistoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	all, err := h.env.isSuperAdmin(c)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	out, err := h.env.Gateway.For(currentSession(c)).History(c.Request.Context(), page, limit, all)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HistoryHandler) Sync(c *gin.Context) {
	all, err := h.env.isSuperAdmin(c)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	out, err := h.env.Gateway.For(currentSession(c)).SyncCallResults(c.Request.Context(), all)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", nonEmpty(out))
}

func (h *HistoryHandler) Stats(c *gin.Context) {
	out, err := h.env.Gateway.For(currentSession(c)).CallStats(c.Request.Context())
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", nonEmpty(out))
}
