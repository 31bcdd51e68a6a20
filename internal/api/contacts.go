package api

import (
	"fmt"
	"net/http"

	"voice-console/internal/importer"
	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20

type ContactHandler struct {
	env *Env
}

func NewContactHandler(env *Env) *ContactHandler {
	return &ContactHandler{env: env}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, err := h.env.Gateway.For(currentSession(c)).Contacts(c.Request.Context(), c.Query("list_id"))
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req models.ContactInput
	if !bind(c, &req) {
		return
	}
	s := currentSession(c)
	if req.TenantID == "" {
		req.TenantID = tenantOf(s)
	}
	contact, err := h.env.Gateway.For(s).CreateContact(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// ImportCSV parses an uploaded CSV and bulk-creates its valid rows.
func (h *ContactHandler) ImportCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	s := currentSession(c)
	res, err := importer.ParseCSV(file, tenantOf(s), c.PostForm("list_id"))
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	if len(res.Contacts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no rows with both name and phone", "skipped": res.Skipped})
		return
	}

	out, err := h.env.Gateway.For(s).BulkCreateContacts(c.Request.Context(), res.Contacts)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	h.env.Logger.Info("contacts imported", zap.String("session_id", s.ID), zap.Int("imported", len(res.Contacts)), zap.Int("skipped", res.Skipped))
	c.JSON(http.StatusOK, gin.H{"imported": len(res.Contacts), "skipped": res.Skipped, "result": jsonOrNull(out)})
}

// ImportExcel forwards a spreadsheet upload to the backend untouched.
func (h *ContactHandler) ImportExcel(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	file, hdr, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	out, err := h.env.Gateway.For(currentSession(c)).ImportExcel(c.Request.Context(), hdr.Filename, file)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", nonEmpty(out))
}

func (h *ContactHandler) ExportContacts(c *gin.Context) {
	listID := c.Query("list_id")
	contacts, err := h.env.Gateway.For(currentSession(c)).Contacts(c.Request.Context(), listID)
	if err != nil {
		h.env.respondError(c, err)
		return
	}

	filename := "contacts.csv"
	if listID != "" {
		filename = fmt.Sprintf("contacts-%s.csv", listID)
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := importer.WriteCSV(c.Writer, contacts); err != nil {
		h.env.Logger.Error("writing csv export", zap.Error(err))
	}
}

func (h *ContactHandler) GetLists(c *gin.Context) {
	lists, err := h.env.Gateway.For(currentSession(c)).ContactLists(c.Request.Context())
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (h *ContactHandler) CreateList(c *gin.Context) {
	var req models.CreateContactListRequest
	if !bind(c, &req) {
		return
	}
	l, err := h.env.Gateway.For(currentSession(c)).CreateContactList(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *ContactHandler) GetList(c *gin.Context) {
	l, err := h.env.Gateway.For(currentSession(c)).ContactList(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}
