package server

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pactly/contract-analyzer/constants"
	"github.com/pactly/contract-analyzer/internal/common"
	"github.com/pactly/contract-analyzer/internal/contracts"
)

type ContractHandler struct {
	svc *contracts.Service
	log *slog.Logger
}

func NewContractHandler(svc *contracts.Service, log *slog.Logger) *ContractHandler {
	return &ContractHandler{svc: svc, log: log}
}

// Upload accepts a multipart contract upload and queues it for processing.
func (h *ContractHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		// Fall back to the extension when the client sent a generic type.
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if !constants.IsSupportedContentType(contentType) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "only PDF and DOCX files are supported"})
		return
	}

	contract, err := h.svc.Upload(c.Request.Context(), header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"error":       "a contract with identical content already exists",
				"contract_id": contract.ID,
			})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// Get returns a single contract with its processing state.
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	contract, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// List returns all contracts, newest first.
func (h *ContractHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": out})
}

// Clauses returns the extracted clauses for a contract.
func (h *ContractHandler) Clauses(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	clauses, err := h.svc.Clauses(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clauses": clauses})
}

type searchRequest struct {
	Embedding []float32 `json:"embedding" binding:"required"`
	K         int       `json:"k"`
}

// Search returns the chunks of one contract closest to a query vector.
func (h *ContractHandler) Search(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "embedding vector is required"})
		return
	}
	chunks, err := h.svc.SimilarChunks(c.Request.Context(), id, req.Embedding, req.K)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": chunks})
}

// Delete removes a contract and everything derived from it.
func (h *ContractHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContractHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ContractHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
	case errors.Is(err, common.ErrUnsupportedFormat):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "only PDF and DOCX files are supported"})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.Request.URL.Path, "request_id", GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
