package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ocrqa/internal/app"
	"ocrqa/internal/transport/http/response"
)

type QueryHandler struct {
	rag *app.RAGService
}

func NewQueryHandler(rag *app.RAGService) *QueryHandler {
	return &QueryHandler{rag: rag}
}

type extractRequest struct {
	// FileUUID carries one or more document uuids separated by commas,
	// ordered by the caller's priority.
	FileUUID    string `json:"file_uuid" binding:"required"`
	Query       string `json:"query" binding:"required"`
	DoTranslate *bool  `json:"do_translate"`
}

// Extract answers a question against the named documents. When
// do_translate is set (the default) the question is also translated and
// matched against the translated chunks, widening recall across languages.
func (h *QueryHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file_uuid and query are required")
		return
	}

	doTranslate := true
	if req.DoTranslate != nil {
		doTranslate = *req.DoTranslate
	}

	ids := splitUUIDs(req.FileUUID)
	answer, err := h.rag.Ask(c.Request.Context(), ids, req.Query, doTranslate)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, answer)
}

func splitUUIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
