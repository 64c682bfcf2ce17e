package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ocrqa/internal/app"
	"ocrqa/internal/transport/http/response"
)

type FileHandler struct {
	files     *app.FileService
	rag       *app.RAGService
	maxSizeMB int
}

func NewFileHandler(files *app.FileService, rag *app.RAGService, maxSizeMB int) *FileHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 20
	}
	return &FileHandler{files: files, rag: rag, maxSizeMB: maxSizeMB}
}

// Upload accepts a multipart form with "file" and registers the artifact.
// The returned uuid is the handle for the OCR and extract endpoints.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if fileHeader.Size > int64(h.maxSizeMB)<<20 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	doc, err := h.files.Upload(c.Request.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		if isUnsupportedType(err) {
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedType,
				"file type not allowed, choose from: "+strings.Join(h.files.AllowedTypes(), ", "))
			return
		}
		writeServiceError(c, err)
		return
	}
	response.OK(c, doc)
}

func (h *FileHandler) List(c *gin.Context) {
	docs, err := h.files.ListDocuments(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, docs)
}

// Delete removes the stored blob, the registry row, and every embedding
// the document owns.
func (h *FileHandler) Delete(c *gin.Context) {
	uuid := strings.TrimSpace(c.Param("uuid"))
	if uuid == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document uuid")
		return
	}
	if err := h.rag.DeleteEmbeddings(c.Request.Context(), uuid); err != nil {
		writeServiceError(c, err)
		return
	}
	if err := h.files.Delete(c.Request.Context(), uuid); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted_uuid": uuid})
}
