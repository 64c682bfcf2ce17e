package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ocrqa/internal/app"
	"ocrqa/internal/pkg/pdfextract"
	"ocrqa/internal/transport/http/response"
)

type OCRHandler struct {
	rag   *app.RAGService
	files *app.FileService
}

// transcriptPayload is the mock-OCR result format: the OCR engine itself is
// an external collaborator, its output arrives as a JSON file.
type transcriptPayload struct {
	Text string `json:"text"`
}

func NewOCRHandler(rag *app.RAGService, files *app.FileService) *OCRHandler {
	return &OCRHandler{rag: rag, files: files}
}

// Ingest indexes a document's transcript under its uuid. The multipart form
// carries "file_uuid", an optional "transcript" JSON file, and
// "do_translate" (default true). Without a transcript file the handler
// falls back to extracting text from the stored blob when it is a PDF.
func (h *OCRHandler) Ingest(c *gin.Context) {
	uuid := strings.TrimSpace(c.PostForm("file_uuid"))
	if uuid == "" {
		uuid = strings.TrimSpace(c.Query("file_uuid"))
	}
	if uuid == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file_uuid")
		return
	}
	doTranslate := parseBoolDefault(c.DefaultPostForm("do_translate", c.DefaultQuery("do_translate", "true")), true)

	text, ok := h.resolveTranscript(c, uuid)
	if !ok {
		return
	}

	if err := h.rag.Ingest(c.Request.Context(), uuid, text, doTranslate); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"file_uuid": uuid, "translated": doTranslate})
}

// Delete removes all embeddings for the uuid under both language tags.
// Safe to repeat: deleting an unknown uuid is a no-op.
func (h *OCRHandler) Delete(c *gin.Context) {
	uuid := strings.TrimSpace(c.Param("uuid"))
	if uuid == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document uuid")
		return
	}
	if err := h.rag.DeleteEmbeddings(c.Request.Context(), uuid); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted_uuid": uuid})
}

func (h *OCRHandler) resolveTranscript(c *gin.Context, uuid string) (string, bool) {
	fileHeader, err := c.FormFile("transcript")
	if err == nil {
		if ct := fileHeader.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "transcript must be a json file")
			return "", false
		}
		f, err := fileHeader.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read transcript")
			return "", false
		}
		defer f.Close()

		var payload transcriptPayload
		if err := json.NewDecoder(f).Decode(&payload); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid transcript json")
			return "", false
		}
		if strings.TrimSpace(payload.Text) == "" {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "transcript text is empty")
			return "", false
		}
		return payload.Text, true
	}

	// No transcript supplied: extract from the stored blob if possible.
	data, contentType, err := h.files.GetBlob(c.Request.Context(), uuid)
	if err != nil {
		writeServiceError(c, err)
		return "", false
	}
	if contentType != "application/pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest,
			"missing transcript file and stored document is not a pdf")
		return "", false
	}
	text, err := pdfextract.ExtractText(bytes.NewReader(data))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from pdf: "+err.Error())
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "pdf contains no extractable text")
		return "", false
	}
	return text, true
}

func parseBoolDefault(raw string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return parsed
}
