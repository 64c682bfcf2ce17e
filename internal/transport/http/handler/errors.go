package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocrqa/internal/app"
	"ocrqa/internal/blobstore"
	"ocrqa/internal/transport/http/response"
	"ocrqa/internal/translate"
	"ocrqa/internal/vectorstore"
)

func isUnsupportedType(err error) bool {
	return errors.Is(err, app.ErrUnsupportedContentType)
}

// writeServiceError maps the service error taxonomy onto the response
// envelope. Anything unrecognized stays a generic 500 so dependency
// internals never leak to clients.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrUnsupportedContentType):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedType, err.Error())
	case errors.Is(err, app.ErrNotFound), errors.Is(err, blobstore.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, translate.ErrTranslationFailed):
		response.Error(c, http.StatusBadGateway, response.CodeTranslationFailed, err.Error())
	case errors.Is(err, app.ErrAnswerGenerationFailed):
		response.Error(c, http.StatusBadGateway, response.CodeAnswerFailed, err.Error())
	case errors.Is(err, vectorstore.ErrIndexUnavailable):
		response.Error(c, http.StatusServiceUnavailable, response.CodeIndexUnavailable, err.Error())
	case errors.Is(err, vectorstore.ErrDimensionMismatch):
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "internal error")
	}
}
