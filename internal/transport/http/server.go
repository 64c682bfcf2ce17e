package http

import (
	"github.com/gin-gonic/gin"

	"ocrqa/internal/bootstrap"
	"ocrqa/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	fileHandler := handler.NewFileHandler(app.Files, app.RAG, app.Config.Upload.MaxSizeMB)
	ocrHandler := handler.NewOCRHandler(app.RAG, app.Files)
	queryHandler := handler.NewQueryHandler(app.RAG)

	v1 := router.Group("/api/v1")
	v1.POST("/upload", fileHandler.Upload)
	v1.GET("/files", fileHandler.List)
	v1.DELETE("/files/:uuid", fileHandler.Delete)

	v1.POST("/ocr", ocrHandler.Ingest)
	v1.DELETE("/ocr/:uuid", ocrHandler.Delete)

	v1.POST("/extract", queryHandler.Extract)

	return router
}
