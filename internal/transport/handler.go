package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"plant-care-api/internal/apperrors"
	"plant-care-api/internal/calculator"
	"plant-care-api/internal/config"
	"plant-care-api/internal/feed"
	"plant-care-api/internal/logger"
	"plant-care-api/internal/service"
)

// ErrorResponse is the uniform error body. Messages stay generic; detail goes
// to the log.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the gin router with all routes configured.
func NewHandler(
	analysis service.AnalysisService,
	content service.ContentService,
	aggregator *feed.Aggregator,
	processor *feed.Processor,
	cfg *config.Config,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestSizeLimiter(cfg.MaxRequestBodySize))

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.POST("/analyze", analyzeImage(analysis, cfg))

	calc := api.Group("/calculators")
	calc.POST("/fertilizer", calculatorHandler(calculator.Fertilizer))
	calc.POST("/stocking-rate", calculatorHandler(calculator.Stocking))
	calc.POST("/compost", calculatorHandler(calculator.Compost))
	calc.POST("/spacing", calculatorHandler(calculator.Spacing))
	calc.POST("/rotation", calculatorHandler(calculator.Rotation))

	api.POST("/posts/generate", generatePost(content))
	api.POST("/posts/:id/enhance", enhancePost(content))
	api.POST("/feeds/aggregate", aggregateFeeds(aggregator, processor))

	return r
}

// AnalyzeRequest is the JSON body of the URL-based analyze path. The multipart
// path sends the file under the "image" field instead.
type AnalyzeRequest struct {
	ImageURL string `json:"image_url"`
}

func analyzeImage(analysis service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		if file, err := c.FormFile("image"); err == nil {
			opened, err := file.Open()
			if err != nil {
				respondError(c, apperrors.NewValidationError("failed to read uploaded image", err))
				return
			}
			defer opened.Close()

			record, err := analysis.AnalyzeUpload(ctx, opened)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, record)
			return
		}

		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ImageURL == "" {
			respondError(c, apperrors.NewValidationError("provide an image file or an image_url", err))
			return
		}

		record, err := analysis.AnalyzeURL(ctx, req.ImageURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// calculatorHandler binds the calculator's input struct and runs it. Every
// calculator is a pure function, so the handler shape is shared.
func calculatorHandler[In any, Out any](calculate func(In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, apperrors.NewValidationError("invalid calculator input", err))
			return
		}

		result, err := calculate(input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GenerateRequest is the body of POST /api/posts/generate.
type GenerateRequest struct {
	Topic string `json:"topic"`
}

func generatePost(content service.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Topic == "" {
			respondError(c, apperrors.NewValidationError("topic is required", err))
			return
		}

		post, err := content.Generate(c.Request.Context(), req.Topic)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
	}
}

func enhancePost(content service.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			respondError(c, apperrors.NewValidationError("invalid post id", err))
			return
		}

		post, err := content.Enhance(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
	}
}

// aggregateFeeds is the manual trigger sharing the scheduled job's code path.
func aggregateFeeds(aggregator *feed.Aggregator, processor *feed.Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := aggregator.Run(c.Request.Context())
		if err != nil {
			respondError(c, apperrors.NewInternalError("feed aggregation failed", err))
			return
		}

		processed, err := processor.ProcessPending(c.Request.Context())
		if err != nil {
			respondError(c, apperrors.NewInternalError("content processing failed", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary, "processed": processed})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// respondError maps the typed error onto its HTTP status and a generic
// user-facing message; internal detail is logged, not shown.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)
	if errors.Is(err, context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	message := "Request failed. Please try again."
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			message = appErr.Message
		case apperrors.ErrorTypeNotFound:
			message = appErr.Message
		case apperrors.ErrorTypeDisabled:
			message = appErr.Message
		case apperrors.ErrorTypeProvider, apperrors.ErrorTypeNetwork, apperrors.ErrorTypeProcessing:
			message = "Failed to analyze image. Please try again."
		}
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
