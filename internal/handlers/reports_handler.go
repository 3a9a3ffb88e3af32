package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"irisai/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
	logger  *zap.Logger
}

func NewReportHandler(service *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{Service: service, logger: logger}
}

// @Summary      Pipeline summary
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  services.PipelineSummary
// @Router       /reports/pipeline [get]
func (h *ReportHandler) Pipeline(c *gin.Context) {
	data, err := h.Service.Pipeline(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Pipeline summary as PDF
// @Tags         Reports
// @Produce      application/pdf
// @Success      200  {file}  file
// @Router       /reports/pipeline.pdf [get]
func (h *ReportHandler) PipelinePDF(c *gin.Context) {
	out, err := h.Service.PipelinePDF(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	filename := fmt.Sprintf("pipeline_%s.pdf", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", out)
}
