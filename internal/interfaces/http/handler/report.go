package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreport "github.com/expenseally/backend/internal/application/report"
	"github.com/expenseally/backend/internal/infrastructure/export"
)

// ReportHandler handles financial report endpoints. Reports that support
// downloads accept a format query parameter: json (default), csv or xlsx.
type ReportHandler struct {
	BaseHandler
	reportService *appreport.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *appreport.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes mounts the report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/reports")
	{
		grp.GET("/aging", h.Aging)
		grp.GET("/profit-loss", h.ProfitLoss)
		grp.GET("/cash-flow", h.CashFlow)
		grp.GET("/tax", h.Tax)
		grp.GET("/overview", h.BusinessOverview)
		grp.GET("/clients/:id/statement", h.ClientStatement)
		grp.GET("/clients/:id/dashboard", h.ClientDashboard)
	}
}

// Aging godoc
// @Summary      Accounts receivable aging report
// @Tags         reports
// @Produce      json
// @Param        as_of format query string false "Report date (2006-01-02), defaults to today"
// @Param        format query string false "json, csv or xlsx"
// @Success      200 {object} dto.Response{data=report.AgingReport}
// @Router       /reports/aging [get]
func (h *ReportHandler) Aging(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := h.reportService.Aging(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respond(c, report, "aging", func() *export.Document {
		return export.AgingDocument(report)
	})
}

// ProfitLoss godoc
// @Summary      Profit and loss report for a period
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start (2006-01-02)"
// @Param        to query string true "Period end (2006-01-02)"
// @Param        format query string false "json, csv or xlsx"
// @Success      200 {object} dto.Response{data=report.ProfitLossReport}
// @Router       /reports/profit-loss [get]
func (h *ReportHandler) ProfitLoss(c *gin.Context) {
	companyID, filter, ok := h.periodScope(c)
	if !ok {
		return
	}

	report, err := h.reportService.ProfitLoss(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respond(c, report, "profit_loss", func() *export.Document {
		return export.ProfitLossDocument(report)
	})
}

// CashFlow godoc
// @Summary      Cash flow report for a period
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start (2006-01-02)"
// @Param        to query string true "Period end (2006-01-02)"
// @Param        format query string false "json, csv or xlsx"
// @Success      200 {object} dto.Response{data=report.CashFlowReport}
// @Router       /reports/cash-flow [get]
func (h *ReportHandler) CashFlow(c *gin.Context) {
	companyID, filter, ok := h.periodScope(c)
	if !ok {
		return
	}

	report, err := h.reportService.CashFlow(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respond(c, report, "cash_flow", func() *export.Document {
		return export.CashFlowDocument(report)
	})
}

// Tax godoc
// @Summary      Tax summary for a calendar year
// @Tags         reports
// @Produce      json
// @Param        year query int true "Calendar year"
// @Param        format query string false "json, csv or xlsx"
// @Success      200 {object} dto.Response{data=report.TaxReport}
// @Router       /reports/tax [get]
func (h *ReportHandler) Tax(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.BadRequest(c, "Invalid year")
		return
	}

	report, err := h.reportService.Tax(c.Request.Context(), companyID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respond(c, report, fmt.Sprintf("tax_%d", year), func() *export.Document {
		return export.TaxDocument(report)
	})
}

// BusinessOverview godoc
// @Summary      Period summary compared with the preceding period
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start (2006-01-02)"
// @Param        to query string true "Period end (2006-01-02)"
// @Success      200 {object} dto.Response{data=report.BusinessOverview}
// @Router       /reports/overview [get]
func (h *ReportHandler) BusinessOverview(c *gin.Context) {
	companyID, filter, ok := h.periodScope(c)
	if !ok {
		return
	}

	overview, err := h.reportService.BusinessOverview(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overview)
}

// ClientStatement godoc
// @Summary      Client account statement for a period
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start (2006-01-02)"
// @Param        to query string true "Period end (2006-01-02)"
// @Param        format query string false "json, csv or xlsx"
// @Success      200 {object} dto.Response{data=report.ClientStatement}
// @Router       /reports/clients/{id}/statement [get]
func (h *ReportHandler) ClientStatement(c *gin.Context) {
	companyID, filter, ok := h.periodScope(c)
	if !ok {
		return
	}
	clientID, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	statement, err := h.reportService.ClientStatement(c.Request.Context(), companyID, clientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respond(c, statement, "statement", func() *export.Document {
		return export.StatementDocument(statement)
	})
}

// ClientDashboard godoc
// @Summary      One client's account health summary
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.ClientDashboard}
// @Router       /reports/clients/{id}/dashboard [get]
func (h *ReportHandler) ClientDashboard(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	clientID, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	dashboard, err := h.reportService.ClientDashboard(c.Request.Context(), companyID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dashboard)
}

// respond writes the report as JSON, or streams a CSV/XLSX download when a
// file format was requested
func (h *ReportHandler) respond(c *gin.Context, report any, base string, build func() *export.Document) {
	raw := c.Query("format")
	if raw == "" || raw == "json" {
		h.Success(c, report)
		return
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc := build()
	filename := export.Filename(base, format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", format.ContentType())

	var writeErr error
	if format == export.FormatXLSX {
		writeErr = export.WriteXLSX(c.Writer, doc)
	} else {
		writeErr = export.WriteCSV(c.Writer, doc)
	}
	if writeErr != nil {
		// Headers are already sent; all we can do is abort the stream
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (h *ReportHandler) periodScope(c *gin.Context) (uuid.UUID, appreport.PeriodFilter, bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, appreport.PeriodFilter{}, false
	}

	var filter appreport.PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid period, expected from and to as YYYY-MM-DD")
		return uuid.Nil, appreport.PeriodFilter{}, false
	}
	if filter.To.Before(filter.From) {
		h.BadRequest(c, "Period end must not precede period start")
		return uuid.Nil, appreport.PeriodFilter{}, false
	}

	return companyID, filter, true
}
