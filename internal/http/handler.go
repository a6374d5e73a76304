package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repairdesk-service/internal/export"
	"repairdesk-service/internal/http/middleware"
	"repairdesk-service/internal/hub"
	"repairdesk-service/internal/model"
	"repairdesk-service/internal/notify"
	"repairdesk-service/internal/receipt"
	"repairdesk-service/internal/service"
)

const adminTokenHeader = "X-Admin-Token"

type Handler struct {
	ticketService *service.TicketService
	reportService *service.ReportService
	adminGate     *service.AdminGate
	notifier      *notify.WhatsAppNotifier
	receipts      *receipt.Renderer
	events        *hub.Hub
	shopName      string
	log           zerolog.Logger
}

func NewHandler(
	ticketService *service.TicketService,
	reportService *service.ReportService,
	adminGate *service.AdminGate,
	notifier *notify.WhatsAppNotifier,
	receipts *receipt.Renderer,
	events *hub.Hub,
	shopName string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		ticketService: ticketService,
		reportService: reportService,
		adminGate:     adminGate,
		notifier:      notifier,
		receipts:      receipts,
		events:        events,
		shopName:      shopName,
		log:           log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	desk := protected.Group("/desk")
	{
		desk.GET("/queues", h.getQueues)
		desk.GET("/revenue/today", h.getTodayRevenue)
		desk.GET("/search", h.search)
		desk.POST("/tickets", h.registerTicket)
		desk.GET("/tickets/:id", h.getTicket)
		desk.GET("/tickets/:id/receipt", h.getReceipt)
		desk.GET("/tickets/:id/payments", h.getTicketPayments)
		desk.GET("/tickets/:id/notifications", h.getTicketNotifications)
		desk.POST("/tickets/:id/whatsapp-link", h.buildWhatsAppLink)
		desk.PUT("/tickets/:id/start", h.startRepair)
		desk.PUT("/tickets/:id/complete", h.completeRepair)
		desk.PUT("/tickets/:id/unrepairable", h.markUnrepairable)
		desk.PUT("/tickets/:id/handover", h.handover)
		desk.PUT("/tickets/:id/collect-payment", h.collectPayment)
		desk.PUT("/tickets/:id/return", h.returnToCustomer)
		desk.PUT("/tickets/:id/pickup", h.confirmPickup)
		desk.PUT("/tickets/:id/online-paid", h.recordOnlinePayment)
	}

	registry := protected.Group("/registry")
	{
		registry.GET("", h.listRegistry)
		registry.GET("/export", h.exportRegistry)
		registry.GET("/admin/status", h.adminStatus)
		registry.POST("/admin/verify", h.adminVerify)
		registry.DELETE("/tickets/:id", h.deleteTicket)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/daily", h.getDailyReport)
		reports.GET("/daily/export", h.exportDailyReport)
	}

	protected.GET("/ws", h.serveWebSocket)
}

func (h *Handler) getQueues(c *gin.Context) {
	queues, err := h.ticketService.Queues(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"queues":   queues,
		"revision": h.events.Revision(),
	}))
}

func (h *Handler) getTodayRevenue(c *gin.Context) {
	total, err := h.reportService.TodayRevenue(c.Request.Context(), time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"today_revenue": total}))
}

func (h *Handler) registerTicket(c *gin.Context) {
	var req struct {
		CustomerName    string  `json:"customer_name" binding:"required"`
		CustomerMobile  string  `json:"customer_mobile" binding:"required"`
		CustomerEmail   string  `json:"customer_email"`
		CustomerAddress string  `json:"customer_address"`
		DeviceBrand     string  `json:"device_brand" binding:"required"`
		DeviceModel     string  `json:"device_model" binding:"required"`
		DeviceProblem   string  `json:"device_problem" binding:"required"`
		EstimatedCost   float64 `json:"estimated_cost" binding:"required"`
		Priority        string  `json:"priority"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ticket, err := h.ticketService.Register(c.Request.Context(), service.RegisterTicketInput{
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		DeviceBrand:     req.DeviceBrand,
		DeviceModel:     req.DeviceModel,
		DeviceProblem:   req.DeviceProblem,
		EstimatedCost:   req.EstimatedCost,
		Priority:        req.Priority,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(ticket))
}

func (h *Handler) getTicket(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid ticket id"))
		return
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) getReceipt(c *gin.Context) {
	ticket, err := h.ticketService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	html, err := h.receipts.Render(ticket)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) getTicketPayments(c *gin.Context) {
	ticket, err := h.ticketService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	entries, err := h.ticketService.PaymentHistory(c.Request.Context(), ticket.TicketID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) getTicketNotifications(c *gin.Context) {
	ticket, err := h.ticketService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	entries, err := h.notifier.History(c.Request.Context(), ticket.TicketID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) buildWhatsAppLink(c *gin.Context) {
	var req struct {
		Type     string `json:"type" binding:"required"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if req.Language == "" {
		req.Language = string(model.LanguageEnglish)
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	link, err := h.notifier.BuildLink(c.Request.Context(), ticket,
		model.MessageType(req.Type), model.MessageLanguage(req.Language))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, successResponse(link))
}

func (h *Handler) search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	tickets, err := h.ticketService.Search(c.Request.Context(), term)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(tickets))
}

func (h *Handler) startRepair(c *gin.Context) {
	ticket, err := h.ticketService.StartRepair(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) completeRepair(c *gin.Context) {
	var req struct {
		ServiceCost float64 `json:"service_cost"`
		PartsCost   float64 `json:"parts_cost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ticket, err := h.ticketService.CompleteRepair(c.Request.Context(), c.Param("id"), req.ServiceCost, req.PartsCost)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) markUnrepairable(c *gin.Context) {
	var req struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ticket, err := h.ticketService.MarkUnrepairable(c.Request.Context(), c.Param("id"), req.Reason, req.Details)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) handover(c *gin.Context) {
	ticket, err := h.ticketService.Handover(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) collectPayment(c *gin.Context) {
	var req struct {
		Amount           float64                 `json:"amount" binding:"required"`
		Method           string                  `json:"method"`
		Notes            string                  `json:"notes"`
		Legs             []service.SplitLegInput `json:"legs"`
		CompleteHandover bool                    `json:"complete_handover"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ticket, err := h.ticketService.CollectPayment(c.Request.Context(), c.Param("id"), service.CollectPaymentInput{
		Amount:           req.Amount,
		Method:           req.Method,
		Notes:            req.Notes,
		Legs:             req.Legs,
		CompleteHandover: req.CompleteHandover,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) returnToCustomer(c *gin.Context) {
	var req struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ticket, err := h.ticketService.ReturnToCustomer(c.Request.Context(), c.Param("id"), req.Reason, req.Details)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) confirmPickup(c *gin.Context) {
	ticket, err := h.ticketService.ConfirmPickup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) recordOnlinePayment(c *gin.Context) {
	ticket, err := h.ticketService.RecordOnlinePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(ticket))
}

func (h *Handler) listRegistry(c *gin.Context) {
	filter, err := parseRegistryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	tickets, err := h.ticketService.Registry(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"tickets": tickets,
		"count":   len(tickets),
	}))
}

func (h *Handler) exportRegistry(c *gin.Context) {
	filter, err := parseRegistryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	tickets, err := h.ticketService.Registry(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(tickets) == 0 {
		h.handleError(c, fmt.Errorf("%w: no data to export", service.ErrNoData))
		return
	}

	h.writeExport(c, "device_registry", export.RegistryHeaders, export.RegistryRows(tickets))
}

func (h *Handler) adminStatus(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.adminGate.Status()))
}

func (h *Handler) adminVerify(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	token, err := h.adminGate.Verify(req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"admin_token": token}))
}

func (h *Handler) deleteTicket(c *gin.Context) {
	token := c.GetHeader(adminTokenHeader)
	if token == "" {
		c.JSON(http.StatusForbidden, errorResponse("admin authorization required"))
		return
	}
	if err := h.adminGate.Authorize(token); err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getDailyReport(c *gin.Context) {
	day, err := parseReportDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	report, err := h.reportService.Daily(c.Request.Context(), day, time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) exportDailyReport(c *gin.Context) {
	day, err := parseReportDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	report, err := h.reportService.Daily(c.Request.Context(), day, time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}

	reportType := c.DefaultQuery("type", "full")
	switch reportType {
	case "handovered":
		if len(report.Handovered) == 0 {
			h.handleError(c, fmt.Errorf("%w: no data to export", service.ErrNoData))
			return
		}
		h.writeExport(c, "handovered_devices", export.HandoveredHeaders, export.HandoveredRows(report.Handovered))
	case "returned":
		if len(report.Returned) == 0 {
			h.handleError(c, fmt.Errorf("%w: no data to export", service.ErrNoData))
			return
		}
		h.writeExport(c, "returned_devices", export.ReturnedHeaders, export.ReturnedRows(report.Returned))
	case "payments":
		if len(report.Payments) == 0 {
			h.handleError(c, fmt.Errorf("%w: no data to export", service.ErrNoData))
			return
		}
		h.writeExport(c, "payments", export.PaymentHeaders, export.PaymentRows(report.Payments))
	case "full":
		if len(report.Handovered) == 0 && len(report.Returned) == 0 {
			h.handleError(c, fmt.Errorf("%w: no data to export", service.ErrNoData))
			return
		}
		filename := export.Filename("full_report", report.Date, "csv")
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		if err := export.WriteFullReport(c.Writer, h.shopName, report, time.Now()); err != nil {
			h.log.Error().Err(err).Msg("write full report")
		}
	default:
		c.JSON(http.StatusBadRequest, errorResponse("unknown report type"))
	}
}

// writeExport streams the table as CSV or XLSX depending on ?format.
func (h *Handler) writeExport(c *gin.Context, prefix string, headers []string, rows [][]string) {
	date := time.Now().Format("2006-01-02")
	format := c.DefaultQuery("format", "csv")

	switch format {
	case "xlsx":
		filename := export.Filename(prefix, date, "xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		if err := export.WriteExcel(c.Writer, "Report", headers, rows); err != nil {
			h.log.Error().Err(err).Msg("write xlsx export")
		}
	case "csv":
		filename := export.Filename(prefix, date, "csv")
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		if err := export.WriteCSV(c.Writer, headers, rows); err != nil {
			h.log.Error().Err(err).Msg("write csv export")
		}
	default:
		c.JSON(http.StatusBadRequest, errorResponse("unknown export format"))
	}
}

func (h *Handler) serveWebSocket(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	clientID := fmt.Sprintf("%s-%d", principal.UserID, time.Now().UnixNano())
	if err := h.events.Serve(c.Writer, c.Request, clientID); err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
	}
}

func parseRegistryFilter(c *gin.Context) (service.RegistryFilter, error) {
	filter := service.RegistryFilter{
		DateRange: service.DateRange(c.DefaultQuery("date_range", "all")),
		Status:    strings.TrimSpace(c.Query("status")),
		Priority:  model.Priority(strings.TrimSpace(c.Query("priority"))),
		Search:    c.Query("search"),
	}

	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return service.RegistryFilter{}, fmt.Errorf("invalid start_date")
		}
		filter.StartDate = &t
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return service.RegistryFilter{}, fmt.Errorf("invalid end_date")
		}
		filter.EndDate = &t
	}

	return filter, nil
}

func parseReportDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	day, err := parseTime(raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date")
	}
	return day, nil
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrLockedOut):
		c.JSON(http.StatusTooManyRequests, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNoData):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
