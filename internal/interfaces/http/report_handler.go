package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/Almoxarifado-api/internal/application/audit"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// ReportHandler maneja los reportes de solo lectura y la auditoría.
type ReportHandler struct {
	uc    *appanalytics.ReportUseCase
	audit *audit.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *appanalytics.ReportUseCase, auditUC *audit.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc, audit: auditUC}
}

// StockPosition godoc
// @Summary      Posición de stock
// @Description  Productos activos con nivel CRITICO / ATENCION / NORMAL.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        group_id  query  string  false  "Grupo"
// @Success      200       {object}  dto.StockPositionReport
// @Router       /api/reports/stock-position [get]
func (h *ReportHandler) StockPosition(c *fiber.Ctx) error {
	out, err := h.uc.StockPosition(c.UserContext(), c.Query("group_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Shortages godoc
// @Summary      Faltantes
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ShortageItem
// @Router       /api/reports/shortages [get]
func (h *ReportHandler) Shortages(c *fiber.Ctx) error {
	out, err := h.uc.Shortages(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MovementSummary godoc
// @Summary      Resumen de movimientos por tipo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD (default: inicio de mes)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (default: hoy)"
// @Success      200         {object}  dto.MovementSummaryReport
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) MovementSummary(c *fiber.Ctx) error {
	out, err := h.uc.MovementSummary(c.UserContext(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LoanSummary godoc
// @Summary      Préstamos por estado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StatusCountItem
// @Router       /api/reports/loans [get]
func (h *ReportHandler) LoanSummary(c *fiber.Ctx) error {
	out, err := h.uc.LoanSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TransferSummary godoc
// @Summary      Transferencias por estado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StatusCountItem
// @Router       /api/reports/transfers [get]
func (h *ReportHandler) TransferSummary(c *fiber.Ctx) error {
	out, err := h.uc.TransferSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Panel principal
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización del stock por ubicación
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationReport
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.uc.Valuation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListAudit godoc
// @Summary      Log de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        user_id    query  string  false  "Usuario"
// @Param        action     query  string  false  "Acción"
// @Param        table      query  string  false  "Tabla"
// @Param        entity_id  query  string  false  "Entidad"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200        {object}  dto.AuditListResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *ReportHandler) ListAudit(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repository.AuditFilter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Table:    c.Query("table"),
		EntityID: c.Query("entity_id"),
		From:     from,
		To:       to,
		Page:     pageFrom(c),
	}
	out, err := h.audit.List(c.UserContext(), actor(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PurgeAudit godoc
// @Summary      Purga de auditoría por retención
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PurgeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/retention [delete]
func (h *ReportHandler) PurgeAudit(c *fiber.Ctx) error {
	out, err := h.audit.Purge(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
