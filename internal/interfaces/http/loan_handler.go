package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/loan"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// LoanHandler maneja préstamos (protegido).
type LoanHandler struct {
	uc *loan.UseCase
}

// NewLoanHandler construye el handler.
func NewLoanHandler(uc *loan.UseCase) *LoanHandler {
	return &LoanHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar préstamo
// @Description  Valida disponibilidad de todos los ítems antes de mover stock; código EMP-YYYY-NNNNN.
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.CreateLoanRequest  true  "Colaborador, vencimiento e ítems"
// @Success      201   {object}  dto.LoanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLoanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener préstamo
// @Tags         loans
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del préstamo"
// @Success      200  {object}  dto.LoanResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar préstamos
// @Tags         loans
// @Security     Bearer
// @Produce      json
// @Param        status           query  string  false  "open, partially_returned, returned, overdue, lost"
// @Param        collaborator_id  query  string  false  "Colaborador"
// @Param        search           query  string  false  "Código o nombre del colaborador"
// @Param        from             query  string  false  "Emitidos desde (YYYY-MM-DD)"
// @Param        to               query  string  false  "Emitidos hasta (YYYY-MM-DD)"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200              {object}  dto.LoanListResponse
// @Router       /api/loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repository.LoanFilter{
		Status:         entity.LoanStatus(c.Query("status")),
		CollaboratorID: c.Query("collaborator_id"),
		Search:         c.Query("search"),
		From:           from,
		To:             to,
		Page:           pageFrom(c),
	}
	out, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Return godoc
// @Summary      Devolver ítems de un préstamo
// @Description  Devolución parcial o total; la cantidad no puede superar lo pendiente.
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del préstamo"
// @Param        body  body  dto.ReturnLoanRequest  true  "Ítems devueltos"
// @Success      200   {object}  dto.LoanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loans/{id}/returns [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnLoanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ReturnItems(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkLost godoc
// @Summary      Marcar préstamo como extraviado
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del préstamo"
// @Param        body  body  dto.MarkLostRequest  true  "Nota obligatoria"
// @Success      200   {object}  dto.LoanResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loans/{id}/lost [post]
func (h *LoanHandler) MarkLost(c *fiber.Ctx) error {
	var in dto.MarkLostRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.MarkLost(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
