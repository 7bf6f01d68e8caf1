package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/Almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/repository"
)

// CollaboratorHandler maneja colaboradores y proveedores (protegido).
type CollaboratorHandler struct {
	collaborators *usecase.CollaboratorUseCase
	suppliers     *usecase.SupplierUseCase
}

// NewCollaboratorHandler construye el handler.
func NewCollaboratorHandler(collaborators *usecase.CollaboratorUseCase, suppliers *usecase.SupplierUseCase) *CollaboratorHandler {
	return &CollaboratorHandler{collaborators: collaborators, suppliers: suppliers}
}

// Create godoc
// @Summary      Crear colaborador
// @Tags         collaborators
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCollaboratorRequest  true  "Datos del colaborador"
// @Success      201   {object}  dto.CollaboratorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/collaborators [post]
func (h *CollaboratorHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCollaboratorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.collaborators.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener colaborador
// @Tags         collaborators
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del colaborador"
// @Success      200  {object}  dto.CollaboratorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/collaborators/{id} [get]
func (h *CollaboratorHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.collaborators.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar colaboradores
// @Tags         collaborators
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Nombre o matrícula"
// @Param        sector  query  string  false  "Sector"
// @Param        active  query  bool    false  "Solo activos"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.CollaboratorListResponse
// @Router       /api/collaborators [get]
func (h *CollaboratorHandler) List(c *fiber.Ctx) error {
	filter := repository.CollaboratorFilter{
		Search:     c.Query("search"),
		Sector:     c.Query("sector"),
		ActiveOnly: c.QueryBool("active", false),
		Page:       pageFrom(c),
	}
	out, err := h.collaborators.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar colaborador
// @Tags         collaborators
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del colaborador"
// @Param        body  body  dto.UpdateCollaboratorRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.CollaboratorResponse
// @Router       /api/collaborators/{id} [put]
func (h *CollaboratorHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCollaboratorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.collaborators.Update(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar colaborador
// @Tags         collaborators
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del colaborador"
// @Success      200  {object}  dto.CollaboratorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/collaborators/{id} [delete]
func (h *CollaboratorHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.collaborators.Deactivate(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateSupplier godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierRequest  true  "Datos del proveedor"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *CollaboratorHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.suppliers.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSupplier godoc
// @Summary      Obtener proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proveedor"
// @Success      200  {object}  dto.SupplierResponse
// @Router       /api/suppliers/{id} [get]
func (h *CollaboratorHandler) GetSupplier(c *fiber.Ctx) error {
	out, err := h.suppliers.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListSuppliers godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Nombre o documento"
// @Success      200     {object}  dto.SupplierListResponse
// @Router       /api/suppliers [get]
func (h *CollaboratorHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.suppliers.List(c.UserContext(), c.Query("search"), pageFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateSupplier godoc
// @Summary      Actualizar proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del proveedor"
// @Param        body  body  dto.UpdateSupplierRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.SupplierResponse
// @Router       /api/suppliers/{id} [put]
func (h *CollaboratorHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.UpdateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.suppliers.Update(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
