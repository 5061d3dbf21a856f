package handler

import (
	"net/http"

	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/middleware"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/gin-gonic/gin"
)

// EmpresaHandler exposes the actor's own tenant. Empresas are provisioned
// out-of-band (cmd/seed); here they can only be read and renamed.
type EmpresaHandler struct{ repo repository.SucursalRepository }

func NewEmpresaHandler(repo repository.SucursalRepository) *EmpresaHandler {
	return &EmpresaHandler{repo: repo}
}

func (h *EmpresaHandler) Obtener(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	e, err := h.repo.FindEmpresa(c.Request.Context(), actor.EmpresaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, empresaToResponse(e))
}

func (h *EmpresaHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarEmpresaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	e, err := h.repo.FindEmpresa(c.Request.Context(), actor.EmpresaID)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Nombre != nil {
		e.Nombre = *req.Nombre
	}
	if req.CUIT != nil {
		e.CUIT = req.CUIT
	}
	if err := h.repo.UpdateEmpresa(c.Request.Context(), e); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, empresaToResponse(e))
}

func empresaToResponse(e *model.Empresa) *dto.EmpresaResponse {
	return &dto.EmpresaResponse{
		ID:     e.ID.String(),
		Nombre: e.Nombre,
		CUIT:   e.CUIT,
		Activo: e.Activo,
	}
}
