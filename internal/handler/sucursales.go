package handler

import (
	"net/http"

	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/middleware"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/gin-gonic/gin"
)

// SucursalHandler manages branches. Thin enough to sit directly on the
// repository; empresa scoping comes from the actor's claims.
type SucursalHandler struct{ repo repository.SucursalRepository }

func NewSucursalHandler(repo repository.SucursalRepository) *SucursalHandler {
	return &SucursalHandler{repo: repo}
}

func (h *SucursalHandler) Crear(c *gin.Context) {
	var req dto.CrearSucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	s := &model.Sucursal{
		EmpresaID: actor.EmpresaID,
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sucursalToResponse(s))
}

func (h *SucursalHandler) Listar(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	sucursales, err := h.repo.List(c.Request.Context(), actor.EmpresaID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.SucursalResponse, 0, len(sucursales))
	for i := range sucursales {
		out = append(out, *sucursalToResponse(&sucursales[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *SucursalHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarSucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Nombre != nil {
		s.Nombre = *req.Nombre
	}
	if req.Direccion != nil {
		s.Direccion = req.Direccion
	}
	if err := h.repo.Update(c.Request.Context(), s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sucursalToResponse(s))
}

func (h *SucursalHandler) Desactivar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sucursalToResponse(s *model.Sucursal) *dto.SucursalResponse {
	return &dto.SucursalResponse{
		ID:        s.ID.String(),
		Nombre:    s.Nombre,
		Direccion: s.Direccion,
		Activo:    s.Activo,
	}
}
