package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/outisoft/ambar-pdv/internal/apierror"
	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/middleware"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}

	caja, err := h.svc.Abrir(c.Request.Context(), actor, parseOptionalUUID(req.SucursalID), req.MontoInicial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cajaToResponse(caja))
}

// Activa returns the acting user's open session at the resolved sucursal.
func (h *CajaHandler) Activa(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	var elegida *uuid.UUID
	if q := c.Query("sucursal_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
			return
		}
		elegida = &id
	}

	caja, err := h.svc.CajaActiva(c.Request.Context(), actor, elegida)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cajaToResponse(caja))
}

// Arqueo godoc
// @Summary Arqueo de una sesion de caja (abierta o cerrada)
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Success 200 {object} dto.ArqueoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/arqueo [get]
func (h *CajaHandler) Arqueo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caja, resultado, err := h.svc.Arqueo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, arqueoToResponse(caja.ID, resultado))
}

// Cerrar godoc
// @Summary Cierra la sesion con el conteo fisico y calcula el desvio
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Conteo de cierre"
// @Success 200 {object} dto.CierreCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("caja_id inválido"))
		return
	}

	caja, resultado, alerta, err := h.svc.Cerrar(c.Request.Context(), actor, cajaID, req.MontoContado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CierreCajaResponse{
		Caja:             *cajaToResponse(caja),
		Arqueo:           *arqueoToResponse(caja.ID, resultado),
		AlertaDespachada: alerta,
	})
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso manual en la caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento manual"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	var elegida *uuid.UUID
	if q := c.Query("sucursal_id"); q != "" {
		if id, err := uuid.Parse(q); err == nil {
			elegida = &id
		}
	}
	if err := h.svc.RegistrarMovimiento(c.Request.Context(), actor, elegida, req.Tipo, req.Monto, req.Descripcion); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Historial returns a paginated list of sessions for a sucursal.
func (h *CajaHandler) Historial(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}

	var sucursalID uuid.UUID
	if q := c.Query("sucursal_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
			return
		}
		sucursalID = id
	} else if actor.SucursalID != nil {
		sucursalID = *actor.SucursalID
	} else {
		respondError(c, service.ErrSucursalRequerida)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cajas, total, err := h.svc.Historial(c.Request.Context(), sucursalID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		data = append(data, *cajaToResponse(&cajas[i]))
	}
	c.JSON(http.StatusOK, dto.CajaListResponse{Data: data, Total: total, Page: page, Limit: limit})
}

// Movimientos lists the cash in/out events attached to a session.
func (h *CajaHandler) Movimientos(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	movs, err := h.svc.ListarMovimientos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for i := range movs {
		m := &movs[i]
		out = append(out, dto.MovimientoCajaResponse{
			ID:          m.ID.String(),
			Tipo:        m.Tipo,
			Monto:       m.Monto,
			Descripcion: m.Descripcion,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func cajaToResponse(caja *model.Caja) *dto.CajaResponse {
	resp := &dto.CajaResponse{
		ID:           caja.ID.String(),
		UsuarioID:    caja.UsuarioID.String(),
		SucursalID:   caja.SucursalID.String(),
		MontoInicial: caja.MontoInicial,
		MontoFinal:   caja.MontoFinal,
		TotalVentas:  caja.TotalVentas,
		Desvio:       caja.Desvio,
		Estado:       caja.Estado,
		OpenedAt:     caja.OpenedAt.Format(time.RFC3339),
	}
	if caja.ClosedAt != nil {
		s := caja.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &s
	}
	return resp
}

func arqueoToResponse(cajaID uuid.UUID, r service.ResultadoArqueo) *dto.ArqueoResponse {
	return &dto.ArqueoResponse{
		CajaID:           cajaID.String(),
		MontoInicial:     r.MontoInicial,
		VentasEfectivo:   r.VentasEfectivo,
		VentasNoEfectivo: r.VentasNoEfectivo,
		VentasCredito:    r.VentasCredito,
		Ingresos:         r.Ingresos,
		Egresos:          r.Egresos,
		AbonosEnEfectivo: r.AbonosEnEfectivo,
		OtrosIngresos:    r.OtrosIngresos,
		EfectivoEsperado: r.EfectivoEsperado,
		MontoContado:     r.MontoContado,
		Desvio:           r.Desvio,
	}
}
