package handler

import (
	"net/http"
	"time"

	"github.com/outisoft/ambar-pdv/internal/apierror"
	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/middleware"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClienteHandler struct {
	svc     service.ClienteService
	credito service.CreditoService
}

func NewClienteHandler(svc service.ClienteService, credito service.CreditoService) *ClienteHandler {
	return &ClienteHandler{svc: svc, credito: credito}
}

func (h *ClienteHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClienteHandler) Obtener(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClienteHandler) Listar(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actor, c.Query("nombre"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ClienteHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClienteHandler) Desactivar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Abono godoc
// @Summary Registra un abono de credito cobrado en efectivo en la caja abierta
// @Tags clientes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbonoRequest true "Abono"
// @Success 201 {object} dto.TransaccionClienteResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/clientes/abono [post]
func (h *ClienteHandler) Abono(c *gin.Context) {
	var req dto.AbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cliente_id inválido"))
		return
	}
	var elegida *uuid.UUID
	if q := c.Query("sucursal_id"); q != "" {
		if id, err := uuid.Parse(q); err == nil {
			elegida = &id
		}
	}

	tx, err := h.credito.CobrarAbono(c.Request.Context(), actor, clienteID, req.Monto, elegida)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaccionToResponse(tx))
}

// EstadoCuenta returns the client plus their full credit ledger.
func (h *ClienteHandler) EstadoCuenta(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	cliente, transacciones, err := h.credito.EstadoCuenta(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.EstadoCuentaResponse{
		Cliente: dto.ClienteResponse{
			ID:                cliente.ID.String(),
			Nombre:            cliente.Nombre,
			Telefono:          cliente.Telefono,
			Email:             cliente.Email,
			LimiteCredito:     cliente.LimiteCredito,
			SaldoActual:       cliente.SaldoActual,
			CreditoDisponible: cliente.LimiteCredito.Sub(cliente.SaldoActual),
			Activo:            cliente.Activo,
		},
		Transacciones: make([]dto.TransaccionClienteResponse, 0, len(transacciones)),
	}
	for i := range transacciones {
		resp.Transacciones = append(resp.Transacciones, *transaccionToResponse(&transacciones[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// RecalcularSaldo rebuilds the balance projection from the ledger.
// Management-only corrective endpoint.
func (h *ClienteHandler) RecalcularSaldo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	saldo, err := h.credito.RecalcularSaldo(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cliente_id": id.String(), "saldo_actual": saldo})
}

func transaccionToResponse(t *model.TransaccionCliente) *dto.TransaccionClienteResponse {
	resp := &dto.TransaccionClienteResponse{
		ID:            t.ID.String(),
		Tipo:          t.Tipo,
		Monto:         t.Monto,
		SaldoAnterior: t.SaldoAnterior,
		SaldoNuevo:    t.SaldoNuevo,
		Descripcion:   t.Descripcion,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
	if t.VentaID != nil {
		s := t.VentaID.String()
		resp.VentaID = &s
	}
	return resp
}
