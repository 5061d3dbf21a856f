package handler

import (
	"net/http"
	"time"

	"github.com/outisoft/ambar-pdv/internal/apierror"
	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/middleware"
	"github.com/outisoft/ambar-pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductoHandler struct {
	svc   service.ProductoService
	stock service.StockService
}

func NewProductoHandler(svc service.ProductoService, stock service.StockService) *ProductoHandler {
	return &ProductoHandler{svc: svc, stock: stock}
}

func (h *ProductoHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
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

func (h *ProductoHandler) Obtener(c *gin.Context) {
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

func (h *ProductoHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, err)
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductoHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
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

func (h *ProductoHandler) Desactivar(c *gin.Context) {
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

func (h *ProductoHandler) Reactivar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AjustarStock godoc
// @Summary Ajuste administrativo de stock absoluto por sucursal
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de producto"
// @Param body body dto.AjustarStockRequest true "Valores absolutos"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/productos/{id}/stock [put]
func (h *ProductoHandler) AjustarStock(c *gin.Context) {
	productoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}

	if err := h.stock.Ajustar(c.Request.Context(), actor, productoID, sucursalID, req.Stock, req.StockMinimo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MovimientosStock lists the audit trail for a branch/product pair.
func (h *ProductoHandler) MovimientosStock(c *gin.Context) {
	productoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}

	movs, err := h.stock.ListarMovimientos(c.Request.Context(), sucursalID, productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.MovimientoStockResponse, 0, len(movs))
	for i := range movs {
		m := &movs[i]
		out = append(out, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// StockBajo lists every branch/product row under its minimum for the
// empresa — the same view the low-stock alert cron scans.
func (h *ProductoHandler) StockBajo(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return
	}
	rows, err := h.stock.BajoMinimo(c.Request.Context(), actor.EmpresaID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		item := gin.H{
			"sucursal_id":  row.SucursalID.String(),
			"producto_id":  row.ProductoID.String(),
			"stock":        row.Stock,
			"stock_minimo": row.StockMinimo,
		}
		if row.Producto != nil {
			item["producto"] = row.Producto.Nombre
		}
		if row.Sucursal != nil {
			item["sucursal"] = row.Sucursal.Nombre
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
