package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/outisoft/ambar-pdv/internal/apierror"
	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const precioCacheTTL = 4 * time.Hour

// ConsultaPreciosHandler serves the public price check endpoint for in-store
// verification kiosks. No authentication, no side effects. The empresa comes
// from the URL so the cache stays tenant-scoped.
type ConsultaPreciosHandler struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewConsultaPreciosHandler(repo repository.ProductoRepository, rdb *redis.Client) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{repo: repo, rdb: rdb}
}

// GetPrecioPorBarcode godoc
// @Summary Consulta de precio por codigo de barras (sin autenticacion)
// @Tags precio
// @Produce json
// @Param empresa_id path string true "ID de empresa"
// @Param barcode path string true "Codigo de barras"
// @Success 200 {object} dto.PrecioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{empresa_id}/{barcode} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorBarcode(c *gin.Context) {
	empresaID, err := uuid.Parse(c.Param("empresa_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("empresa_id inválido"))
		return
	}
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "precio:" + empresaID.String() + ":" + barcode

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PrecioResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	producto, err := h.repo.FindByBarcode(ctx, empresaID, barcode)
	if err != nil || !producto.Activo {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.PrecioResponse{
		CodigoBarras: producto.CodigoBarras,
		Nombre:       producto.Nombre,
		PrecioVenta:  producto.PrecioVenta,
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, precioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
