package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado     string `form:"estado,default=completada"` // completada | anulada | all
	SucursalID string `form:"sucursal_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest carries quantity only — prices are NEVER accepted from the
// cart; the server reads them from the catalog at commit time.
type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	// SucursalID is only honored for management users; cashiers always sell
	// at their assigned branch.
	SucursalID *string            `json:"sucursal_id" validate:"omitempty,uuid"`
	Items      []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	MetodoPago string             `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia credito"`
	// ClienteID is required when metodo_pago=credito; optional otherwise.
	ClienteID *string `json:"cliente_id" validate:"omitempty,uuid"`
	// MontoRecibido only applies to efectivo sales; vuelto is computed.
	MontoRecibido *decimal.Decimal `json:"monto_recibido"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	NumeroTicket  int                 `json:"numero_ticket"`
	CajaID        string              `json:"caja_id"`
	SucursalID    string              `json:"sucursal_id"`
	ClienteID     *string             `json:"cliente_id"`
	Items         []ItemVentaResponse `json:"items"`
	MetodoPago    string              `json:"metodo_pago"`
	Total         decimal.Decimal     `json:"total"`
	MontoRecibido *decimal.Decimal    `json:"monto_recibido"`
	Vuelto        *decimal.Decimal    `json:"vuelto"`
	Estado        string              `json:"estado"`
	CreatedAt     string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
