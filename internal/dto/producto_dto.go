package dto

import "github.com/shopspring/decimal"

// ─── Filter ─────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre  string `form:"nombre"`
	Barcode string `form:"barcode"`
	Activo  string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras string          `json:"codigo_barras" validate:"required"`
	Nombre       string          `json:"nombre"        validate:"required,min=2"`
	Descripcion  *string         `json:"descripcion"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"  validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"required,gt=0"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2"`
	Descripcion *string          `json:"descripcion"`
	PrecioCosto *decimal.Decimal `json:"precio_costo"`
	PrecioVenta *decimal.Decimal `json:"precio_venta"`
}

// AjustarStockRequest is the administrative overwrite path — it bypasses the
// sale pipeline entirely and sets absolute values for a branch/product row.
type AjustarStockRequest struct {
	SucursalID  string `json:"sucursal_id"  validate:"required,uuid"`
	Stock       int    `json:"stock"        validate:"min=0"`
	StockMinimo int    `json:"stock_minimo" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockSucursalResponse struct {
	SucursalID  string `json:"sucursal_id"`
	Sucursal    string `json:"sucursal"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
}

type ProductoResponse struct {
	ID           string          `json:"id"`
	CodigoBarras string          `json:"codigo_barras"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	Activo       bool            `json:"activo"`
	// Stock breakdown per sucursal — populated on detail lookups.
	Stock []StockSucursalResponse `json:"stock,omitempty"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type MovimientoStockResponse struct {
	ID            string `json:"id"`
	Tipo          string `json:"tipo"`
	Cantidad      int    `json:"cantidad"`
	StockAnterior int    `json:"stock_anterior"`
	StockNuevo    int    `json:"stock_nuevo"`
	Motivo        string `json:"motivo"`
	CreatedAt     string `json:"created_at"`
}

// PrecioResponse is the public barcode price-check payload (redis-cached).
type PrecioResponse struct {
	CodigoBarras string          `json:"codigo_barras"`
	Nombre       string          `json:"nombre"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
}
