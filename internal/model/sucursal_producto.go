package model

import (
	"time"

	"github.com/google/uuid"
)

// SucursalProducto tracks the per-branch quantity of a product.
// Invariant: Stock never goes negative; rows are mutated exclusively through
// the stock service (sale deduction, cancellation restock, manual adjustment).
type SucursalProducto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sucursal_producto"`
	ProductoID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sucursal_producto"`
	Stock       int       `gorm:"not null;default:0"`
	StockMinimo int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID;constraint:OnDelete:CASCADE"`
	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default pluralization.
func (SucursalProducto) TableName() string { return "sucursal_productos" }

// MovimientoStock registra cada cambio de stock de un producto en una sucursal.
// Se crea automáticamente al vender, anular o ajustar.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"` // "venta" | "ajuste_manual" | "restore_anulacion"
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // venta_id if applicable
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
