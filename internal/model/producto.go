package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto belongs to an empresa; branch-level quantities live in
// SucursalProducto, never here. PrecioVenta is the sole price authority at
// sale commit time — carts never supply prices.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_empresa_barcode"`
	CodigoBarras string    `gorm:"not null;uniqueIndex:idx_empresa_barcode"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	PrecioCosto  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
