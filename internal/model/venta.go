package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is one completed or cancelled sale transaction.
// MetodoPago: "efectivo" | "tarjeta" | "transferencia" | "credito"
// Estado: "completada" | "anulada" (one-way transition, applied exactly once)
// Total is always recomputed server-side from current product prices at
// commit time — never trusted from the submitted cart.
type Venta struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket int        `gorm:"uniqueIndex;not null"`
	CajaID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	SucursalID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	ClienteID    *uuid.UUID `gorm:"type:uuid;index"`
	MetodoPago   string     `gorm:"type:varchar(20);not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoRecibido / Vuelto only apply to efectivo sales.
	MontoRecibido *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Vuelto        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado        string           `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
	Items   []VentaItem `gorm:"foreignKey:VentaID"`
}

// VentaItem is an immutable sale line with price and cost snapshots taken at
// commit time — later product price changes never affect recorded sales.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostoUnitario  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
