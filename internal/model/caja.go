package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caja represents one register session (a cashier shift) at a sucursal.
// Estado: "abierta" | "cerrada"
// Invariant: at most one abierta per (usuario, sucursal) — enforced by a
// partial unique index created in infra alongside AutoMigrate. The
// abierta→cerrada transition is terminal; sessions are never reopened.
type Caja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SucursalID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoFinal is the physically counted cash, set once at close.
	MontoFinal  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalVentas decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	// Desvio = monto contado − efectivo esperado. Positive = sobrante,
	// negative = faltante.
	Desvio   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado   string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	OpenedAt time.Time
	ClosedAt *time.Time

	Usuario     *Usuario         `gorm:"foreignKey:UsuarioID"`
	Sucursal    *Sucursal        `gorm:"foreignKey:SucursalID"`
	Movimientos []MovimientoCaja `gorm:"foreignKey:CajaID"`
}

// AbonoClientePrefix tags MovimientoCaja rows created by the credit-payment
// composite operation so reconciliation can separate credit collections from
// other manual cash-ins. Reconciliation matches on this exact prefix.
const AbonoClientePrefix = "Abono cliente:"

// MovimientoCaja is a manual cash in/out event against an open caja.
// Tipo: "ingreso" | "egreso". Monto is always positive; the sign lives in
// Tipo. Movements are immutable and stay attached after close for audit.
type MovimientoCaja struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo        string          `gorm:"type:varchar(10);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion string          `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName overrides GORM's default pluralization.
func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// EsAbonoCliente reports whether this movement was written by the
// credit-payment composite (recognized by the description prefix).
func (m *MovimientoCaja) EsAbonoCliente() bool {
	return len(m.Descripcion) >= len(AbonoClientePrefix) &&
		m.Descripcion[:len(AbonoClientePrefix)] == AbonoClientePrefix
}
