package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransaccionCliente is an immutable entry in a client's credit ledger.
// Tipo: "cargo" (sale on credit, balance goes up) | "abono" (payment
// received, balance goes down). Entries carry before/after balance snapshots
// and are NEVER updated or deleted — corrections append inverse entries.
type TransaccionCliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID     uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`
	VentaID       *uuid.UUID `gorm:"type:uuid;index"`
	Tipo          string     `gorm:"type:varchar(10);not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion   string
	CreatedAt     time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

// TableName overrides GORM's default pluralization.
func (TransaccionCliente) TableName() string { return "transacciones_cliente" }
