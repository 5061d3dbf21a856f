package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is a customer with an optional credit line.
// SaldoActual is the amount owed — a denormalized projection of the
// transaction ledger, updated only in the same transaction as each ledger
// append. LimiteCredito = 0 means the client has no credit.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"index;not null"`
	Telefono      *string
	Email         *string
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoActual   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
