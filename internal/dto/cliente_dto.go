package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre        string          `json:"nombre"         validate:"required,min=2"`
	Telefono      *string         `json:"telefono"`
	Email         *string         `json:"email"          validate:"omitempty,email"`
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
}

type ActualizarClienteRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2"`
	Telefono      *string          `json:"telefono"`
	Email         *string          `json:"email"          validate:"omitempty,email"`
	LimiteCredito *decimal.Decimal `json:"limite_credito"`
}

// AbonoRequest registers a credit payment physically collected in cash at the
// acting user's open caja (the composite ledger + cash-movement write).
type AbonoRequest struct {
	ClienteID string          `json:"cliente_id" validate:"required,uuid"`
	Monto     decimal.Decimal `json:"monto"      validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Telefono      *string         `json:"telefono"`
	Email         *string         `json:"email"`
	LimiteCredito decimal.Decimal `json:"limite_credito"`
	SaldoActual   decimal.Decimal `json:"saldo_actual"`
	// CreditoDisponible = limite_credito − saldo_actual.
	CreditoDisponible decimal.Decimal `json:"credito_disponible"`
	Activo            bool            `json:"activo"`
}

type TransaccionClienteResponse struct {
	ID            string          `json:"id"`
	Tipo          string          `json:"tipo"`
	Monto         decimal.Decimal `json:"monto"`
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo    decimal.Decimal `json:"saldo_nuevo"`
	VentaID       *string         `json:"venta_id"`
	Descripcion   string          `json:"descripcion"`
	CreatedAt     string          `json:"created_at"`
}

type EstadoCuentaResponse struct {
	Cliente       ClienteResponse              `json:"cliente"`
	Transacciones []TransaccionClienteResponse `json:"transacciones"`
}
