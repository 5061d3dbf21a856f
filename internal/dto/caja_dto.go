package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	// SucursalID is optional for cashiers (their assigned branch is used);
	// management must name the branch explicitly.
	SucursalID   *string         `json:"sucursal_id"   validate:"omitempty,uuid"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	CajaID       string          `json:"caja_id"       validate:"required,uuid"`
	MontoContado decimal.Decimal `json:"monto_contado" validate:"min=0"`
}

type MovimientoManualRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=ingreso egreso"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ArqueoResponse is the reconciliation breakdown: returned both by the live
// preview (GET /arqueo) and embedded in the close response. The same math
// backs both — see service/arqueo.go.
type ArqueoResponse struct {
	CajaID            string          `json:"caja_id"`
	MontoInicial      decimal.Decimal `json:"monto_inicial"`
	VentasEfectivo    decimal.Decimal `json:"ventas_efectivo"`
	VentasNoEfectivo  decimal.Decimal `json:"ventas_no_efectivo"`
	VentasCredito     decimal.Decimal `json:"ventas_credito"`
	Ingresos          decimal.Decimal `json:"ingresos"`
	Egresos           decimal.Decimal `json:"egresos"`
	AbonosEnEfectivo  decimal.Decimal `json:"abonos_en_efectivo"`
	OtrosIngresos     decimal.Decimal `json:"otros_ingresos"`
	EfectivoEsperado  decimal.Decimal `json:"efectivo_esperado"`
	MontoContado      *decimal.Decimal `json:"monto_contado"`
	Desvio            *decimal.Decimal `json:"desvio"`
}

type CajaResponse struct {
	ID           string           `json:"id"`
	UsuarioID    string           `json:"usuario_id"`
	SucursalID   string           `json:"sucursal_id"`
	MontoInicial decimal.Decimal  `json:"monto_inicial"`
	MontoFinal   *decimal.Decimal `json:"monto_final"`
	TotalVentas  decimal.Decimal  `json:"total_ventas"`
	Desvio       *decimal.Decimal `json:"desvio"`
	Estado       string           `json:"estado"`
	OpenedAt     string           `json:"opened_at"`
	ClosedAt     *string          `json:"closed_at"`
}

type CierreCajaResponse struct {
	Caja   CajaResponse   `json:"caja"`
	Arqueo ArqueoResponse `json:"arqueo"`
	// AlertaDespachada indicates whether the desvio exceeded the configured
	// threshold and a management alert was enqueued.
	AlertaDespachada bool `json:"alerta_despachada"`
}

type MovimientoCajaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	CreatedAt   string          `json:"created_at"`
}

type CajaListResponse struct {
	Data  []CajaResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
