package service

// arqueo.go — pure reconciliation math for register sessions.
//
// The same computation backs three call sites: the live preview while the
// caja is still open, the authoritative close, and historical recomputation
// for sessions that predate a stored desvio. Keeping it a pure function of
// (monto inicial, ventas, movimientos) is what makes those three agree.

import (
	"strings"

	"github.com/outisoft/ambar-pdv/internal/model"

	"github.com/shopspring/decimal"
)

// ResultadoArqueo is the reconciliation breakdown for one caja.
type ResultadoArqueo struct {
	MontoInicial     decimal.Decimal
	VentasEfectivo   decimal.Decimal
	VentasNoEfectivo decimal.Decimal // tarjeta + transferencia
	VentasCredito    decimal.Decimal
	Ingresos         decimal.Decimal
	Egresos          decimal.Decimal
	// AbonosEnEfectivo is the slice of Ingresos written by the credit
	// payment composite, recognized by the AbonoClientePrefix tag.
	AbonosEnEfectivo decimal.Decimal
	OtrosIngresos    decimal.Decimal
	EfectivoEsperado decimal.Decimal
	// MontoContado / Desvio are nil until a physical count is supplied.
	MontoContado *decimal.Decimal
	Desvio       *decimal.Decimal
}

// CalcularArqueo folds a caja's sales and movements into the expected-cash
// figure:
//
//	efectivoEsperado = montoInicial + ventasEfectivo + ingresos − egresos
//
// Anuladas are excluded from every sales bucket. Movement amounts are always
// positive; direction comes from Tipo.
func CalcularArqueo(montoInicial decimal.Decimal, ventas []model.Venta, movimientos []model.MovimientoCaja) ResultadoArqueo {
	r := ResultadoArqueo{
		MontoInicial:     montoInicial,
		VentasEfectivo:   decimal.Zero,
		VentasNoEfectivo: decimal.Zero,
		VentasCredito:    decimal.Zero,
		Ingresos:         decimal.Zero,
		Egresos:          decimal.Zero,
		AbonosEnEfectivo: decimal.Zero,
	}

	for _, v := range ventas {
		if v.Estado == "anulada" {
			continue
		}
		switch v.MetodoPago {
		case "efectivo":
			r.VentasEfectivo = r.VentasEfectivo.Add(v.Total)
		case "tarjeta", "transferencia":
			r.VentasNoEfectivo = r.VentasNoEfectivo.Add(v.Total)
		case "credito":
			r.VentasCredito = r.VentasCredito.Add(v.Total)
		}
	}

	for _, m := range movimientos {
		switch m.Tipo {
		case "ingreso":
			r.Ingresos = r.Ingresos.Add(m.Monto)
			if strings.HasPrefix(m.Descripcion, model.AbonoClientePrefix) {
				r.AbonosEnEfectivo = r.AbonosEnEfectivo.Add(m.Monto)
			}
		case "egreso":
			r.Egresos = r.Egresos.Add(m.Monto)
		}
	}

	r.OtrosIngresos = r.Ingresos.Sub(r.AbonosEnEfectivo)
	r.EfectivoEsperado = montoInicial.Add(r.VentasEfectivo).Add(r.Ingresos).Sub(r.Egresos)
	return r
}

// ConContado attaches a physical count to the reconciliation and computes
// the signed desvio: positive = sobrante, negative = faltante.
func (r ResultadoArqueo) ConContado(montoContado decimal.Decimal) ResultadoArqueo {
	desvio := montoContado.Sub(r.EfectivoEsperado)
	r.MontoContado = &montoContado
	r.Desvio = &desvio
	return r
}

// TotalVentas is the cached total persisted on the caja at close: every
// non-cancelled sale regardless of payment method.
func (r ResultadoArqueo) TotalVentas() decimal.Decimal {
	return r.VentasEfectivo.Add(r.VentasNoEfectivo).Add(r.VentasCredito)
}

// SuperaUmbral reports whether the absolute desvio exceeds the alert
// threshold. A desvio exactly at the threshold does not alert.
func (r ResultadoArqueo) SuperaUmbral(umbral decimal.Decimal) bool {
	return r.Desvio != nil && r.Desvio.Abs().GreaterThan(umbral)
}
