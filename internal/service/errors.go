package service

import "errors"

// Business-rule violations. These are checked inside the atomic unit and
// cause full rollback; handlers map them to 4xx envelopes with stable codes.
var (
	ErrStockInsuficiente      = errors.New("stock insuficiente")
	ErrSinCajaAbierta         = errors.New("no hay caja abierta para el usuario en esta sucursal")
	ErrCajaYaAbierta          = errors.New("ya existe una caja abierta para el usuario en esta sucursal")
	ErrCajaYaCerrada          = errors.New("la caja ya está cerrada")
	ErrCajaNoEncontrada       = errors.New("caja no encontrada")
	ErrLimiteCreditoExcedido  = errors.New("el cargo excede el límite de crédito del cliente")
	ErrCreditoDenegado        = errors.New("crédito denegado")
	ErrMontoExcedeSaldo       = errors.New("el abono excede el saldo adeudado")
	ErrMontoInvalido          = errors.New("el monto debe ser mayor a cero")
	ErrVentaYaAnulada         = errors.New("la venta ya está anulada")
	ErrVentaNoEncontrada      = errors.New("venta no encontrada")
	ErrSucursalRequerida      = errors.New("debe indicar una sucursal")
	ErrFueraDeAlcance         = errors.New("operación fuera del alcance del usuario")
)
