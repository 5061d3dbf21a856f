package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/outisoft/ambar-pdv/internal/apierror"
	"github.com/outisoft/ambar-pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseIDParam parses a :id-style path parameter as UUID, writing the 400
// response on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID converts an optional string field (already validated as
// uuid by the binding tags) into a *uuid.UUID.
func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// businessErrorStatus maps service sentinels to (HTTP status, stable code).
// Anything unmapped is treated as an internal error.
var businessErrors = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrStockInsuficiente, http.StatusConflict, "stock_insuficiente"},
	{service.ErrSinCajaAbierta, http.StatusConflict, "sin_caja_abierta"},
	{service.ErrCajaYaAbierta, http.StatusConflict, "caja_ya_abierta"},
	{service.ErrCajaYaCerrada, http.StatusConflict, "caja_ya_cerrada"},
	{service.ErrCajaNoEncontrada, http.StatusNotFound, "caja_no_encontrada"},
	{service.ErrLimiteCreditoExcedido, http.StatusConflict, "limite_credito_excedido"},
	{service.ErrCreditoDenegado, http.StatusConflict, "credito_denegado"},
	{service.ErrMontoExcedeSaldo, http.StatusConflict, "monto_excede_saldo"},
	{service.ErrMontoInvalido, http.StatusBadRequest, "monto_invalido"},
	{service.ErrVentaYaAnulada, http.StatusConflict, "venta_ya_anulada"},
	{service.ErrVentaNoEncontrada, http.StatusNotFound, "venta_no_encontrada"},
	{service.ErrSucursalRequerida, http.StatusBadRequest, "sucursal_requerida"},
	{service.ErrFueraDeAlcance, http.StatusForbidden, "fuera_de_alcance"},
}

// respondError writes the right envelope for a service-layer error: stable
// coded 4xx for business-rule violations, 404 for missing records, opaque 500
// otherwise (the detail goes to the log via the error middleware).
func respondError(c *gin.Context, err error) {
	for _, be := range businessErrors {
		if errors.Is(err, be.err) {
			c.JSON(be.status, apierror.NewCoded(be.code, err.Error()))
			return
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
}
