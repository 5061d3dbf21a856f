package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearSucursalRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2"`
	Direccion *string `json:"direccion"`
}

type ActualizarSucursalRequest struct {
	Nombre    *string `json:"nombre" validate:"omitempty,min=2"`
	Direccion *string `json:"direccion"`
}

type ActualizarEmpresaRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2"`
	CUIT   *string `json:"cuit"   validate:"omitempty,min=11,max=13"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SucursalResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}

type EmpresaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	CUIT   *string `json:"cuit"`
	Activo bool   `json:"activo"`
}
