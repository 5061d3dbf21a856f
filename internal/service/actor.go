package service

import (
	"github.com/google/uuid"
)

// Actor is the identity projection handed to every core operation. It is
// built by the auth middleware from JWT claims — services never authenticate,
// they only scope by empresa/sucursal/rol.
type Actor struct {
	UsuarioID uuid.UUID
	EmpresaID uuid.UUID
	// SucursalID is nil for management users, who may operate on any
	// sucursal of their empresa by naming it explicitly.
	SucursalID *uuid.UUID
	Rol        string
}

// EsManagement reports whether the actor can operate across sucursales.
func (a Actor) EsManagement() bool {
	return a.Rol == "supervisor" || a.Rol == "administrador"
}

// ResolverSucursal applies the branch-selection rule shared by caja opening
// and sale registration: cashiers always use their assigned branch;
// management must name one explicitly.
func (a Actor) ResolverSucursal(elegida *uuid.UUID) (uuid.UUID, error) {
	if a.SucursalID != nil {
		return *a.SucursalID, nil
	}
	if a.EsManagement() && elegida != nil {
		return *elegida, nil
	}
	return uuid.Nil, ErrSucursalRequerida
}
