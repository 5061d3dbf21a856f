package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProductoService defines the business logic contract for the catalog.
type ProductoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, actor Actor, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo  repository.ProductoRepository
	stock repository.StockRepository
	rdb   *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, stock repository.StockRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, stock: stock, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if existing, err := s.repo.FindByBarcode(ctx, actor.EmpresaID, req.CodigoBarras); err == nil && existing != nil {
		return nil, errors.New("ya existe un producto con ese código de barras")
	}

	p := &model.Producto{
		EmpresaID:    actor.EmpresaID,
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		PrecioCosto:  req.PrecioCosto,
		PrecioVenta:  req.PrecioVenta,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarCachePrecio(ctx, actor.EmpresaID, p.CodigoBarras)
	return s.toResponse(ctx, p, false), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto no encontrado: %w", err)
	}
	return s.toResponse(ctx, p, true), nil
}

func (s *productoService) Listar(ctx context.Context, actor Actor, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, actor.EmpresaID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *s.toResponse(ctx, &productos[i], false))
	}
	return &dto.ProductoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("producto no encontrado: %w", err)
	}
	if p.EmpresaID != actor.EmpresaID {
		return nil, ErrFueraDeAlcance
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioCosto != nil {
		p.PrecioCosto = *req.PrecioCosto
	}
	if req.PrecioVenta != nil {
		p.PrecioVenta = *req.PrecioVenta
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarCachePrecio(ctx, actor.EmpresaID, p.CodigoBarras)
	return s.toResponse(ctx, p, false), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

// invalidarCachePrecio drops the redis price-check entry after any price or
// catalog mutation so the public endpoint never serves a stale price.
func (s *productoService) invalidarCachePrecio(ctx context.Context, empresaID uuid.UUID, barcode string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, "precio:"+empresaID.String()+":"+barcode).Err()
}

func (s *productoService) toResponse(ctx context.Context, p *model.Producto, conStock bool) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:           p.ID.String(),
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioCosto:  p.PrecioCosto,
		PrecioVenta:  p.PrecioVenta,
		Activo:       p.Activo,
	}
	if conStock {
		if rows, err := s.stock.ListPorProducto(ctx, p.ID); err == nil {
			for _, sp := range rows {
				nombre := ""
				if sp.Sucursal != nil {
					nombre = sp.Sucursal.Nombre
				}
				resp.Stock = append(resp.Stock, dto.StockSucursalResponse{
					SucursalID:  sp.SucursalID.String(),
					Sucursal:    nombre,
					Stock:       sp.Stock,
					StockMinimo: sp.StockMinimo,
				})
			}
		}
	}
	return resp
}
