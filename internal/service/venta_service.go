package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaService orchestrates the sale pipeline. The commit runs as one ACID
// transaction: open-caja check, per-line stock lock + validation,
// server-side total, optional credit charge, stock deduction, sale + item
// persistence. Any failure leaves zero trace.
type VentaService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Anular(ctx context.Context, actor Actor, id uuid.UUID, motivo string) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo     repository.VentaRepository
	stock    StockService
	credito  CreditoService
	cajaRepo repository.CajaRepository
	catalogo repository.ProductoRepository
}

func NewVentaService(
	repo repository.VentaRepository,
	stock StockService,
	credito CreditoService,
	cajaRepo repository.CajaRepository,
	catalogo repository.ProductoRepository,
) VentaService {
	return &ventaService{
		repo:     repo,
		stock:    stock,
		credito:  credito,
		cajaRepo: cajaRepo,
		catalogo: catalogo,
	}
}

// ── Registrar ────────────────────────────────────────────────────────────────

func (s *ventaService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	var sucursalElegida *uuid.UUID
	if req.SucursalID != nil {
		id, err := uuid.Parse(*req.SucursalID)
		if err != nil {
			return nil, fmt.Errorf("sucursal_id inválido: %w", err)
		}
		sucursalElegida = &id
	}
	sucursalID, err := actor.ResolverSucursal(sucursalElegida)
	if err != nil {
		return nil, err
	}

	// 1. No sale without an open register for this (usuario, sucursal).
	caja, err := s.cajaRepo.FindAbierta(ctx, actor.UsuarioID, sucursalID)
	if err != nil {
		return nil, ErrSinCajaAbierta
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil {
		id, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		clienteID = &id
	}
	if req.MetodoPago == "credito" && clienteID == nil {
		return nil, fmt.Errorf("venta a crédito sin cliente: %w", ErrCreditoDenegado)
	}

	// Resolve the catalog rows up front; prices come from here and nowhere
	// else. Stock checks happen later, under lock, inside the transaction.
	type lineaResuelta struct {
		productoID uuid.UUID
		nombre     string
		precio     decimal.Decimal
		costo      decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
	}

	var lineas []lineaResuelta
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.catalogo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s no encontrado", item.ProductoID)
		}
		if p.EmpresaID != actor.EmpresaID {
			return nil, ErrFueraDeAlcance
		}
		if !p.Activo {
			return nil, fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre)
		}
		subtotal := p.PrecioVenta.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		total = total.Add(subtotal)
		lineas = append(lineas, lineaResuelta{
			productoID: pid,
			nombre:     p.Nombre,
			precio:     p.PrecioVenta,
			costo:      p.PrecioCosto,
			cantidad:   item.Cantidad,
			subtotal:   subtotal,
		})
	}

	// Cash sales: validate tender and compute change before committing.
	var montoRecibido, vuelto *decimal.Decimal
	if req.MetodoPago == "efectivo" {
		if req.MontoRecibido == nil || req.MontoRecibido.LessThan(total) {
			return nil, errors.New("el monto recibido es insuficiente")
		}
		v := req.MontoRecibido.Sub(total)
		montoRecibido = req.MontoRecibido
		vuelto = &v
	}

	// 2–6. Single ACID transaction.
	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The open-caja check above ran outside this transaction; lock the
		// row and re-verify so a sale never lands on a session that was
		// reconciled and closed in between.
		sesion, err := s.cajaRepo.FindForUpdateTx(tx, caja.ID)
		if err != nil || sesion.Estado != "abierta" {
			return ErrSinCajaAbierta
		}

		ticketNum, err := s.repo.NextTicketNumber(tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			NumeroTicket:  ticketNum,
			CajaID:        caja.ID,
			SucursalID:    sucursalID,
			UsuarioID:     actor.UsuarioID,
			ClienteID:     clienteID,
			MetodoPago:    req.MetodoPago,
			Total:         total,
			MontoRecibido: montoRecibido,
			Vuelto:        vuelto,
			Estado:        "completada",
		}
		for _, l := range lineas {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     l.productoID,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				CostoUnitario:  l.costo,
				Subtotal:       l.subtotal,
			})
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		// Credit charge — same atomic unit as everything else; a limit
		// violation rolls the whole sale back.
		if req.MetodoPago == "credito" {
			descripcion := fmt.Sprintf("Venta #%d a crédito", ticketNum)
			if _, err := s.credito.CargarTx(tx, actor.EmpresaID, *clienteID, total, &venta.ID, actor.UsuarioID, descripcion); err != nil {
				return err
			}
		}

		// Deduct stock per line under row locks; any shortage aborts all.
		for _, l := range lineas {
			antes, despues, err := s.stock.DescontarTx(tx, sucursalID, l.productoID, l.cantidad)
			if err != nil {
				if errors.Is(err, ErrStockInsuficiente) {
					return fmt.Errorf("%s: %w", l.nombre, ErrStockInsuficiente)
				}
				return fmt.Errorf("error descontando stock de %s: %w", l.nombre, err)
			}
			ventaRef := venta.ID
			if err := s.stock.RegistrarMovimientoTx(tx, &model.MovimientoStock{
				SucursalID:    sucursalID,
				ProductoID:    l.productoID,
				Tipo:          "venta",
				Cantidad:      -l.cantidad,
				StockAnterior: antes,
				StockNuevo:    despues,
				Motivo:        fmt.Sprintf("Venta #%d", ticketNum),
				ReferenciaID:  &ventaRef,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := ventaToResponse(&venta)
	for i, l := range lineas {
		resp.Items[i].Producto = l.nombre
	}
	return resp, nil
}

// ── Anular ───────────────────────────────────────────────────────────────────
// Restocks every line at the sale's sucursal and flips estado, exactly once.
// Associated credit charges and cash movements are deliberately NOT reversed
// here — corrections to the ledger are a manual, audited operation.

func (s *ventaService) Anular(ctx context.Context, actor Actor, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrVentaNoEncontrada
	}
	if venta.Estado == "anulada" {
		return ErrVentaYaAnulada
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range venta.Items {
			antes, despues, err := s.stock.ReponerTx(tx, venta.SucursalID, item.ProductoID, item.Cantidad)
			if err != nil {
				return err
			}
			ventaRef := venta.ID
			if err := s.stock.RegistrarMovimientoTx(tx, &model.MovimientoStock{
				SucursalID:    venta.SucursalID,
				ProductoID:    item.ProductoID,
				Tipo:          "restore_anulacion",
				Cantidad:      item.Cantidad,
				StockAnterior: antes,
				StockNuevo:    despues,
				Motivo:        fmt.Sprintf("Anulación venta #%d — %s", venta.NumeroTicket, motivo),
				ReferenciaID:  &ventaRef,
			}); err != nil {
				return err
			}
		}
		return s.repo.UpdateEstadoTx(tx, id, "anulada")
	})
}

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}
	return ventaToResponse(venta), nil
}

// Listar returns a paginated list of sales, filtered by date and estado.
// Default filter: today's completed sales.
func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = "completada"
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for _, v := range ventas {
		items = append(items, *ventaToResponse(&v))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	var clienteID *string
	if v.ClienteID != nil {
		id := v.ClienteID.String()
		clienteID = &id
	}
	return &dto.VentaResponse{
		ID:            v.ID.String(),
		NumeroTicket:  v.NumeroTicket,
		CajaID:        v.CajaID.String(),
		SucursalID:    v.SucursalID.String(),
		ClienteID:     clienteID,
		Items:         items,
		MetodoPago:    v.MetodoPago,
		Total:         v.Total,
		MontoRecibido: v.MontoRecibido,
		Vuelto:        v.Vuelto,
		Estado:        v.Estado,
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
