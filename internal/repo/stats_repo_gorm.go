package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tienda-api/internal/core/database"
	"tienda-api/internal/domain"
)

type StatsRepo struct{ store *database.Store }

func NewStatsRepo(store *database.Store) *StatsRepo { return &StatsRepo{store: store} }

var _ domain.StatsRepository = (*StatsRepo)(nil)

// Snapshot 四条聚合在同一只读事务内执行，保证数字互相一致
func (r *StatsRepo) Snapshot(ctx context.Context, since time.Time) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := r.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.Query(ctx, &snap.Users.Total,
			"SELECT COUNT(*) FROM usuarios"); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if err := tx.Query(ctx, &snap.Products.Total,
			"SELECT COUNT(*) FROM productos WHERE activo = ?", true); err != nil {
			return fmt.Errorf("count products: %w", err)
		}

		var stock struct {
			TotalStock   int64
			AveragePrice decimal.NullDecimal
		}
		if err := tx.Query(ctx, &stock,
			"SELECT COALESCE(SUM(stock), 0) AS total_stock, AVG(precio) AS average_price FROM productos WHERE activo = ?", true); err != nil {
			return fmt.Errorf("stock totals: %w", err)
		}
		snap.Products.TotalStock = stock.TotalStock
		snap.Products.AveragePrice = stock.AveragePrice.Decimal.Round(2)

		var sales struct {
			Orders  int64
			Revenue decimal.NullDecimal
		}
		if err := tx.Query(ctx, &sales,
			"SELECT COUNT(*) AS orders, SUM(total) AS revenue FROM pedidos WHERE fecha_pedido >= ?", since); err != nil {
			return fmt.Errorf("sales totals: %w", err)
		}
		snap.Sales.Orders = sales.Orders
		snap.Sales.Revenue = sales.Revenue.Decimal
		return nil
	}, database.SnapshotTx)
	if err != nil {
		return nil, fmt.Errorf("StatsRepo.Snapshot: %w", err)
	}
	return &snap, nil
}
