package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type UserStats struct {
	Total int64 `json:"total"`
}

type ProductStats struct {
	Total        int64           `json:"total"`
	TotalStock   int64           `json:"stock_total"`
	AveragePrice decimal.Decimal `json:"precio_promedio"`
}

type SalesStats struct {
	Orders  int64           `json:"pedidos_mes"`
	Revenue decimal.Decimal `json:"ingresos_mes"`
}

// Snapshot 同一事务内读取的统计
type Snapshot struct {
	Users    UserStats    `json:"usuarios"`
	Products ProductStats `json:"productos"`
	Sales    SalesStats   `json:"ventas"`
}

type StatsRepository interface {
	Snapshot(ctx context.Context, since time.Time) (*Snapshot, error)
}

// Models 需要建表的全部模型
func Models() []any {
	return []any{&User{}, &Category{}, &Product{}, &Order{}}
}
