package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 只被统计读取
type Order struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   *int64          `gorm:"column:usuario_id;index" json:"usuario_id"`
	Total    decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null" json:"total"`
	PlacedAt time.Time       `gorm:"column:fecha_pedido;not null;index" json:"fecha_pedido"`
}

func (Order) TableName() string { return "pedidos" }
