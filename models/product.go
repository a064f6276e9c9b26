package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	gorm.Model

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

type Product struct {
	gorm.Model

	Name        string `gorm:"size:255;not null;index" json:"name"`
	CategoryID  *uint  `gorm:"column:category_id;index" json:"category_id,omitempty"`
	Description string `gorm:"type:text" json:"description"`

	SalePrice decimal.Decimal `gorm:"column:sale_price;type:decimal(10,2);not null" json:"sale_price"`
	Stock     int             `gorm:"column:stock;not null" json:"stock"`
	Active    bool            `gorm:"column:active;not null" json:"active"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// StockMovement records every change applied to Product.Stock.
type StockMovement struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProductID  uint   `gorm:"column:product_id;index;not null" json:"product_id"`
	Delta      int    `gorm:"column:delta;not null" json:"delta"`
	StockAfter int    `gorm:"column:stock_after;not null" json:"stock_after"`
	Reason     string `gorm:"column:reason;size:30;not null;index" json:"reason"`
	Reference  string `gorm:"column:reference;size:64;index" json:"reference"`
	UserID     uint   `gorm:"column:user_id" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

const (
	MovementPurchase         = "purchase"
	MovementPurchaseReversal = "purchase_reversal"
	MovementSale             = "sale"
	MovementSaleReversal     = "sale_reversal"
	MovementConsumption      = "consumption"
)
