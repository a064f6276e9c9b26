package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ReferenceCode string          `gorm:"column:reference_code;uniqueIndex;size:40;not null" json:"reference_code"`
	ClientID      *uint           `gorm:"column:client_id;index" json:"client_id,omitempty"`
	UserID        uint            `gorm:"column:user_id;index" json:"user_id"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Lines  []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`
}

type SaleLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"column:sale_id;index;not null" json:"sale_id"`
	ProductID uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:decimal(10,2);not null" json:"subtotal"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type Purchase struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ReferenceCode string          `gorm:"column:reference_code;uniqueIndex;size:40;not null" json:"reference_code"`
	SupplierID    uint            `gorm:"column:supplier_id;index;not null" json:"supplier_id"`
	UserID        uint            `gorm:"column:user_id;index" json:"user_id"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Supplier *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Lines    []PurchaseLine `gorm:"foreignKey:PurchaseID" json:"lines"`
}

type PurchaseLine struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PurchaseID uint            `gorm:"column:purchase_id;index;not null" json:"purchase_id"`
	ProductID  uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity   int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:decimal(10,2);not null" json:"unit_cost"`
	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:decimal(10,2);not null" json:"subtotal"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
