package services

import (
	"context"
	"fmt"

	"hotel-manager/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseLineInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type PurchaseInput struct {
	SupplierID uint                `json:"supplier_id"`
	Lines      []PurchaseLineInput `json:"lines"`
}

type SaleLineInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type SaleInput struct {
	ClientID *uint          `json:"client_id"`
	Lines    []SaleLineInput `json:"lines"`
}

type lineSpec struct {
	ProductID uint
	Quantity  int
	Unit      decimal.Decimal
	unitField string
}

// LedgerService keeps purchases, sales and product stock consistent: every
// write reverses the old stock effect before applying the new one.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// validateLines checks every line before anything is written.
func validateLines(tx *gorm.DB, lines []lineSpec) error {
	verr := &ValidationError{}
	if len(lines) == 0 {
		return verr.Add("lines", "at least one line is required")
	}
	for i, l := range lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		if l.Quantity <= 0 {
			verr.Add(prefix+"quantity", "quantity must be positive")
		}
		if l.Unit.IsNegative() {
			verr.Add(prefix+l.unitField, "amount cannot be negative")
		}
		var product models.Product
		err := tx.Select("id", "active").First(&product, l.ProductID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			verr.Add(prefix+"product_id", "product not found")
		case err != nil:
			return errors.Wrap(err, "load product")
		case !product.Active:
			verr.Add(prefix+"product_id", "product is inactive")
		}
	}
	return verr.OrNil()
}

func purchaseSpecs(in []PurchaseLineInput) []lineSpec {
	out := make([]lineSpec, 0, len(in))
	for _, l := range in {
		out = append(out, lineSpec{ProductID: l.ProductID, Quantity: l.Quantity, Unit: l.UnitCost, unitField: "unit_cost"})
	}
	return out
}

func saleSpecs(in []SaleLineInput) []lineSpec {
	out := make([]lineSpec, 0, len(in))
	for _, l := range in {
		out = append(out, lineSpec{ProductID: l.ProductID, Quantity: l.Quantity, Unit: l.UnitPrice, unitField: "unit_price"})
	}
	return out
}

func validateSupplier(tx *gorm.DB, id uint) error {
	if id == 0 {
		return newValidationError("supplier_id", "supplier is required")
	}
	var n int64
	if err := tx.Model(&models.Supplier{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return errors.Wrap(err, "load supplier")
	}
	if n == 0 {
		return newValidationError("supplier_id", "supplier not found")
	}
	return nil
}

func validateSaleClient(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&models.Client{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return errors.Wrap(err, "load client")
	}
	if n == 0 {
		return newValidationError("client_id", "client not found")
	}
	return nil
}

// ---- purchases ----

func (s *LedgerService) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	var out []models.Purchase
	err := s.DB.WithContext(ctx).Preload("Supplier").Preload("Lines.Product").
		Order("created_at DESC, id DESC").Find(&out).Error
	return out, errors.Wrap(err, "list purchases")
}

func (s *LedgerService) GetPurchase(ctx context.Context, id uint) (*models.Purchase, error) {
	var p models.Purchase
	err := s.DB.WithContext(ctx).Preload("Supplier").Preload("Lines.Product").First(&p, id).Error
	if err != nil {
		return nil, notFoundOr(err, "purchase", id)
	}
	return &p, nil
}

// applyPurchaseLines inserts lines and adds their quantities to stock.
func applyPurchaseLines(tx *gorm.DB, actor Actor, p *models.Purchase, lines []PurchaseLineInput) error {
	total := decimal.Zero
	p.Lines = make([]models.PurchaseLine, 0, len(lines))
	for _, l := range lines {
		line := models.PurchaseLine{
			PurchaseID: p.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			Subtotal:   lineSubtotal(l.Quantity, l.UnitCost),
		}
		if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
			return errors.Wrap(err, "create purchase line")
		}
		if err := adjustStock(tx, actor, l.ProductID, l.Quantity, models.MovementPurchase, p.ReferenceCode); err != nil {
			return err
		}
		total = total.Add(line.Subtotal)
		p.Lines = append(p.Lines, line)
	}
	p.Total = total
	return nil
}

// reversePurchaseLines removes the stock effect of the stored lines and deletes them.
func reversePurchaseLines(tx *gorm.DB, actor Actor, p *models.Purchase) error {
	var old []models.PurchaseLine
	if err := tx.Where("purchase_id = ?", p.ID).Find(&old).Error; err != nil {
		return errors.Wrap(err, "load purchase lines")
	}
	for _, l := range old {
		if err := adjustStock(tx, actor, l.ProductID, -l.Quantity, models.MovementPurchaseReversal, p.ReferenceCode); err != nil {
			return err
		}
	}
	if err := tx.Where("purchase_id = ?", p.ID).Delete(&models.PurchaseLine{}).Error; err != nil {
		return errors.Wrap(err, "delete purchase lines")
	}
	return nil
}

func (s *LedgerService) CreatePurchase(ctx context.Context, actor Actor, in PurchaseInput) (*models.Purchase, error) {
	var p models.Purchase
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateSupplier(tx, in.SupplierID); err != nil {
			return err
		}
		if err := validateLines(tx, purchaseSpecs(in.Lines)); err != nil {
			return err
		}

		p = models.Purchase{
			ReferenceCode: newReferenceCode("C"),
			SupplierID:    in.SupplierID,
			UserID:        actor.UserID,
			Total:         decimal.Zero,
		}
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return errors.Wrap(err, "create purchase")
		}
		if err := applyPurchaseLines(tx, actor, &p, in.Lines); err != nil {
			return err
		}
		if err := tx.Model(&p).UpdateColumn("total", p.Total).Error; err != nil {
			return errors.Wrap(err, "update purchase total")
		}
		return recordActivity(tx, actor, "create", "purchase", p.ID, map[string]interface{}{
			"reference": p.ReferenceCode, "total": p.Total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetPurchase(ctx, p.ID)
}

func (s *LedgerService) UpdatePurchase(ctx context.Context, actor Actor, id uint, in PurchaseInput) (*models.Purchase, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := forUpdate(tx).First(&p, id).Error; err != nil {
			return notFoundOr(err, "purchase", id)
		}
		if err := validateSupplier(tx, in.SupplierID); err != nil {
			return err
		}
		if err := validateLines(tx, purchaseSpecs(in.Lines)); err != nil {
			return err
		}

		if err := reversePurchaseLines(tx, actor, &p); err != nil {
			return err
		}
		if err := applyPurchaseLines(tx, actor, &p, in.Lines); err != nil {
			return err
		}
		if err := tx.Model(&p).Omit(clause.Associations).Updates(map[string]interface{}{
			"supplier_id": in.SupplierID,
			"total":       p.Total,
		}).Error; err != nil {
			return errors.Wrap(err, "update purchase")
		}
		return recordActivity(tx, actor, "update", "purchase", p.ID, map[string]interface{}{
			"reference": p.ReferenceCode, "total": p.Total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetPurchase(ctx, id)
}

func (s *LedgerService) DeletePurchase(ctx context.Context, actor Actor, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := forUpdate(tx).First(&p, id).Error; err != nil {
			return notFoundOr(err, "purchase", id)
		}
		if err := reversePurchaseLines(tx, actor, &p); err != nil {
			return err
		}
		if err := tx.Delete(&models.Purchase{}, p.ID).Error; err != nil {
			return errors.Wrap(err, "delete purchase")
		}
		return recordActivity(tx, actor, "delete", "purchase", p.ID, map[string]interface{}{
			"reference": p.ReferenceCode,
		})
	})
}

// ---- sales ----

func (s *LedgerService) ListSales(ctx context.Context) ([]models.Sale, error) {
	var out []models.Sale
	err := s.DB.WithContext(ctx).Preload("Client").Preload("Lines.Product").
		Order("created_at DESC, id DESC").Find(&out).Error
	return out, errors.Wrap(err, "list sales")
}

func (s *LedgerService) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.DB.WithContext(ctx).Preload("Client").Preload("Lines.Product").First(&sale, id).Error
	if err != nil {
		return nil, notFoundOr(err, "sale", id)
	}
	return &sale, nil
}

func applySaleLines(tx *gorm.DB, actor Actor, sale *models.Sale, lines []SaleLineInput) error {
	total := decimal.Zero
	sale.Lines = make([]models.SaleLine, 0, len(lines))
	for _, l := range lines {
		line := models.SaleLine{
			SaleID:    sale.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  lineSubtotal(l.Quantity, l.UnitPrice),
		}
		if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
			return errors.Wrap(err, "create sale line")
		}
		if err := adjustStock(tx, actor, l.ProductID, -l.Quantity, models.MovementSale, sale.ReferenceCode); err != nil {
			return err
		}
		total = total.Add(line.Subtotal)
		sale.Lines = append(sale.Lines, line)
	}
	sale.Total = total
	return nil
}

func reverseSaleLines(tx *gorm.DB, actor Actor, sale *models.Sale) error {
	var old []models.SaleLine
	if err := tx.Where("sale_id = ?", sale.ID).Find(&old).Error; err != nil {
		return errors.Wrap(err, "load sale lines")
	}
	for _, l := range old {
		if err := adjustStock(tx, actor, l.ProductID, l.Quantity, models.MovementSaleReversal, sale.ReferenceCode); err != nil {
			return err
		}
	}
	if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleLine{}).Error; err != nil {
		return errors.Wrap(err, "delete sale lines")
	}
	return nil
}

// lockStandaloneSale loads a sale for writing and refuses consumption sales,
// whose totals are mirrored into a reservation.
func lockStandaloneSale(tx *gorm.DB, id uint) (models.Sale, error) {
	var sale models.Sale
	if err := forUpdate(tx).First(&sale, id).Error; err != nil {
		return sale, notFoundOr(err, "sale", id)
	}
	var linked int64
	if err := tx.Model(&models.Reservation{}).Where("sale_id = ?", sale.ID).Count(&linked).Error; err != nil {
		return sale, errors.Wrap(err, "check reservation link")
	}
	if linked > 0 {
		return sale, conflict("sale %s belongs to a reservation and is managed from reception", sale.ReferenceCode)
	}
	return sale, nil
}

func (s *LedgerService) CreateSale(ctx context.Context, actor Actor, in SaleInput) (*models.Sale, error) {
	var sale models.Sale
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateSaleClient(tx, in.ClientID); err != nil {
			return err
		}
		if err := validateLines(tx, saleSpecs(in.Lines)); err != nil {
			return err
		}

		sale = models.Sale{
			ReferenceCode: newReferenceCode("V"),
			ClientID:      in.ClientID,
			UserID:        actor.UserID,
			Total:         decimal.Zero,
		}
		if err := tx.Omit(clause.Associations).Create(&sale).Error; err != nil {
			return errors.Wrap(err, "create sale")
		}
		if err := applySaleLines(tx, actor, &sale, in.Lines); err != nil {
			return err
		}
		if err := tx.Model(&sale).UpdateColumn("total", sale.Total).Error; err != nil {
			return errors.Wrap(err, "update sale total")
		}
		return recordActivity(tx, actor, "create", "sale", sale.ID, map[string]interface{}{
			"reference": sale.ReferenceCode, "total": sale.Total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, sale.ID)
}

func (s *LedgerService) UpdateSale(ctx context.Context, actor Actor, id uint, in SaleInput) (*models.Sale, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := lockStandaloneSale(tx, id)
		if err != nil {
			return err
		}
		if err := validateSaleClient(tx, in.ClientID); err != nil {
			return err
		}
		if err := validateLines(tx, saleSpecs(in.Lines)); err != nil {
			return err
		}

		if err := reverseSaleLines(tx, actor, &sale); err != nil {
			return err
		}
		if err := applySaleLines(tx, actor, &sale, in.Lines); err != nil {
			return err
		}
		if err := tx.Model(&sale).Omit(clause.Associations).Updates(map[string]interface{}{
			"client_id": in.ClientID,
			"total":     sale.Total,
		}).Error; err != nil {
			return errors.Wrap(err, "update sale")
		}
		return recordActivity(tx, actor, "update", "sale", sale.ID, map[string]interface{}{
			"reference": sale.ReferenceCode, "total": sale.Total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, id)
}

func (s *LedgerService) DeleteSale(ctx context.Context, actor Actor, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := lockStandaloneSale(tx, id)
		if err != nil {
			return err
		}
		if err := reverseSaleLines(tx, actor, &sale); err != nil {
			return err
		}
		if err := tx.Delete(&models.Sale{}, sale.ID).Error; err != nil {
			return errors.Wrap(err, "delete sale")
		}
		return recordActivity(tx, actor, "delete", "sale", sale.ID, map[string]interface{}{
			"reference": sale.ReferenceCode,
		})
	})
}

// StockMovements lists the movement history of one product, newest first.
func (s *LedgerService) StockMovements(ctx context.Context, productID uint) ([]models.StockMovement, error) {
	var out []models.StockMovement
	err := s.DB.WithContext(ctx).Where("product_id = ?", productID).
		Order("id DESC").Find(&out).Error
	return out, errors.Wrap(err, "list stock movements")
}
