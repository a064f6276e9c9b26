package services

import (
	"context"
	"encoding/json"
	"strings"

	"hotel-manager/models"
	"hotel-manager/queue"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventPublisher is satisfied by queue.Publisher and queue.Noop.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

// forUpdate adds SELECT ... FOR UPDATE on dialects that support it. SQLite
// serialises writers and rejects the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector != nil && tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// recordActivity appends an ActivityLog row inside tx.
func recordActivity(tx *gorm.DB, actor Actor, action, entity string, entityID uint, details interface{}) error {
	entry := models.ActivityLog{
		UserID:   actor.UserID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return errors.Wrap(err, "marshal activity details")
		}
		entry.Details = datatypes.JSON(raw)
	}
	if err := tx.Create(&entry).Error; err != nil {
		return errors.Wrap(err, "record activity")
	}
	return nil
}

// adjustStock applies delta in SQL so concurrent writers never lose an
// update, then records the movement with the resulting stock.
func adjustStock(tx *gorm.DB, actor Actor, productID uint, delta int, reason, reference string) error {
	res := tx.Model(&models.Product{}).Unscoped().
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return errors.Wrap(res.Error, "adjust stock")
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "product", ID: productID}
	}

	var after int
	if err := tx.Model(&models.Product{}).Unscoped().
		Where("id = ?", productID).
		Pluck("stock", &after).Error; err != nil {
		return errors.Wrap(err, "read stock")
	}
	if after < 0 {
		log.WithFields(log.Fields{"product_id": productID, "stock": after, "reason": reason}).
			Warn("stock below zero")
	}

	mv := models.StockMovement{
		ProductID:  productID,
		Delta:      delta,
		StockAfter: after,
		Reason:     reason,
		Reference:  reference,
		UserID:     actor.UserID,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return errors.Wrap(err, "record stock movement")
	}
	return nil
}

// newReferenceCode builds e.g. "V-1A2B3C4D5E6F".
func newReferenceCode(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:12])
}

func publishAfterCommit(ctx context.Context, pub EventPublisher, event queue.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("routing_key", event.RoutingKey()).Warn("event publish failed")
	}
}
