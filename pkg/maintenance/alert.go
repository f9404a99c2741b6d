package maintenance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func alertViews(tx *gorm.DB) *gorm.DB {
	return tx.Table("alerts").
		Select("alerts.*, devices.device_name AS device_name, devices.serial_number AS serial_number").
		Joins("LEFT JOIN devices ON devices.id = alerts.device_id")
}

func (m *Maintenance) listAlerts(ctx context.Context, filter models.AlertFilter) ([]models.AlertView, error) {
	query := alertViews(m.conn(ctx))
	if filter.Resolved != nil {
		query = query.Where("alerts.is_resolved = ?", *filter.Resolved)
	}

	alerts := []models.AlertView{}
	err := query.Order("alerts.created_at DESC").Order("alerts.id DESC").Scan(&alerts).Error
	return alerts, err
}

func (m *Maintenance) getAlert(ctx context.Context, id uint) (*models.AlertView, error) {
	var alert models.AlertView
	if err := alertViews(m.conn(ctx)).Where("alerts.id = ?", id).Take(&alert).Error; err != nil {
		return nil, notFoundOr(err, "alert %d not found", id)
	}
	return &alert, nil
}

func (m *Maintenance) createAlert(ctx context.Context, input *models.Alert) (*models.AlertView, error) {
	logger := coreLogger(common.LoggerCategoryAlert)

	if missing := input.Missing(); len(missing) > 0 {
		return nil, missingFields(missing)
	}

	alert := models.Alert{
		DeviceID:  input.DeviceID,
		Message:   input.Message,
		Severity:  input.Severity,
		Notes:     input.Notes,
		AlertDate: input.AlertDate,
	}
	if alert.AlertDate.IsZero() {
		alert.AlertDate = time.Now()
	}

	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Device{}, *alert.DeviceID, "deviceId"); err != nil {
			return err
		}
		return tx.Create(&alert).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Created alert", zap.Uint("id", alert.ID), zap.Uint("deviceId", *alert.DeviceID))
	m.logActivity(ctx, models.ActionCreate, models.TableAlerts, alert.ID, fmt.Sprintf("Created alert for device %d", *alert.DeviceID))

	return m.getAlert(ctx, alert.ID)
}

// updateAlert also handles resolving: isResolved=true stamps resolvedAt and
// stores whatever notes came with it.
func (m *Maintenance) updateAlert(ctx context.Context, id uint, patch *models.AlertPatch) (*models.AlertView, error) {
	logger := coreLogger(common.LoggerCategoryAlert)

	changes := patch.Changes(time.Now())

	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		var alert models.Alert
		if err := tx.First(&alert, id).Error; err != nil {
			return notFoundOr(err, "alert %d not found", id)
		}
		if patch.DeviceID != nil {
			if err := requireRow(tx, &models.Device{}, *patch.DeviceID, "deviceId"); err != nil {
				return err
			}
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&alert).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Updated alert %d", id)
	if patch.IsResolved != nil && *patch.IsResolved {
		details = fmt.Sprintf("Resolved alert %d", id)
	}

	logger.Info("Updated alert", zap.Uint("id", id), zap.Int("fields", len(changes)))
	m.logActivity(ctx, models.ActionUpdate, models.TableAlerts, id, details)

	return m.getAlert(ctx, id)
}

// deleteAlert removes the alert and puts its device back to active.
func (m *Maintenance) deleteAlert(ctx context.Context, id uint) (*models.Alert, error) {
	logger := coreLogger(common.LoggerCategoryAlert)

	var alert models.Alert
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&alert, id).Error; err != nil {
			return notFoundOr(err, "alert %d not found", id)
		}
		if err := tx.Delete(&alert).Error; err != nil {
			return err
		}
		if alert.DeviceID == nil {
			return nil
		}
		return tx.Model(&models.Device{}).
			Where("id = ?", *alert.DeviceID).
			Update("status", string(models.DeviceStatusActive)).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deleted alert", zap.Uint("id", id))
	m.logActivity(ctx, models.ActionDelete, models.TableAlerts, id, fmt.Sprintf("Deleted alert %d", id))

	return &alert, nil
}

type IAlertImpl struct {
	m *Maintenance
}

func (ia *IAlertImpl) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.AlertView, error) {
	return ia.m.listAlerts(ctx, filter)
}

func (ia *IAlertImpl) GetAlert(ctx context.Context, id uint) (*models.AlertView, error) {
	return ia.m.getAlert(ctx, id)
}

func (ia *IAlertImpl) CreateAlert(ctx context.Context, input *models.Alert) (*models.AlertView, error) {
	return ia.m.createAlert(ctx, input)
}

func (ia *IAlertImpl) UpdateAlert(ctx context.Context, id uint, patch *models.AlertPatch) (*models.AlertView, error) {
	return ia.m.updateAlert(ctx, id, patch)
}

func (ia *IAlertImpl) DeleteAlert(ctx context.Context, id uint) (*models.Alert, error) {
	return ia.m.deleteAlert(ctx, id)
}

func (m *Maintenance) GetIAlert() IAlert {
	return &IAlertImpl{m: m}
}
