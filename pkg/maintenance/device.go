package maintenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func deviceViews(tx *gorm.DB) *gorm.DB {
	return tx.Table("devices").
		Select("devices.*, technicians.full_name AS technician_name").
		Joins("LEFT JOIN technicians ON technicians.id = devices.assigned_technician")
}

func (m *Maintenance) listDevices(ctx context.Context) ([]models.DeviceView, error) {
	devices := []models.DeviceView{}
	err := deviceViews(m.conn(ctx)).Order("devices.id DESC").Scan(&devices).Error
	return devices, err
}

func (m *Maintenance) getDevice(ctx context.Context, id uint) (*models.DeviceView, error) {
	var device models.DeviceView
	if err := deviceViews(m.conn(ctx)).Where("devices.id = ?", id).Take(&device).Error; err != nil {
		return nil, notFoundOr(err, "device %d not found", id)
	}
	return &device, nil
}

func (m *Maintenance) createDevice(ctx context.Context, input *models.Device) (*models.DeviceView, error) {
	logger := coreLogger(common.LoggerCategoryDevice)

	if missing := input.Missing(); len(missing) > 0 {
		return nil, missingFields(missing)
	}

	device := models.Device{
		DeviceName:          input.DeviceName,
		SerialNumber:        input.SerialNumber,
		Model:               input.Model,
		Manufacturer:        input.Manufacturer,
		PurchaseDate:        input.PurchaseDate,
		WarrantyExpiry:      input.WarrantyExpiry,
		Status:              input.Status,
		Location:            input.Location,
		LastMaintenanceDate: input.LastMaintenanceDate,
		NextMaintenanceDate: input.NextMaintenanceDate,
		Notes:               input.Notes,
		AssignedTechnician:  input.AssignedTechnician,
	}
	if device.Status == "" {
		device.Status = models.DeviceStatusActive
	}
	if !device.Status.Valid() {
		return nil, invalidFields([]string{"status"})
	}

	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if device.AssignedTechnician != nil {
			if err := requireRow(tx, &models.Technician{}, *device.AssignedTechnician, "assignedTechnician"); err != nil {
				return err
			}
		}
		return tx.Create(&device).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Created device", zap.Uint("id", device.ID), zap.String("serialNumber", device.SerialNumber))
	m.logActivity(ctx, models.ActionCreate, models.TableDevices, device.ID, fmt.Sprintf("Created device: %s", device.DeviceName))

	return m.getDevice(ctx, device.ID)
}

func (m *Maintenance) updateDevice(ctx context.Context, id uint, patch *models.DevicePatch) (*models.DeviceView, error) {
	logger := coreLogger(common.LoggerCategoryDevice)

	changes, invalid := patch.Changes()
	if len(invalid) > 0 {
		return nil, invalidFields(invalid)
	}

	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		var device models.Device
		if err := tx.First(&device, id).Error; err != nil {
			return notFoundOr(err, "device %d not found", id)
		}
		if technicianID, ok := changes["assigned_technician"].(uint); ok {
			if err := requireRow(tx, &models.Technician{}, technicianID, "assignedTechnician"); err != nil {
				return err
			}
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&device).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := m.getDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("Updated device", zap.Uint("id", id), zap.Int("fields", len(changes)))
	m.logActivity(ctx, models.ActionUpdate, models.TableDevices, id, fmt.Sprintf("Updated device: %s", updated.DeviceName))

	return updated, nil
}

// deleteDevice removes the device together with its alerts and schedules.
func (m *Maintenance) deleteDevice(ctx context.Context, id uint) (*models.Device, error) {
	logger := coreLogger(common.LoggerCategoryDevice)

	var device models.Device
	var alerts, schedules int64
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&device, id).Error; err != nil {
			return notFoundOr(err, "device %d not found", id)
		}

		res := tx.Where("device_id = ?", id).Delete(&models.Alert{})
		if res.Error != nil {
			return res.Error
		}
		alerts = res.RowsAffected

		res = tx.Where("device_id = ?", id).Delete(&models.MaintenanceSchedule{})
		if res.Error != nil {
			return res.Error
		}
		schedules = res.RowsAffected

		return tx.Delete(&device).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deleted device",
		zap.Uint("id", id),
		zap.Int64("alerts", alerts),
		zap.Int64("schedules", schedules),
	)
	m.logActivity(ctx, models.ActionDelete, models.TableDevices, id, fmt.Sprintf("Deleted device: %s", device.DeviceName))

	return &device, nil
}

type IDeviceImpl struct {
	m *Maintenance
}

func (id *IDeviceImpl) ListDevices(ctx context.Context) ([]models.DeviceView, error) {
	return id.m.listDevices(ctx)
}

func (id *IDeviceImpl) GetDevice(ctx context.Context, deviceID uint) (*models.DeviceView, error) {
	return id.m.getDevice(ctx, deviceID)
}

func (id *IDeviceImpl) CreateDevice(ctx context.Context, input *models.Device) (*models.DeviceView, error) {
	return id.m.createDevice(ctx, input)
}

func (id *IDeviceImpl) UpdateDevice(ctx context.Context, deviceID uint, patch *models.DevicePatch) (*models.DeviceView, error) {
	return id.m.updateDevice(ctx, deviceID, patch)
}

func (id *IDeviceImpl) DeleteDevice(ctx context.Context, deviceID uint) (*models.Device, error) {
	return id.m.deleteDevice(ctx, deviceID)
}

func (m *Maintenance) GetIDevice() IDevice {
	return &IDeviceImpl{m: m}
}
