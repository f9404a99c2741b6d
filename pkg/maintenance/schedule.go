package maintenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func scheduleViews(tx *gorm.DB) *gorm.DB {
	return tx.Table("maintenance_schedules").
		Select(
			"maintenance_schedules.*, " +
				"devices.device_name AS device_name, devices.serial_number AS serial_number, " +
				"technicians.full_name AS technician_name",
		).
		Joins("LEFT JOIN devices ON devices.id = maintenance_schedules.device_id").
		Joins("LEFT JOIN technicians ON technicians.id = maintenance_schedules.technician_id")
}

func (m *Maintenance) listSchedules(ctx context.Context) ([]models.ScheduleView, error) {
	schedules := []models.ScheduleView{}
	err := scheduleViews(m.conn(ctx)).
		Order("maintenance_schedules.scheduled_date ASC").
		Order("maintenance_schedules.id ASC").
		Scan(&schedules).Error
	return schedules, err
}

func (m *Maintenance) getSchedule(ctx context.Context, id uint) (*models.ScheduleView, error) {
	var schedule models.ScheduleView
	if err := scheduleViews(m.conn(ctx)).Where("maintenance_schedules.id = ?", id).Take(&schedule).Error; err != nil {
		return nil, notFoundOr(err, "maintenance schedule %d not found", id)
	}
	return &schedule, nil
}

func (m *Maintenance) createSchedule(ctx context.Context, input *models.MaintenanceSchedule) (*models.ScheduleView, error) {
	logger := coreLogger(common.LoggerCategorySchedule)

	if missing := input.Missing(); len(missing) > 0 {
		return nil, missingFields(missing)
	}

	schedule := models.MaintenanceSchedule{
		DeviceID:        input.DeviceID,
		TechnicianID:    input.TechnicianID,
		MaintenanceType: input.MaintenanceType,
		ScheduledDate:   input.ScheduledDate,
		Status:          input.Status,
		Description:     input.Description,
		Notes:           input.Notes,
	}
	if schedule.Status == "" {
		schedule.Status = models.ScheduleStatusPending
	}
	if !schedule.Status.Valid() {
		return nil, invalidFields([]string{"status"})
	}

	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Device{}, schedule.DeviceID, "deviceId"); err != nil {
			return err
		}
		if schedule.TechnicianID != nil {
			if err := requireRow(tx, &models.Technician{}, *schedule.TechnicianID, "technicianId"); err != nil {
				return err
			}
		}
		return tx.Create(&schedule).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Created maintenance schedule", zap.Uint("id", schedule.ID), zap.Uint("deviceId", schedule.DeviceID))
	m.logActivity(ctx, models.ActionCreate, models.TableMaintenanceSchedules, schedule.ID,
		fmt.Sprintf("Created maintenance schedule for device %d", schedule.DeviceID))

	return m.getSchedule(ctx, schedule.ID)
}

func (m *Maintenance) updateSchedule(ctx context.Context, id uint, patch *models.SchedulePatch) (*models.ScheduleView, error) {
	logger := coreLogger(common.LoggerCategorySchedule)

	changes, invalid := patch.Changes()
	if len(invalid) > 0 {
		return nil, invalidFields(invalid)
	}

	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		var schedule models.MaintenanceSchedule
		if err := tx.First(&schedule, id).Error; err != nil {
			return notFoundOr(err, "maintenance schedule %d not found", id)
		}
		if deviceID, ok := changes["device_id"].(uint); ok {
			if err := requireRow(tx, &models.Device{}, deviceID, "deviceId"); err != nil {
				return err
			}
		}
		if technicianID, ok := changes["technician_id"].(uint); ok {
			if err := requireRow(tx, &models.Technician{}, technicianID, "technicianId"); err != nil {
				return err
			}
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&schedule).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Updated maintenance schedule", zap.Uint("id", id), zap.Int("fields", len(changes)))
	m.logActivity(ctx, models.ActionUpdate, models.TableMaintenanceSchedules, id,
		fmt.Sprintf("Updated maintenance schedule %d", id))

	return m.getSchedule(ctx, id)
}

func (m *Maintenance) deleteSchedule(ctx context.Context, id uint) (*models.MaintenanceSchedule, error) {
	logger := coreLogger(common.LoggerCategorySchedule)

	var schedule models.MaintenanceSchedule
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&schedule, id).Error; err != nil {
			return notFoundOr(err, "maintenance schedule %d not found", id)
		}
		return tx.Delete(&schedule).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deleted maintenance schedule", zap.Uint("id", id))
	m.logActivity(ctx, models.ActionDelete, models.TableMaintenanceSchedules, id,
		fmt.Sprintf("Deleted maintenance schedule %d", id))

	return &schedule, nil
}

type IScheduleImpl struct {
	m *Maintenance
}

func (is *IScheduleImpl) ListSchedules(ctx context.Context) ([]models.ScheduleView, error) {
	return is.m.listSchedules(ctx)
}

func (is *IScheduleImpl) GetSchedule(ctx context.Context, id uint) (*models.ScheduleView, error) {
	return is.m.getSchedule(ctx, id)
}

func (is *IScheduleImpl) CreateSchedule(ctx context.Context, input *models.MaintenanceSchedule) (*models.ScheduleView, error) {
	return is.m.createSchedule(ctx, input)
}

func (is *IScheduleImpl) UpdateSchedule(ctx context.Context, id uint, patch *models.SchedulePatch) (*models.ScheduleView, error) {
	return is.m.updateSchedule(ctx, id, patch)
}

func (is *IScheduleImpl) DeleteSchedule(ctx context.Context, id uint) (*models.MaintenanceSchedule, error) {
	return is.m.deleteSchedule(ctx, id)
}

func (m *Maintenance) GetISchedule() ISchedule {
	return &IScheduleImpl{m: m}
}
