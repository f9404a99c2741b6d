package maintenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func (m *Maintenance) listTechnicians(ctx context.Context) ([]models.Technician, error) {
	technicians := []models.Technician{}
	err := m.conn(ctx).Order("full_name ASC").Find(&technicians).Error
	return technicians, err
}

func (m *Maintenance) getTechnician(ctx context.Context, id uint) (*models.Technician, error) {
	var technician models.Technician
	if err := m.conn(ctx).First(&technician, id).Error; err != nil {
		return nil, notFoundOr(err, "technician %d not found", id)
	}
	return &technician, nil
}

func (m *Maintenance) createTechnician(ctx context.Context, input *models.Technician) (*models.Technician, error) {
	logger := coreLogger(common.LoggerCategoryTechnician)

	if missing := input.Missing(); len(missing) > 0 {
		return nil, missingFields(missing)
	}

	technician := models.Technician{
		FullName:       input.FullName,
		Specialization: input.Specialization,
		PhoneNumber:    input.PhoneNumber,
		Address:        input.Address,
		HireDate:       input.HireDate,
	}
	if err := m.conn(ctx).Create(&technician).Error; err != nil {
		return nil, err
	}

	logger.Info("Created technician", zap.Uint("id", technician.ID))
	m.logActivity(ctx, models.ActionCreate, models.TableTechnicians, technician.ID, fmt.Sprintf("Created technician: %s", technician.FullName))

	return &technician, nil
}

func (m *Maintenance) updateTechnician(ctx context.Context, id uint, patch *models.TechnicianPatch) (*models.Technician, error) {
	logger := coreLogger(common.LoggerCategoryTechnician)

	changes, invalid := patch.Changes()
	if len(invalid) > 0 {
		return nil, invalidFields(invalid)
	}

	var technician models.Technician
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&technician, id).Error; err != nil {
			return notFoundOr(err, "technician %d not found", id)
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&technician).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&technician, id).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Updated technician", zap.Uint("id", id), zap.Int("fields", len(changes)))
	m.logActivity(ctx, models.ActionUpdate, models.TableTechnicians, id, fmt.Sprintf("Updated technician: %s", technician.FullName))

	return &technician, nil
}

// deleteTechnician unassigns the technician from every schedule and then
// removes the row. A device still assigned to the technician blocks the
// delete and the whole transaction, schedule unassignment included, is rolled
// back.
func (m *Maintenance) deleteTechnician(ctx context.Context, id uint) (*models.Technician, error) {
	logger := coreLogger(common.LoggerCategoryTechnician)

	var technician models.Technician
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&technician, id).Error; err != nil {
			return notFoundOr(err, "technician %d not found", id)
		}

		err := tx.Model(&models.MaintenanceSchedule{}).
			Where("technician_id = ?", id).
			Update("technician_id", nil).Error
		if err != nil {
			return err
		}

		var assigned int64
		if err := tx.Model(&models.Device{}).Where("assigned_technician = ?", id).Count(&assigned).Error; err != nil {
			return err
		}
		if assigned > 0 {
			return common.NewConflictError(nil,
				"Cannot delete technician: still assigned to %d device(s)", assigned)
		}

		return tx.Delete(&technician).Error
	})
	if err != nil {
		if common.IsConflictError(err) {
			logger.Warn("Technician delete blocked", zap.Uint("id", id), zap.Error(err))
		}
		return nil, err
	}

	logger.Info("Deleted technician", zap.Uint("id", id))
	m.logActivity(ctx, models.ActionDelete, models.TableTechnicians, id, fmt.Sprintf("Deleted technician: %s", technician.FullName))

	return &technician, nil
}

type ITechnicianImpl struct {
	m *Maintenance
}

func (it *ITechnicianImpl) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	return it.m.listTechnicians(ctx)
}

func (it *ITechnicianImpl) GetTechnician(ctx context.Context, id uint) (*models.Technician, error) {
	return it.m.getTechnician(ctx, id)
}

func (it *ITechnicianImpl) CreateTechnician(ctx context.Context, input *models.Technician) (*models.Technician, error) {
	return it.m.createTechnician(ctx, input)
}

func (it *ITechnicianImpl) UpdateTechnician(ctx context.Context, id uint, patch *models.TechnicianPatch) (*models.Technician, error) {
	return it.m.updateTechnician(ctx, id, patch)
}

func (it *ITechnicianImpl) DeleteTechnician(ctx context.Context, id uint) (*models.Technician, error) {
	return it.m.deleteTechnician(ctx, id)
}

func (m *Maintenance) GetITechnician() ITechnician {
	return &ITechnicianImpl{m: m}
}
