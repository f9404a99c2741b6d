package maintenance

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func coreLogger(category string) *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameMaintenanceCore,
		zap.String(common.LoggerFieldCategory, category),
	)
}

func (m *Maintenance) conn(ctx context.Context) *gorm.DB {
	return m.Db.Conn.WithContext(ctx)
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.NewNotFoundError(err, format, args...)
	}
	return err
}

func missingFields(fields []string) error {
	return common.NewValidationError(fields, "missing required fields: %s", strings.Join(fields, ", "))
}

func invalidFields(fields []string) error {
	return common.NewValidationError(fields, "invalid fields: %s", strings.Join(fields, ", "))
}

// requireRow fails with a ValidationError naming field when no row of model
// has the given id.
func requireRow(tx *gorm.DB, model any, id uint, field string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return common.NewValidationError([]string{field}, "%s %d does not exist", field, id)
	}
	return nil
}

func (m *Maintenance) logActivity(ctx context.Context, action models.ActivityAction, table string, recordID uint, details string) {
	if m.Activity == nil {
		return
	}
	m.Activity.LogActivity(ctx, action, table, recordID, details)
}
