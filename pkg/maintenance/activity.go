package maintenance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func (m *Maintenance) logActivityEntry(ctx context.Context, action models.ActivityAction, table string, recordID uint, details string) {
	logger := coreLogger(common.LoggerCategoryActivity)

	actor, ok := models.ActorFromContext(ctx)
	if !ok {
		logger.Debug("Skipping activity without actor", zap.String("action", string(action)), zap.String("table", table))
		return
	}

	entry := models.ActivityLog{
		UserID:      actor.ID,
		Action:      action,
		TargetTable: table,
		RecordID:    recordID,
		Details:     details,
		Timestamp:   time.Now(),
	}

	// written even when the request context is already cancelled
	if err := m.Db.Conn.WithContext(context.WithoutCancel(ctx)).Create(&entry).Error; err != nil {
		logger.Error("Failed to record activity",
			zap.Uint("userId", actor.ID),
			zap.String("action", string(action)),
			zap.String("table", table),
			zap.Uint("recordId", recordID),
			zap.Error(err),
		)
	}
}

func (m *Maintenance) listActivityLogs(ctx context.Context) ([]models.ActivityLogView, error) {
	logs := []models.ActivityLogView{}
	err := m.conn(ctx).Table("activity_logs").
		Select("activity_logs.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = activity_logs.user_id").
		Order("activity_logs.timestamp DESC").
		Order("activity_logs.id DESC").
		Scan(&logs).Error
	return logs, err
}

type IActivityImpl struct {
	m *Maintenance
}

func (ia *IActivityImpl) LogActivity(ctx context.Context, action models.ActivityAction, table string, recordID uint, details string) {
	ia.m.logActivityEntry(ctx, action, table, recordID, details)
}

func (ia *IActivityImpl) ListActivityLogs(ctx context.Context) ([]models.ActivityLogView, error) {
	return ia.m.listActivityLogs(ctx)
}

func (m *Maintenance) GetIActivity() IActivity {
	return &IActivityImpl{m: m}
}
