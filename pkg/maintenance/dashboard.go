package maintenance

import (
	"context"

	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

func (m *Maintenance) getDashboard(ctx context.Context) (*models.Dashboard, error) {
	logger := coreLogger(common.LoggerCategoryDashboard)

	devices, err := m.Device.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := m.Alert.ListAlerts(ctx, models.AlertFilter{})
	if err != nil {
		return nil, err
	}
	schedules, err := m.Schedule.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}

	summary := models.DashboardSummary{
		TotalDevices:    int64(len(devices)),
		DevicesByStatus: map[models.DeviceStatus]int64{},
	}
	for _, status := range models.DeviceStatuses {
		summary.DevicesByStatus[status] = 0
	}
	for _, device := range devices {
		summary.DevicesByStatus[device.Status]++
	}
	for _, alert := range alerts {
		if !alert.IsResolved {
			summary.UnresolvedAlerts++
		}
	}
	for _, schedule := range schedules {
		if schedule.Status == models.ScheduleStatusPending {
			summary.PendingSchedules++
		}
	}

	logger.Debug("Built dashboard", zap.Reflect("summary", summary))

	return &models.Dashboard{
		Devices:   devices,
		Alerts:    alerts,
		Schedules: schedules,
		Summary:   summary,
	}, nil
}

type IDashboardImpl struct {
	m *Maintenance
}

func (id *IDashboardImpl) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	return id.m.getDashboard(ctx)
}

func (m *Maintenance) GetIDashboard() IDashboard {
	return &IDashboardImpl{m: m}
}
