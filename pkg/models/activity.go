package models

import "time"

type ActivityAction string

const (
	ActionCreate ActivityAction = "CREATE"
	ActionUpdate ActivityAction = "UPDATE"
	ActionDelete ActivityAction = "DELETE"
	ActionExport ActivityAction = "EXPORT"
)

const (
	TableDevices              = "Devices"
	TableTechnicians          = "Technicians"
	TableAlerts               = "Alerts"
	TableMaintenanceSchedules = "MaintenanceSchedules"
	TableUsers                = "Users"
)

// ActivityLog has no foreign key to users so that entries outlive the
// account that produced them.
type ActivityLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"userId"`
	Action      ActivityAction `gorm:"type:varchar(20);not null" json:"action"`
	TargetTable string         `gorm:"column:table_name;type:varchar(50);not null" json:"tableName"`
	RecordID    uint           `json:"recordId"`
	Details     string         `gorm:"type:text" json:"details"`
	Timestamp   time.Time      `gorm:"index" json:"timestamp"`
}

type ActivityLogView struct {
	ID          uint           `json:"id"`
	UserID      uint           `json:"userId"`
	Action      ActivityAction `json:"action"`
	TargetTable string         `gorm:"column:table_name" json:"tableName"`
	RecordID    uint           `json:"recordId"`
	Details     string         `json:"details"`
	Timestamp   time.Time      `json:"timestamp"`
	Username    *string        `json:"username"`
}

type DashboardSummary struct {
	TotalDevices     int64                  `json:"totalDevices"`
	DevicesByStatus  map[DeviceStatus]int64 `json:"devicesByStatus"`
	UnresolvedAlerts int64                  `json:"unresolvedAlerts"`
	PendingSchedules int64                  `json:"pendingSchedules"`
}

type Dashboard struct {
	Devices   []DeviceView     `json:"devices"`
	Alerts    []AlertView      `json:"alerts"`
	Schedules []ScheduleView   `json:"schedules"`
	Summary   DashboardSummary `json:"summary"`
}
