package models

import (
	"strings"
	"time"
)

type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "pending"
	ScheduleStatusInProgress ScheduleStatus = "in_progress"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusCancelled  ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusInProgress, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}

type MaintenanceSchedule struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	DeviceID        uint           `gorm:"not null;index" json:"deviceId"`
	TechnicianID    *uint          `gorm:"index" json:"technicianId"`
	MaintenanceType string         `gorm:"type:varchar(100);not null" json:"maintenanceType"`
	ScheduledDate   time.Time      `gorm:"not null;index" json:"scheduledDate"`
	Status          ScheduleStatus `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','in_progress','completed','cancelled')" json:"status"`
	Description     string         `gorm:"type:text" json:"description"`
	Notes           string         `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (s *MaintenanceSchedule) Missing() []string {
	var fields []string
	if s.DeviceID == 0 {
		fields = append(fields, "deviceId")
	}
	if strings.TrimSpace(s.MaintenanceType) == "" {
		fields = append(fields, "maintenanceType")
	}
	if s.ScheduledDate.IsZero() {
		fields = append(fields, "scheduledDate")
	}
	return fields
}

type ScheduleView struct {
	ID              uint           `json:"id"`
	DeviceID        uint           `json:"deviceId"`
	TechnicianID    *uint          `json:"technicianId"`
	MaintenanceType string         `json:"maintenanceType"`
	ScheduledDate   time.Time      `json:"scheduledDate"`
	Status          ScheduleStatus `json:"status"`
	Description     string         `json:"description"`
	Notes           string         `json:"notes"`
	DeviceName      *string        `json:"deviceName"`
	SerialNumber    *string        `json:"serialNumber"`
	TechnicianName  *string        `json:"technicianName"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type SchedulePatch struct {
	DeviceID        *uint           `json:"deviceId" binding:"omitempty,min=1"`
	TechnicianID    OptionalID      `json:"technicianId"`
	MaintenanceType *string         `json:"maintenanceType" binding:"omitempty,min=1,max=100"`
	ScheduledDate   *string         `json:"scheduledDate"`
	Status          *ScheduleStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Description     *string         `json:"description"`
	Notes           *string         `json:"notes"`
}

func (p *SchedulePatch) Changes() (map[string]any, []string) {
	changes := map[string]any{}
	var invalid []string

	if p.DeviceID != nil {
		changes["device_id"] = *p.DeviceID
	}
	if p.TechnicianID.Set {
		changes["technician_id"] = p.TechnicianID.column()
	}
	setString(changes, "maintenance_type", p.MaintenanceType)
	setString(changes, "description", p.Description)
	setString(changes, "notes", p.Notes)
	if p.ScheduledDate != nil {
		// scheduled_date is NOT NULL, so a blank value is rejected rather than cleared
		t, err := ParseDate(*p.ScheduledDate)
		if err != nil || t == nil {
			invalid = append(invalid, "scheduledDate")
		} else {
			changes["scheduled_date"] = *t
		}
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			invalid = append(invalid, "status")
		} else {
			changes["status"] = string(*p.Status)
		}
	}
	return changes, invalid
}
