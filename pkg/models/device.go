package models

import (
	"strings"
	"time"
)

type DeviceStatus string

const (
	DeviceStatusActive      DeviceStatus = "active"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
	DeviceStatusBroken      DeviceStatus = "broken"
	DeviceStatusUnknown     DeviceStatus = "unknown"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceStatusActive, DeviceStatusMaintenance, DeviceStatusBroken, DeviceStatusUnknown:
		return true
	}
	return false
}

var DeviceStatuses = []DeviceStatus{
	DeviceStatusActive,
	DeviceStatusMaintenance,
	DeviceStatusBroken,
	DeviceStatusUnknown,
}

type Device struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	DeviceName          string       `gorm:"type:varchar(100);not null" json:"deviceName"`
	SerialNumber        string       `gorm:"type:varchar(100);not null;index" json:"serialNumber"`
	Model               string       `gorm:"type:varchar(100);not null" json:"model"`
	Manufacturer        string       `gorm:"type:varchar(100)" json:"manufacturer"`
	PurchaseDate        *time.Time   `json:"purchaseDate"`
	WarrantyExpiry      *time.Time   `json:"warrantyExpiry"`
	Status              DeviceStatus `gorm:"type:varchar(20);not null;default:'active';check:status IN ('active','maintenance','broken','unknown')" json:"status"`
	Location            string       `gorm:"type:varchar(100)" json:"location"`
	LastMaintenanceDate *time.Time   `json:"lastMaintenanceDate"`
	NextMaintenanceDate *time.Time   `json:"nextMaintenanceDate"`
	Notes               string       `gorm:"type:text" json:"notes"`
	AssignedTechnician  *uint        `gorm:"index" json:"assignedTechnician"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`

	Alerts    []Alert               `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"-"`
	Schedules []MaintenanceSchedule `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"-"`
}

// Missing lists the required create fields that are blank.
func (d *Device) Missing() []string {
	var fields []string
	if strings.TrimSpace(d.DeviceName) == "" {
		fields = append(fields, "deviceName")
	}
	if strings.TrimSpace(d.SerialNumber) == "" {
		fields = append(fields, "serialNumber")
	}
	if strings.TrimSpace(d.Model) == "" {
		fields = append(fields, "model")
	}
	return fields
}

// DeviceView is a device row joined with its assigned technician's name.
type DeviceView struct {
	ID                  uint         `json:"id"`
	DeviceName          string       `json:"deviceName"`
	SerialNumber        string       `json:"serialNumber"`
	Model               string       `json:"model"`
	Manufacturer        string       `json:"manufacturer"`
	PurchaseDate        *time.Time   `json:"purchaseDate"`
	WarrantyExpiry      *time.Time   `json:"warrantyExpiry"`
	Status              DeviceStatus `json:"status"`
	Location            string       `json:"location"`
	LastMaintenanceDate *time.Time   `json:"lastMaintenanceDate"`
	NextMaintenanceDate *time.Time   `json:"nextMaintenanceDate"`
	Notes               string       `json:"notes"`
	AssignedTechnician  *uint        `json:"assignedTechnician"`
	TechnicianName      *string      `json:"technicianName"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

type DevicePatch struct {
	DeviceName          *string       `json:"deviceName" binding:"omitempty,min=1,max=100"`
	SerialNumber        *string       `json:"serialNumber" binding:"omitempty,min=1,max=100"`
	Model               *string       `json:"model" binding:"omitempty,min=1,max=100"`
	Manufacturer        *string       `json:"manufacturer" binding:"omitempty,max=100"`
	PurchaseDate        *string       `json:"purchaseDate"`
	WarrantyExpiry      *string       `json:"warrantyExpiry"`
	Status              *DeviceStatus `json:"status" binding:"omitempty,oneof=active maintenance broken unknown"`
	Location            *string       `json:"location" binding:"omitempty,max=100"`
	LastMaintenanceDate *string       `json:"lastMaintenanceDate"`
	NextMaintenanceDate *string       `json:"nextMaintenanceDate"`
	Notes               *string       `json:"notes"`
	AssignedTechnician  OptionalID    `json:"assignedTechnician"`
}

// Changes turns the supplied patch fields into a column map. Fields that
// cannot be parsed are reported by their JSON name.
func (p *DevicePatch) Changes() (map[string]any, []string) {
	changes := map[string]any{}
	var invalid []string

	setString(changes, "device_name", p.DeviceName)
	setString(changes, "serial_number", p.SerialNumber)
	setString(changes, "model", p.Model)
	setString(changes, "manufacturer", p.Manufacturer)
	setString(changes, "location", p.Location)
	setString(changes, "notes", p.Notes)
	setDate(changes, "purchase_date", "purchaseDate", p.PurchaseDate, &invalid)
	setDate(changes, "warranty_expiry", "warrantyExpiry", p.WarrantyExpiry, &invalid)
	setDate(changes, "last_maintenance_date", "lastMaintenanceDate", p.LastMaintenanceDate, &invalid)
	setDate(changes, "next_maintenance_date", "nextMaintenanceDate", p.NextMaintenanceDate, &invalid)

	if p.Status != nil {
		if !p.Status.Valid() {
			invalid = append(invalid, "status")
		} else {
			changes["status"] = string(*p.Status)
		}
	}
	if p.AssignedTechnician.Set {
		changes["assigned_technician"] = p.AssignedTechnician.column()
	}
	return changes, invalid
}
