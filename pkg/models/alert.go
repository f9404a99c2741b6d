package models

import (
	"strings"
	"time"
)

type Alert struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DeviceID   *uint      `gorm:"index" json:"deviceId"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Severity   string     `gorm:"type:varchar(20)" json:"severity"`
	IsResolved bool       `gorm:"not null;default:false" json:"isResolved"`
	Notes      string     `gorm:"type:text" json:"notes"`
	AlertDate  time.Time  `json:"alertDate"`
	ResolvedAt *time.Time `json:"resolvedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (a *Alert) Missing() []string {
	var fields []string
	if a.DeviceID == nil || *a.DeviceID == 0 {
		fields = append(fields, "deviceId")
	}
	if strings.TrimSpace(a.Message) == "" {
		fields = append(fields, "message")
	}
	return fields
}

type AlertView struct {
	ID           uint       `json:"id"`
	DeviceID     *uint      `json:"deviceId"`
	Message      string     `json:"message"`
	Severity     string     `json:"severity"`
	IsResolved   bool       `json:"isResolved"`
	Notes        string     `json:"notes"`
	AlertDate    time.Time  `json:"alertDate"`
	ResolvedAt   *time.Time `json:"resolvedAt"`
	DeviceName   *string    `json:"deviceName"`
	SerialNumber *string    `json:"serialNumber"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AlertPatch resolves an alert when IsResolved is set to true.
type AlertPatch struct {
	DeviceID   *uint   `json:"deviceId" binding:"omitempty,min=1"`
	Message    *string `json:"message" binding:"omitempty,min=1"`
	Severity   *string `json:"severity" binding:"omitempty,max=20"`
	IsResolved *bool   `json:"isResolved"`
	Notes      *string `json:"notes"`
}

// Changes stamps resolved_at when the alert becomes resolved and clears it
// when it is reopened.
func (p *AlertPatch) Changes(now time.Time) map[string]any {
	changes := map[string]any{}

	if p.DeviceID != nil {
		changes["device_id"] = *p.DeviceID
	}
	setString(changes, "message", p.Message)
	setString(changes, "severity", p.Severity)
	setString(changes, "notes", p.Notes)
	if p.IsResolved != nil {
		changes["is_resolved"] = *p.IsResolved
		if *p.IsResolved {
			changes["resolved_at"] = now
		} else {
			changes["resolved_at"] = nil
		}
	}
	return changes
}

type AlertFilter struct {
	Resolved *bool
}
