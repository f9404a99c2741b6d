package models

import (
	"strings"
	"time"
)

type Technician struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	FullName       string     `gorm:"type:varchar(100);not null" json:"fullName"`
	Specialization string     `gorm:"type:varchar(100)" json:"specialization"`
	PhoneNumber    string     `gorm:"type:varchar(20)" json:"phoneNumber"`
	Address        string     `gorm:"type:text" json:"address"`
	HireDate       *time.Time `json:"hireDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Devices   []Device              `gorm:"foreignKey:AssignedTechnician" json:"-"`
	Schedules []MaintenanceSchedule `gorm:"foreignKey:TechnicianID;constraint:OnDelete:SET NULL" json:"-"`
}

func (t *Technician) Missing() []string {
	if strings.TrimSpace(t.FullName) == "" {
		return []string{"fullName"}
	}
	return nil
}

type TechnicianPatch struct {
	FullName       *string `json:"fullName" binding:"omitempty,min=1,max=100"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	PhoneNumber    *string `json:"phoneNumber" binding:"omitempty,max=20"`
	Address        *string `json:"address"`
	HireDate       *string `json:"hireDate"`
}

func (p *TechnicianPatch) Changes() (map[string]any, []string) {
	changes := map[string]any{}
	var invalid []string

	setString(changes, "full_name", p.FullName)
	setString(changes, "specialization", p.Specialization)
	setString(changes, "phone_number", p.PhoneNumber)
	setString(changes, "address", p.Address)
	setDate(changes, "hire_date", "hireDate", p.HireDate, &invalid)
	return changes, invalid
}
