package report

import (
	"strconv"
	"time"

	"liyu1981.xyz/maintenance-service/pkg/models"
)

// Table is a rendered-agnostic snapshot: one header row plus string cells.
type Table struct {
	Name    string
	Sheet   string
	Title   string
	Headers []string
	Rows    [][]string
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func formatID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func DevicesTable(devices []models.DeviceView) Table {
	table := Table{
		Name:  "devices",
		Sheet: "Devices",
		Title: "Devices",
		Headers: []string{
			"id", "deviceName", "serialNumber", "model", "manufacturer", "purchaseDate",
			"warrantyExpiry", "status", "location", "lastMaintenanceDate", "nextMaintenanceDate",
			"assignedTechnician", "technicianName", "notes", "createdAt", "updatedAt",
		},
	}
	for _, d := range devices {
		table.Rows = append(table.Rows, []string{
			strconv.FormatUint(uint64(d.ID), 10),
			d.DeviceName,
			d.SerialNumber,
			d.Model,
			d.Manufacturer,
			formatDate(d.PurchaseDate),
			formatDate(d.WarrantyExpiry),
			string(d.Status),
			d.Location,
			formatDate(d.LastMaintenanceDate),
			formatDate(d.NextMaintenanceDate),
			formatID(d.AssignedTechnician),
			formatString(d.TechnicianName),
			d.Notes,
			formatTime(d.CreatedAt),
			formatTime(d.UpdatedAt),
		})
	}
	return table
}

func SchedulesTable(schedules []models.ScheduleView) Table {
	table := Table{
		Name:  "maintenance",
		Sheet: "Maintenance",
		Title: "Maintenance Schedules",
		Headers: []string{
			"id", "deviceId", "deviceName", "serialNumber", "technicianId", "technicianName",
			"maintenanceType", "scheduledDate", "status", "description", "notes", "createdAt", "updatedAt",
		},
	}
	for _, s := range schedules {
		table.Rows = append(table.Rows, []string{
			strconv.FormatUint(uint64(s.ID), 10),
			strconv.FormatUint(uint64(s.DeviceID), 10),
			formatString(s.DeviceName),
			formatString(s.SerialNumber),
			formatID(s.TechnicianID),
			formatString(s.TechnicianName),
			s.MaintenanceType,
			formatTime(s.ScheduledDate),
			string(s.Status),
			s.Description,
			s.Notes,
			formatTime(s.CreatedAt),
			formatTime(s.UpdatedAt),
		})
	}
	return table
}

func AlertsTable(alerts []models.AlertView) Table {
	table := Table{
		Name:  "alerts",
		Sheet: "Alerts",
		Title: "Alerts",
		Headers: []string{
			"id", "deviceId", "deviceName", "serialNumber", "message", "severity",
			"isResolved", "notes", "alertDate", "resolvedAt", "createdAt", "updatedAt",
		},
	}
	for _, a := range alerts {
		table.Rows = append(table.Rows, []string{
			strconv.FormatUint(uint64(a.ID), 10),
			formatID(a.DeviceID),
			formatString(a.DeviceName),
			formatString(a.SerialNumber),
			a.Message,
			a.Severity,
			strconv.FormatBool(a.IsResolved),
			a.Notes,
			formatTime(a.AlertDate),
			formatOptionalTime(a.ResolvedAt),
			formatTime(a.CreatedAt),
			formatTime(a.UpdatedAt),
		})
	}
	return table
}
