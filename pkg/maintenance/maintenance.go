package maintenance

//go:generate mockgen -source=maintenance.go -destination=mocks/maintenance.go -package=mocks

import (
	"context"

	"liyu1981.xyz/maintenance-service/pkg/db"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

type IDevice interface {
	ListDevices(ctx context.Context) ([]models.DeviceView, error)
	GetDevice(ctx context.Context, id uint) (*models.DeviceView, error)
	CreateDevice(ctx context.Context, input *models.Device) (*models.DeviceView, error)
	UpdateDevice(ctx context.Context, id uint, patch *models.DevicePatch) (*models.DeviceView, error)
	DeleteDevice(ctx context.Context, id uint) (*models.Device, error)
}

type ITechnician interface {
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
	GetTechnician(ctx context.Context, id uint) (*models.Technician, error)
	CreateTechnician(ctx context.Context, input *models.Technician) (*models.Technician, error)
	UpdateTechnician(ctx context.Context, id uint, patch *models.TechnicianPatch) (*models.Technician, error)
	DeleteTechnician(ctx context.Context, id uint) (*models.Technician, error)
}

type IAlert interface {
	ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.AlertView, error)
	GetAlert(ctx context.Context, id uint) (*models.AlertView, error)
	CreateAlert(ctx context.Context, input *models.Alert) (*models.AlertView, error)
	UpdateAlert(ctx context.Context, id uint, patch *models.AlertPatch) (*models.AlertView, error)
	DeleteAlert(ctx context.Context, id uint) (*models.Alert, error)
}

type ISchedule interface {
	ListSchedules(ctx context.Context) ([]models.ScheduleView, error)
	GetSchedule(ctx context.Context, id uint) (*models.ScheduleView, error)
	CreateSchedule(ctx context.Context, input *models.MaintenanceSchedule) (*models.ScheduleView, error)
	UpdateSchedule(ctx context.Context, id uint, patch *models.SchedulePatch) (*models.ScheduleView, error)
	DeleteSchedule(ctx context.Context, id uint) (*models.MaintenanceSchedule, error)
}

type IUser interface {
	ListUsers(ctx context.Context) ([]models.UserView, error)
	GetUser(ctx context.Context, id uint) (*models.UserView, error)
	CreateUser(ctx context.Context, input *models.NewUser) (*models.UserView, error)
	UpdateUser(ctx context.Context, id uint, patch *models.UserPatch) (*models.UserView, error)
	DeleteUser(ctx context.Context, id uint) (*models.UserView, error)
	ToggleUserStatus(ctx context.Context, id uint) (*models.UserView, error)
	Authenticate(ctx context.Context, username, password string) (*models.UserView, error)
}

type IActivity interface {
	// LogActivity records the actor found in ctx. Without an actor nothing is
	// written, and storage failures are logged rather than returned.
	LogActivity(ctx context.Context, action models.ActivityAction, table string, recordID uint, details string)
	ListActivityLogs(ctx context.Context) ([]models.ActivityLogView, error)
}

type IDashboard interface {
	GetDashboard(ctx context.Context) (*models.Dashboard, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type Maintenance struct {
	Db         *db.DB
	Hasher     PasswordHasher
	Device     IDevice
	Technician ITechnician
	Alert      IAlert
	Schedule   ISchedule
	User       IUser
	Activity   IActivity
	Dashboard  IDashboard
}

type ServiceOpts struct {
	Device     IDevice
	Technician ITechnician
	Alert      IAlert
	Schedule   ISchedule
	User       IUser
	Activity   IActivity
	Dashboard  IDashboard
}

// New wires the default service implementations around the gateway.
func New(database *db.DB, hasher PasswordHasher) *Maintenance {
	m := &Maintenance{Db: database, Hasher: hasher}
	return m.WithServices(ServiceOpts{
		Device:     m.GetIDevice(),
		Technician: m.GetITechnician(),
		Alert:      m.GetIAlert(),
		Schedule:   m.GetISchedule(),
		User:       m.GetIUser(),
		Activity:   m.GetIActivity(),
		Dashboard:  m.GetIDashboard(),
	})
}

func (m *Maintenance) WithServices(opts ServiceOpts) *Maintenance {
	if opts.Device != nil {
		m.Device = opts.Device
	}
	if opts.Technician != nil {
		m.Technician = opts.Technician
	}
	if opts.Alert != nil {
		m.Alert = opts.Alert
	}
	if opts.Schedule != nil {
		m.Schedule = opts.Schedule
	}
	if opts.User != nil {
		m.User = opts.User
	}
	if opts.Activity != nil {
		m.Activity = opts.Activity
	}
	if opts.Dashboard != nil {
		m.Dashboard = opts.Dashboard
	}
	return m
}
