package maintenance

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/db"
	"liyu1981.xyz/maintenance-service/pkg/maintenance/mocks"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

var (
	adminActor = models.Actor{ID: 1, Username: "admin", Role: models.RoleAdmin}
	userActor  = models.Actor{ID: 2, Username: "operator", Role: models.RoleUser}
)

func adminCtx() context.Context {
	return models.WithActor(context.Background(), adminActor)
}

func GetMockMaintenanceWithMemorySqliteDialector(t *testing.T, useMockIActivity, useMockHasher bool) (
	*gomock.Controller,
	*Maintenance,
	*mocks.MockIActivity,
	*mocks.MockPasswordHasher,
) {
	ctrl := gomock.NewController(t)

	mockIActivity := mocks.NewMockIActivity(ctrl)
	mockHasher := mocks.NewMockPasswordHasher(ctrl)

	dbInstance, err := db.New(db.UseMemorySqliteDialectorNamed(uuid.NewString()), db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbInstance.Close() })

	var hasher PasswordHasher = auth.NewBcryptHasher(auth.MinBcryptCost)
	if useMockHasher {
		hasher = mockHasher
	}

	m := New(dbInstance, hasher)
	if useMockIActivity {
		m.WithServices(ServiceOpts{Activity: mockIActivity})
	}

	return ctrl, m, mockIActivity, mockHasher
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

func seedDevice(t *testing.T, m *Maintenance, name string) *models.DeviceView {
	device, err := m.Device.CreateDevice(context.Background(), &models.Device{
		DeviceName:   name,
		SerialNumber: "SN-" + uuid.NewString()[:8],
		Model:        "M-1",
		Location:     "Plant A",
	})
	require.NoError(t, err)
	return device
}

func seedTechnician(t *testing.T, m *Maintenance, name string) *models.Technician {
	technician, err := m.Technician.CreateTechnician(context.Background(), &models.Technician{
		FullName:       name,
		Specialization: "HVAC",
	})
	require.NoError(t, err)
	return technician
}

func seedAlert(t *testing.T, m *Maintenance, deviceID uint, message string) *models.AlertView {
	alert, err := m.Alert.CreateAlert(context.Background(), &models.Alert{
		DeviceID: &deviceID,
		Message:  message,
		Severity: "high",
	})
	require.NoError(t, err)
	return alert
}

func seedSchedule(t *testing.T, m *Maintenance, deviceID uint, technicianID *uint, when time.Time) *models.ScheduleView {
	schedule, err := m.Schedule.CreateSchedule(context.Background(), &models.MaintenanceSchedule{
		DeviceID:        deviceID,
		TechnicianID:    technicianID,
		MaintenanceType: "inspection",
		ScheduledDate:   when,
	})
	require.NoError(t, err)
	return schedule
}

func countRows(t *testing.T, m *Maintenance, model any, query string, args ...any) int64 {
	var count int64
	q := m.Db.Conn.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}

func activityRows(t *testing.T, m *Maintenance) []models.ActivityLog {
	var logs []models.ActivityLog
	require.NoError(t, m.Db.Conn.Order("id ASC").Find(&logs).Error)
	return logs
}
