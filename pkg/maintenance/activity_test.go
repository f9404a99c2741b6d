package maintenance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

type mutation struct {
	table  string
	action models.ActivityAction
	run    func(ctx context.Context) (uint, error)
}

// mutations returns one create, update and delete per audited table, each
// creating whatever parent rows it needs without an actor.
func mutations(t *testing.T, m *Maintenance) []mutation {
	name := "renamed"
	return []mutation{
		{models.TableDevices, models.ActionCreate, func(ctx context.Context) (uint, error) {
			d, err := m.Device.CreateDevice(ctx, &models.Device{DeviceName: "d", SerialNumber: "s", Model: "m"})
			if err != nil {
				return 0, err
			}
			return d.ID, nil
		}},
		{models.TableDevices, models.ActionUpdate, func(ctx context.Context) (uint, error) {
			d := seedDevice(t, m, "d")
			_, err := m.Device.UpdateDevice(ctx, d.ID, &models.DevicePatch{DeviceName: &name})
			return d.ID, err
		}},
		{models.TableDevices, models.ActionDelete, func(ctx context.Context) (uint, error) {
			d := seedDevice(t, m, "d")
			_, err := m.Device.DeleteDevice(ctx, d.ID)
			return d.ID, err
		}},
		{models.TableTechnicians, models.ActionCreate, func(ctx context.Context) (uint, error) {
			tech, err := m.Technician.CreateTechnician(ctx, &models.Technician{FullName: "t"})
			if err != nil {
				return 0, err
			}
			return tech.ID, nil
		}},
		{models.TableTechnicians, models.ActionUpdate, func(ctx context.Context) (uint, error) {
			tech := seedTechnician(t, m, "t")
			_, err := m.Technician.UpdateTechnician(ctx, tech.ID, &models.TechnicianPatch{FullName: &name})
			return tech.ID, err
		}},
		{models.TableTechnicians, models.ActionDelete, func(ctx context.Context) (uint, error) {
			tech := seedTechnician(t, m, "t")
			_, err := m.Technician.DeleteTechnician(ctx, tech.ID)
			return tech.ID, err
		}},
		{models.TableAlerts, models.ActionCreate, func(ctx context.Context) (uint, error) {
			d := seedDevice(t, m, "d")
			a, err := m.Alert.CreateAlert(ctx, &models.Alert{DeviceID: &d.ID, Message: "x"})
			if err != nil {
				return 0, err
			}
			return a.ID, nil
		}},
		{models.TableAlerts, models.ActionUpdate, func(ctx context.Context) (uint, error) {
			a := seedAlert(t, m, seedDevice(t, m, "d").ID, "x")
			resolved := true
			_, err := m.Alert.UpdateAlert(ctx, a.ID, &models.AlertPatch{IsResolved: &resolved})
			return a.ID, err
		}},
		{models.TableAlerts, models.ActionDelete, func(ctx context.Context) (uint, error) {
			a := seedAlert(t, m, seedDevice(t, m, "d").ID, "x")
			_, err := m.Alert.DeleteAlert(ctx, a.ID)
			return a.ID, err
		}},
		{models.TableMaintenanceSchedules, models.ActionCreate, func(ctx context.Context) (uint, error) {
			d := seedDevice(t, m, "d")
			s, err := m.Schedule.CreateSchedule(ctx, &models.MaintenanceSchedule{DeviceID: d.ID, MaintenanceType: "x", ScheduledDate: time.Now()})
			if err != nil {
				return 0, err
			}
			return s.ID, nil
		}},
		{models.TableMaintenanceSchedules, models.ActionUpdate, func(ctx context.Context) (uint, error) {
			s := seedSchedule(t, m, seedDevice(t, m, "d").ID, nil, time.Now())
			_, err := m.Schedule.UpdateSchedule(ctx, s.ID, &models.SchedulePatch{MaintenanceType: &name})
			return s.ID, err
		}},
		{models.TableMaintenanceSchedules, models.ActionDelete, func(ctx context.Context) (uint, error) {
			s := seedSchedule(t, m, seedDevice(t, m, "d").ID, nil, time.Now())
			_, err := m.Schedule.DeleteSchedule(ctx, s.ID)
			return s.ID, err
		}},
		{models.TableUsers, models.ActionCreate, func(ctx context.Context) (uint, error) {
			u, err := m.User.CreateUser(ctx, &models.NewUser{Username: "u-create", Email: "c@example.com", Password: "pw1234"})
			if err != nil {
				return 0, err
			}
			return u.ID, nil
		}},
		{models.TableUsers, models.ActionUpdate, func(ctx context.Context) (uint, error) {
			u, err := m.User.CreateUser(context.Background(), &models.NewUser{Username: "u-update", Email: "u@example.com", Password: "pw1234"})
			require.NoError(t, err)
			_, err = m.User.UpdateUser(ctx, u.ID, &models.UserPatch{FullName: &name})
			return u.ID, err
		}},
		{models.TableUsers, models.ActionDelete, func(ctx context.Context) (uint, error) {
			u, err := m.User.CreateUser(context.Background(), &models.NewUser{Username: "u-delete", Email: "d@example.com", Password: "pw1234"})
			require.NoError(t, err)
			_, err = m.User.DeleteUser(ctx, u.ID)
			return u.ID, err
		}},
	}
}

func TestActivity_OneRowPerMutationWithActor(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := models.WithActor(context.Background(), userActor)

	for _, mut := range mutations(t, m) {
		before := countRows(t, m, &models.ActivityLog{}, "")

		recordID, err := mut.run(ctx)
		require.NoError(t, err, "%s %s", mut.action, mut.table)

		assert.Equal(t, before+1, countRows(t, m, &models.ActivityLog{}, ""), "%s %s", mut.action, mut.table)

		var last models.ActivityLog
		require.NoError(t, m.Db.Conn.Order("id DESC").First(&last).Error)
		assert.Equal(t, userActor.ID, last.UserID)
		assert.Equal(t, mut.action, last.Action)
		assert.Equal(t, mut.table, last.TargetTable)
		assert.Equal(t, recordID, last.RecordID)
	}
}

func TestActivity_NoRowsWithoutActor(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	for _, mut := range mutations(t, m) {
		_, err := mut.run(context.Background())
		require.NoError(t, err, "%s %s", mut.action, mut.table)
	}

	assert.Equal(t, int64(0), countRows(t, m, &models.ActivityLog{}, ""))
}

func TestActivity_FailureIsSwallowed(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	require.NoError(t, m.Db.Conn.Migrator().DropTable(&models.ActivityLog{}))

	device, err := m.Device.CreateDevice(adminCtx(), &models.Device{DeviceName: "Pump", SerialNumber: "P-1", Model: "P"})
	require.NoError(t, err)
	assert.NotZero(t, device.ID)

	logs := ParseLogs(buf)

	found := false
	for _, log := range logs {
		lobj := log.(map[string]any)
		if lobj["category"] == "activity" &&
			lobj["logger"] == "maintenance_core" &&
			lobj["msg"] == "Failed to record activity" &&
			lobj["table"] == models.TableDevices &&
			lobj["recordId"] == float64(device.ID) {
			found = true
		}
	}
	assert.True(t, found, "log not found")
}

func TestListActivityLogs(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	admin, err := m.User.CreateUser(context.Background(), &models.NewUser{Username: "root", Email: "root@example.com", Password: "pw1234", Role: models.RoleAdmin})
	require.NoError(t, err)

	ctx := models.WithActor(context.Background(), models.Actor{ID: admin.ID, Username: admin.Username, Role: admin.Role})
	older := models.ActivityLog{UserID: admin.ID, Action: models.ActionCreate, TargetTable: models.TableDevices, RecordID: 1, Timestamp: time.Now().Add(-time.Hour)}
	require.NoError(t, m.Db.Conn.Create(&older).Error)

	m.Activity.LogActivity(ctx, models.ActionExport, models.TableDevices, 0, "Exported devices report")
	m.Activity.LogActivity(models.WithActor(context.Background(), models.Actor{ID: 999}), models.ActionDelete, models.TableAlerts, 3, "gone")

	logs, err := m.Activity.ListActivityLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 3)

	assert.Equal(t, models.ActionDelete, logs[0].Action)
	assert.Nil(t, logs[0].Username)

	assert.Equal(t, models.ActionExport, logs[1].Action)
	assert.Equal(t, models.TableDevices, logs[1].TargetTable)
	require.NotNil(t, logs[1].Username)
	assert.Equal(t, "root", *logs[1].Username)

	assert.Equal(t, older.ID, logs[2].ID)
}
