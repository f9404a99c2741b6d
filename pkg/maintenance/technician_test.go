package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

func TestCreateTechnician(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	hired := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	technician, err := m.Technician.CreateTechnician(adminCtx(), &models.Technician{
		FullName: "Marta Reis", PhoneNumber: "555-0101", HireDate: &hired,
	})
	require.NoError(t, err)

	stored, err := m.Technician.GetTechnician(context.Background(), technician.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marta Reis", stored.FullName)
	require.NotNil(t, stored.HireDate)
	assert.True(t, hired.Equal(*stored.HireDate))

	_, err = m.Technician.CreateTechnician(adminCtx(), &models.Technician{Specialization: "HVAC"})
	assert.True(t, common.IsValidationError(err))

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, "Created technician: Marta Reis", logs[0].Details)
}

func TestUpdateTechnician(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	technician := seedTechnician(t, m, "Rui Costa")

	phone := "555-0199"
	updated, err := m.Technician.UpdateTechnician(adminCtx(), technician.ID, &models.TechnicianPatch{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.PhoneNumber)
	assert.Equal(t, "Rui Costa", updated.FullName)
	assert.Equal(t, "HVAC", updated.Specialization)

	_, err = m.Technician.UpdateTechnician(adminCtx(), 999, &models.TechnicianPatch{PhoneNumber: &phone})
	assert.True(t, common.IsNotFoundError(err))
}

func TestDeleteTechnician_BlockedWhileAssigned(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	technician := seedTechnician(t, m, "Ana Lima")
	device, err := m.Device.CreateDevice(context.Background(), &models.Device{
		DeviceName: "Boiler", SerialNumber: "B-1", Model: "B", AssignedTechnician: &technician.ID,
	})
	require.NoError(t, err)
	schedule := seedSchedule(t, m, device.ID, &technician.ID, time.Now())

	_, err = m.Technician.DeleteTechnician(adminCtx(), technician.ID)
	require.Error(t, err)
	assert.True(t, common.IsConflictError(err))

	// nothing changed, including the schedule unassignment
	_, err = m.Technician.GetTechnician(context.Background(), technician.ID)
	assert.NoError(t, err)

	stored, err := m.Schedule.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TechnicianID)
	assert.Equal(t, technician.ID, *stored.TechnicianID)

	assignedDevice, err := m.Device.GetDevice(context.Background(), device.ID)
	require.NoError(t, err)
	require.NotNil(t, assignedDevice.AssignedTechnician)
	assert.Equal(t, technician.ID, *assignedDevice.AssignedTechnician)

	assert.Empty(t, activityRows(t, m))
}

func TestDeleteTechnician_NullsSchedules(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	technician := seedTechnician(t, m, "Ana Lima")
	keep := seedTechnician(t, m, "Bruno Dias")
	device := seedDevice(t, m, "Pump")

	first := seedSchedule(t, m, device.ID, &technician.ID, time.Now())
	second := seedSchedule(t, m, device.ID, &technician.ID, time.Now().Add(time.Hour))
	untouched := seedSchedule(t, m, device.ID, &keep.ID, time.Now())

	deleted, err := m.Technician.DeleteTechnician(adminCtx(), technician.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", deleted.FullName)

	for _, id := range []uint{first.ID, second.ID} {
		schedule, err := m.Schedule.GetSchedule(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, schedule.TechnicianID)
		assert.Nil(t, schedule.TechnicianName)
	}

	schedule, err := m.Schedule.GetSchedule(context.Background(), untouched.ID)
	require.NoError(t, err)
	require.NotNil(t, schedule.TechnicianID)
	assert.Equal(t, keep.ID, *schedule.TechnicianID)

	_, err = m.Technician.GetTechnician(context.Background(), technician.ID)
	assert.True(t, common.IsNotFoundError(err))

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionDelete, logs[0].Action)
	assert.Equal(t, models.TableTechnicians, logs[0].TargetTable)
	assert.Equal(t, technician.ID, logs[0].RecordID)
}

func TestDeleteTechnician_NotFound(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, true, false)
	defer ctrl.Finish()

	_, err := m.Technician.DeleteTechnician(adminCtx(), 7)
	assert.True(t, common.IsNotFoundError(err))
}
