package maintenance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

func TestCreateAlert(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	device := seedDevice(t, m, "Chiller")

	alert, err := m.Alert.CreateAlert(adminCtx(), &models.Alert{DeviceID: &device.ID, Message: "temperature high", Severity: "critical"})
	require.NoError(t, err)
	assert.False(t, alert.IsResolved)
	assert.False(t, alert.AlertDate.IsZero())
	require.NotNil(t, alert.DeviceName)
	assert.Equal(t, "Chiller", *alert.DeviceName)
	require.NotNil(t, alert.SerialNumber)
	assert.Equal(t, device.SerialNumber, *alert.SerialNumber)

	missing := uint(999)
	_, err = m.Alert.CreateAlert(adminCtx(), &models.Alert{DeviceID: &missing, Message: "orphan"})
	assert.True(t, common.IsValidationError(err))

	_, err = m.Alert.CreateAlert(adminCtx(), &models.Alert{Message: "no device"})
	assert.True(t, common.IsValidationError(err))

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, models.TableAlerts, logs[0].TargetTable)
}

func TestResolveAlert(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	device := seedDevice(t, m, "Chiller")
	alert := seedAlert(t, m, device.ID, "compressor fault")

	resolved := true
	notes := "replaced relay"
	_, err := m.Alert.UpdateAlert(adminCtx(), alert.ID, &models.AlertPatch{IsResolved: &resolved, Notes: &notes})
	require.NoError(t, err)

	stored, err := m.Alert.GetAlert(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsResolved)
	assert.Equal(t, "replaced relay", stored.Notes)
	assert.NotNil(t, stored.ResolvedAt)
	assert.Equal(t, "compressor fault", stored.Message)

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionUpdate, logs[0].Action)
	assert.Equal(t, alert.ID, logs[0].RecordID)
}

func TestUpdateAlert_NotFound(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, true, false)
	defer ctrl.Finish()

	resolved := true
	_, err := m.Alert.UpdateAlert(adminCtx(), 31, &models.AlertPatch{IsResolved: &resolved})
	assert.True(t, common.IsNotFoundError(err))
}

func TestListAlerts_ResolvedFilter(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	device := seedDevice(t, m, "Chiller")
	open := seedAlert(t, m, device.ID, "open")
	closed := seedAlert(t, m, device.ID, "closed")

	resolved := true
	_, err := m.Alert.UpdateAlert(context.Background(), closed.ID, &models.AlertPatch{IsResolved: &resolved})
	require.NoError(t, err)

	all, err := m.Alert.ListAlerts(context.Background(), models.AlertFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unresolved := false
	alerts, err := m.Alert.ListAlerts(context.Background(), models.AlertFilter{Resolved: &unresolved})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, open.ID, alerts[0].ID)

	alerts, err = m.Alert.ListAlerts(context.Background(), models.AlertFilter{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, closed.ID, alerts[0].ID)
}

func TestDeleteAlert_RestoresDeviceStatus(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	device := seedDevice(t, m, "Chiller")
	broken := models.DeviceStatusBroken
	_, err := m.Device.UpdateDevice(context.Background(), device.ID, &models.DevicePatch{Status: &broken})
	require.NoError(t, err)

	alert := seedAlert(t, m, device.ID, "compressor fault")

	deleted, err := m.Alert.DeleteAlert(adminCtx(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, deleted.ID)

	stored, err := m.Device.GetDevice(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusActive, stored.Status)

	_, err = m.Alert.GetAlert(context.Background(), alert.ID)
	assert.True(t, common.IsNotFoundError(err))

	_, err = m.Alert.DeleteAlert(adminCtx(), alert.ID)
	assert.True(t, common.IsNotFoundError(err))

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionDelete, logs[0].Action)
	assert.Equal(t, models.TableAlerts, logs[0].TargetTable)
}

func TestDeleteAlert_WithoutDevice(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	orphan := models.Alert{Message: "legacy alert"}
	require.NoError(t, m.Db.Conn.Create(&orphan).Error)

	_, err := m.Alert.DeleteAlert(adminCtx(), orphan.ID)
	assert.NoError(t, err)
}
