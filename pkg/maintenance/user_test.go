package maintenance

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestCreateUser(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, mockHasher := GetMockMaintenanceWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	mockHasher.EXPECT().Hash("s3cret!").Return("hashed-s3cret", nil).Times(1)

	user, err := m.User.CreateUser(adminCtx(), &models.NewUser{
		Username: "carla", Email: "carla@example.com", Password: "s3cret!", FullName: "Carla Nunes",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)

	var stored models.User
	require.NoError(t, m.Db.Conn.First(&stored, user.ID).Error)
	assert.Equal(t, "hashed-s3cret", stored.Password)

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, "Created user: carla", logs[0].Details)
}

func TestCreateUser_DuplicateSkipsHashing(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, mockHasher := GetMockMaintenanceWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	mockHasher.EXPECT().Hash(gomock.Any()).Return("hash", nil).Times(1)
	_, err := m.User.CreateUser(context.Background(), &models.NewUser{
		Username: "carla", Email: "carla@example.com", Password: "pw1234",
	})
	require.NoError(t, err)

	// only the first create may reach the hasher
	for _, dup := range []models.NewUser{
		{Username: "carla", Email: "other@example.com", Password: "pw1234"},
		{Username: "other", Email: "carla@example.com", Password: "pw1234"},
	} {
		_, err := m.User.CreateUser(adminCtx(), &dup)
		require.Error(t, err)
		assert.True(t, common.IsConflictError(err))
	}

	assert.Equal(t, int64(1), countRows(t, m, &models.User{}, ""))
	assert.Empty(t, activityRows(t, m))
}

func TestCreateUser_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	_, err := m.User.CreateUser(adminCtx(), &models.NewUser{Username: "dan"})
	var verr common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email", "password"}, verr.Fields)

	_, err = m.User.CreateUser(adminCtx(), &models.NewUser{Username: "dan", Email: "d@example.com", Password: "pw", Role: "root"})
	assert.True(t, common.IsValidationError(err))
}

func TestUsers_NeverExposePassword(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	created, err := m.User.CreateUser(context.Background(), &models.NewUser{
		Username: "eva", Email: "eva@example.com", Password: "pw123456", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)

	users, err := m.User.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "eva", users[0].Username)

	// UserView has no password field at all; the stored value is a bcrypt hash
	var stored models.User
	require.NoError(t, m.Db.Conn.First(&stored, created.ID).Error)
	assert.NotEqual(t, "pw123456", stored.Password)
	assert.Contains(t, stored.Password, "$2a$")
}

func TestAuthenticate(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	created, err := m.User.CreateUser(context.Background(), &models.NewUser{
		Username: "filipe", Email: "f@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	user, err := m.User.Authenticate(context.Background(), "filipe", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = m.User.Authenticate(context.Background(), "filipe", "wrong")
	assert.True(t, common.IsUnauthorizedError(err))

	_, err = m.User.Authenticate(context.Background(), "nobody", "correct-horse")
	assert.True(t, common.IsUnauthorizedError(err))

	toggled, err := m.User.ToggleUserStatus(adminCtx(), created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	_, err = m.User.Authenticate(context.Background(), "filipe", "correct-horse")
	assert.True(t, common.IsUnauthorizedError(err))

	toggled, err = m.User.ToggleUserStatus(adminCtx(), created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestUpdateUser(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, mockHasher := GetMockMaintenanceWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	mockHasher.EXPECT().Hash(gomock.Any()).Return("hash", nil).Times(2)
	gina, err := m.User.CreateUser(context.Background(), &models.NewUser{Username: "gina", Email: "g@example.com", Password: "pw1234"})
	require.NoError(t, err)
	_, err = m.User.CreateUser(context.Background(), &models.NewUser{Username: "hugo", Email: "h@example.com", Password: "pw1234"})
	require.NoError(t, err)

	role := models.RoleAdmin
	fullName := "Gina Prado"
	updated, err := m.User.UpdateUser(adminCtx(), gina.ID, &models.UserPatch{Role: &role, FullName: &fullName})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, "Gina Prado", updated.FullName)
	assert.Equal(t, "g@example.com", updated.Email)

	taken := "h@example.com"
	_, err = m.User.UpdateUser(adminCtx(), gina.ID, &models.UserPatch{Email: &taken})
	assert.True(t, common.IsConflictError(err))

	same := "gina"
	_, err = m.User.UpdateUser(adminCtx(), gina.ID, &models.UserPatch{Username: &same})
	assert.NoError(t, err)

	password := "new-password"
	mockHasher.EXPECT().Hash("new-password").Return("new-hash", nil).Times(1)
	_, err = m.User.UpdateUser(adminCtx(), gina.ID, &models.UserPatch{Password: &password})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, m.Db.Conn.First(&stored, gina.ID).Error)
	assert.Equal(t, "new-hash", stored.Password)

	_, err = m.User.UpdateUser(adminCtx(), 404, &models.UserPatch{FullName: &fullName})
	assert.True(t, common.IsNotFoundError(err))
}

func TestDeleteUser(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, m, _, _ := GetMockMaintenanceWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	user, err := m.User.CreateUser(context.Background(), &models.NewUser{Username: "ivo", Email: "i@example.com", Password: "pw1234"})
	require.NoError(t, err)

	deleted, err := m.User.DeleteUser(adminCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ivo", deleted.Username)

	_, err = m.User.GetUser(context.Background(), user.ID)
	assert.True(t, common.IsNotFoundError(err))

	_, err = m.User.DeleteUser(adminCtx(), user.ID)
	assert.True(t, common.IsNotFoundError(err))

	logs := activityRows(t, m)
	require.Len(t, logs, 1)
	assert.Equal(t, "Deleted user: ivo", logs[0].Details)
}
