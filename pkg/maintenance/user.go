package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

var errInvalidCredentials = errors.New("invalid credentials")

func (m *Maintenance) listUsers(ctx context.Context) ([]models.UserView, error) {
	var users []models.User
	if err := m.conn(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return common.Mapper(users, func(u models.User) models.UserView { return u.View() }), nil
}

func (m *Maintenance) findUser(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user %d not found", id)
	}
	return &user, nil
}

func (m *Maintenance) getUser(ctx context.Context, id uint) (*models.UserView, error) {
	user, err := m.findUser(m.conn(ctx), id)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// checkUnique fails when another user already holds the username or email.
// excludeID skips the user being updated.
func checkUnique(tx *gorm.DB, username, email string, excludeID uint) error {
	query := tx.Model(&models.User{}).Where("username = ? OR email = ?", username, email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return common.NewConflictError(nil, "Username or email already exists")
	}
	return nil
}

func duplicateOr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.NewConflictError(err, "Username or email already exists")
	}
	return err
}

func (m *Maintenance) createUser(ctx context.Context, input *models.NewUser) (*models.UserView, error) {
	logger := coreLogger(common.LoggerCategoryUser)

	if missing := input.Missing(); len(missing) > 0 {
		return nil, missingFields(missing)
	}

	role := models.RoleUser
	if input.Role != "" {
		var ok bool
		if role, ok = models.NormalizeRole(string(input.Role)); !ok {
			return nil, invalidFields([]string{"role"})
		}
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	// must run before hashing
	if err := checkUnique(m.conn(ctx), username, email, 0); err != nil {
		return nil, err
	}

	hash, err := m.Hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: username,
		FullName: input.FullName,
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if err := m.conn(ctx).Create(&user).Error; err != nil {
		return nil, duplicateOr(err)
	}

	logger.Info("Created user", zap.Uint("id", user.ID), zap.String("username", user.Username))
	m.logActivity(ctx, models.ActionCreate, models.TableUsers, user.ID, fmt.Sprintf("Created user: %s", user.Username))

	view := user.View()
	return &view, nil
}

func (m *Maintenance) updateUser(ctx context.Context, id uint, patch *models.UserPatch) (*models.UserView, error) {
	logger := coreLogger(common.LoggerCategoryUser)

	changes, invalid := patch.Changes()
	if len(invalid) > 0 {
		return nil, invalidFields(invalid)
	}

	var user *models.User
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if user, err = m.findUser(tx, id); err != nil {
			return err
		}

		if patch.Username != nil || patch.Email != nil {
			username, email := user.Username, user.Email
			if patch.Username != nil {
				username = *patch.Username
			}
			if patch.Email != nil {
				email = *patch.Email
			}
			if err := checkUnique(tx, username, email, id); err != nil {
				return err
			}
		}

		if patch.Password != nil {
			hash, err := m.Hasher.Hash(*patch.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			changes["password"] = hash
		}

		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(user).Updates(changes).Error; err != nil {
			return duplicateOr(err)
		}
		user, err = m.findUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Updated user", zap.Uint("id", id), zap.Int("fields", len(changes)))
	m.logActivity(ctx, models.ActionUpdate, models.TableUsers, id, fmt.Sprintf("Updated user: %s", user.Username))

	view := user.View()
	return &view, nil
}

func (m *Maintenance) deleteUser(ctx context.Context, id uint) (*models.UserView, error) {
	logger := coreLogger(common.LoggerCategoryUser)

	var user *models.User
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if user, err = m.findUser(tx, id); err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deleted user", zap.Uint("id", id))
	m.logActivity(ctx, models.ActionDelete, models.TableUsers, id, fmt.Sprintf("Deleted user: %s", user.Username))

	view := user.View()
	return &view, nil
}

func (m *Maintenance) toggleUserStatus(ctx context.Context, id uint) (*models.UserView, error) {
	logger := coreLogger(common.LoggerCategoryUser)

	var user *models.User
	err := m.Db.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if user, err = m.findUser(tx, id); err != nil {
			return err
		}
		if err := tx.Model(user).Update("is_active", !user.IsActive).Error; err != nil {
			return err
		}
		user, err = m.findUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}

	logger.Info("Toggled user status", zap.Uint("id", id), zap.Bool("isActive", user.IsActive))
	m.logActivity(ctx, models.ActionUpdate, models.TableUsers, id, fmt.Sprintf("User %s: %s", state, user.Username))

	view := user.View()
	return &view, nil
}

// authenticate resolves a username and password to an active user. Every
// failure is reported as the same UnauthorizedError so callers cannot probe
// which usernames exist.
func (m *Maintenance) authenticate(ctx context.Context, username, password string) (*models.UserView, error) {
	logger := coreLogger(common.LoggerCategorySession)

	var user models.User
	err := m.conn(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Info("Login for unknown user", zap.String("username", username))
		return nil, common.NewUnauthorizedError(errInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := m.Hasher.Compare(user.Password, password); err != nil {
		logger.Info("Login with wrong password", zap.String("username", username))
		return nil, common.NewUnauthorizedError(errInvalidCredentials, "Invalid credentials")
	}

	if !user.IsActive {
		logger.Info("Login for inactive user", zap.String("username", username))
		return nil, common.NewUnauthorizedError(errInvalidCredentials, "Account is inactive")
	}

	view := user.View()
	return &view, nil
}

type IUserImpl struct {
	m *Maintenance
}

func (iu *IUserImpl) ListUsers(ctx context.Context) ([]models.UserView, error) {
	return iu.m.listUsers(ctx)
}

func (iu *IUserImpl) GetUser(ctx context.Context, id uint) (*models.UserView, error) {
	return iu.m.getUser(ctx, id)
}

func (iu *IUserImpl) CreateUser(ctx context.Context, input *models.NewUser) (*models.UserView, error) {
	return iu.m.createUser(ctx, input)
}

func (iu *IUserImpl) UpdateUser(ctx context.Context, id uint, patch *models.UserPatch) (*models.UserView, error) {
	return iu.m.updateUser(ctx, id, patch)
}

func (iu *IUserImpl) DeleteUser(ctx context.Context, id uint) (*models.UserView, error) {
	return iu.m.deleteUser(ctx, id)
}

func (iu *IUserImpl) ToggleUserStatus(ctx context.Context, id uint) (*models.UserView, error) {
	return iu.m.toggleUserStatus(ctx, id)
}

func (iu *IUserImpl) Authenticate(ctx context.Context, username, password string) (*models.UserView, error) {
	return iu.m.authenticate(ctx, username, password)
}

func (m *Maintenance) GetIUser() IUser {
	return &IUserImpl{m: m}
}
