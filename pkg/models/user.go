package models

import (
	"strings"
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	FullName  string    `gorm:"type:varchar(100)" json:"fullName"`
	Email     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'user';check:role IN ('admin','user')" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

// UserView is the public projection of a user. It has no password field.
type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser carries the plaintext password until it is hashed.
type NewUser struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (n *NewUser) Missing() []string {
	var fields []string
	if strings.TrimSpace(n.Username) == "" {
		fields = append(fields, "username")
	}
	if strings.TrimSpace(n.Email) == "" {
		fields = append(fields, "email")
	}
	if n.Password == "" {
		fields = append(fields, "password")
	}
	return fields
}

type UserPatch struct {
	Username *string `json:"username" binding:"omitempty,min=1,max=100"`
	FullName *string `json:"fullName" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *Role   `json:"role" binding:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"isActive"`
}

// Changes excludes the password, which has to be hashed by the caller.
func (p *UserPatch) Changes() (map[string]any, []string) {
	changes := map[string]any{}
	var invalid []string

	setString(changes, "username", p.Username)
	setString(changes, "full_name", p.FullName)
	setString(changes, "email", p.Email)
	if p.Role != nil {
		if _, ok := NormalizeRole(string(*p.Role)); !ok {
			invalid = append(invalid, "role")
		} else {
			changes["role"] = string(*p.Role)
		}
	}
	if p.IsActive != nil {
		changes["is_active"] = *p.IsActive
	}
	return changes, invalid
}
