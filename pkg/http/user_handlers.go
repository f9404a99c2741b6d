package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

type UserRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

var userRequestSchema = z.Struct(z.Shape{
	"username": z.String().Min(1).Required(),
	"fullName": z.String(),
	"email":    z.String().Min(3).Required(),
	"password": z.String().Min(6).Required(),
	"role":     z.String(),
})

func (rs *RestfulServer) ListUsers(c *gin.Context) {
	users, err := rs.Maint.User.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, common.LoggerCategoryUser, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (rs *RestfulServer) GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := rs.Maint.User.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryUser, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (rs *RestfulServer) CreateUser(c *gin.Context) {
	var req UserRequest
	if errs := userRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		respondBadRequest(c, errs)
		return
	}

	user, err := rs.Maint.User.CreateUser(c.Request.Context(), &models.NewUser{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		respondError(c, common.LoggerCategoryUser, err)
		return
	}
	respondEntity(c, http.StatusCreated, "User created successfully", user)
}

func (rs *RestfulServer) UpdateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.UserPatch
	if !bindPatch(c, &patch) {
		return
	}

	user, err := rs.Maint.User.UpdateUser(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, common.LoggerCategoryUser, err)
		return
	}
	respondEntity(c, http.StatusOK, "User updated successfully", user)
}

func (rs *RestfulServer) ToggleUserStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := rs.Maint.User.ToggleUserStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryUser, err)
		return
	}
	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}
	respondEntity(c, http.StatusOK, message, user)
}

func (rs *RestfulServer) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := rs.Maint.User.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryUser, err)
		return
	}
	respondEntity(c, http.StatusOK, "User deleted successfully", user)
}
