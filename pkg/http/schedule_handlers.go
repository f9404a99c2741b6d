package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

// Field names follow the schema keys, which zog resolves by capitalising the
// first letter.
type ScheduleRequest struct {
	DeviceId        int    `json:"deviceId"`
	TechnicianId    int    `json:"technicianId"`
	MaintenanceType string `json:"maintenanceType"`
	ScheduledDate   string `json:"scheduledDate"`
	Status          string `json:"status"`
	Description     string `json:"description"`
	Notes           string `json:"notes"`
}

var scheduleRequestSchema = z.Struct(z.Shape{
	"deviceId":        z.Int().Required(),
	"technicianId":    z.Int(),
	"maintenanceType": z.String().Min(1).Required(),
	"scheduledDate":   z.String().Min(1).Required(),
	"status":          z.String(),
	"description":     z.String(),
	"notes":           z.String(),
})

func (r *ScheduleRequest) toModel() (*models.MaintenanceSchedule, error) {
	var dates dateFields
	schedule := &models.MaintenanceSchedule{
		TechnicianID:    optionalUint(r.TechnicianId),
		MaintenanceType: r.MaintenanceType,
		Status:          models.ScheduleStatus(r.Status),
		Description:     r.Description,
		Notes:           r.Notes,
	}
	if r.DeviceId > 0 {
		schedule.DeviceID = uint(r.DeviceId)
	}
	if scheduled := dates.parse("scheduledDate", r.ScheduledDate); scheduled != nil {
		schedule.ScheduledDate = *scheduled
	}
	return schedule, dates.err()
}

func (rs *RestfulServer) ListSchedules(c *gin.Context) {
	schedules, err := rs.Maint.Schedule.ListSchedules(c.Request.Context())
	if err != nil {
		respondError(c, common.LoggerCategorySchedule, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (rs *RestfulServer) GetSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	schedule, err := rs.Maint.Schedule.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategorySchedule, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (rs *RestfulServer) CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if errs := scheduleRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		respondBadRequest(c, errs)
		return
	}
	input, err := req.toModel()
	if err != nil {
		respondError(c, common.LoggerCategorySchedule, err)
		return
	}

	schedule, err := rs.Maint.Schedule.CreateSchedule(c.Request.Context(), input)
	if err != nil {
		respondError(c, common.LoggerCategorySchedule, err)
		return
	}
	respondEntity(c, http.StatusCreated, "Maintenance schedule created successfully", schedule)
}

func (rs *RestfulServer) UpdateSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.SchedulePatch
	if !bindPatch(c, &patch) {
		return
	}

	schedule, err := rs.Maint.Schedule.UpdateSchedule(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, common.LoggerCategorySchedule, err)
		return
	}
	respondEntity(c, http.StatusOK, "Maintenance schedule updated successfully", schedule)
}

func (rs *RestfulServer) DeleteSchedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	schedule, err := rs.Maint.Schedule.DeleteSchedule(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategorySchedule, err)
		return
	}
	respondEntity(c, http.StatusOK, "Maintenance schedule deleted successfully", schedule)
}
