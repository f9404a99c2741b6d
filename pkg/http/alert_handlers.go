package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

type AlertRequest struct {
	DeviceId  int    `json:"deviceId"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Notes     string `json:"notes"`
	AlertDate string `json:"alertDate"`
}

var alertRequestSchema = z.Struct(z.Shape{
	"deviceId":  z.Int().Required(),
	"message":   z.String().Min(1).Required(),
	"severity":  z.String(),
	"notes":     z.String(),
	"alertDate": z.String(),
})

func (r *AlertRequest) toModel() (*models.Alert, error) {
	var dates dateFields
	alert := &models.Alert{
		DeviceID: optionalUint(r.DeviceId),
		Message:  r.Message,
		Severity: r.Severity,
		Notes:    r.Notes,
	}
	if alertDate := dates.parse("alertDate", r.AlertDate); alertDate != nil {
		alert.AlertDate = *alertDate
	}
	return alert, dates.err()
}

// ListAlerts accepts ?resolved=true|false.
func (rs *RestfulServer) ListAlerts(c *gin.Context) {
	resolved, err := parseOptionalBool(c.Query("resolved"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "resolved must be true or false"})
		return
	}

	alerts, err := rs.Maint.Alert.ListAlerts(c.Request.Context(), models.AlertFilter{Resolved: resolved})
	if err != nil {
		respondError(c, common.LoggerCategoryAlert, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (rs *RestfulServer) GetAlert(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	alert, err := rs.Maint.Alert.GetAlert(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryAlert, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (rs *RestfulServer) CreateAlert(c *gin.Context) {
	var req AlertRequest
	if errs := alertRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		respondBadRequest(c, errs)
		return
	}
	input, err := req.toModel()
	if err != nil {
		respondError(c, common.LoggerCategoryAlert, err)
		return
	}

	alert, err := rs.Maint.Alert.CreateAlert(c.Request.Context(), input)
	if err != nil {
		respondError(c, common.LoggerCategoryAlert, err)
		return
	}
	respondEntity(c, http.StatusCreated, "Alert created successfully", alert)
}

// UpdateAlert doubles as resolve: send {"isResolved": true, "notes": "..."}.
func (rs *RestfulServer) UpdateAlert(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.AlertPatch
	if !bindPatch(c, &patch) {
		return
	}

	alert, err := rs.Maint.Alert.UpdateAlert(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, common.LoggerCategoryAlert, err)
		return
	}
	respondEntity(c, http.StatusOK, "Alert updated successfully", alert)
}

func (rs *RestfulServer) DeleteAlert(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	alert, err := rs.Maint.Alert.DeleteAlert(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryAlert, err)
		return
	}
	respondEntity(c, http.StatusOK, "Alert deleted successfully", alert)
}
