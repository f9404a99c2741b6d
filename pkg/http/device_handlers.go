package http

import (
	"net/http"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/metrics"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

// dateFields collects date parse failures so a request reports all of them
// at once.
type dateFields struct {
	invalid []string
}

func (d *dateFields) parse(field, value string) *time.Time {
	t, err := models.ParseDate(value)
	if err != nil {
		d.invalid = append(d.invalid, field)
		return nil
	}
	return t
}

func (d *dateFields) err() error {
	if len(d.invalid) == 0 {
		return nil
	}
	return common.NewValidationError(d.invalid, "invalid fields: %s", strings.Join(d.invalid, ", "))
}

type DeviceRequest struct {
	DeviceName          string `json:"deviceName"`
	SerialNumber        string `json:"serialNumber"`
	Model               string `json:"model"`
	Manufacturer        string `json:"manufacturer"`
	PurchaseDate        string `json:"purchaseDate"`
	WarrantyExpiry      string `json:"warrantyExpiry"`
	Status              string `json:"status"`
	Location            string `json:"location"`
	LastMaintenanceDate string `json:"lastMaintenanceDate"`
	NextMaintenanceDate string `json:"nextMaintenanceDate"`
	Notes               string `json:"notes"`
	AssignedTechnician  int    `json:"assignedTechnician"`
}

var deviceRequestSchema = z.Struct(z.Shape{
	"deviceName":          z.String().Min(1).Required(),
	"serialNumber":        z.String().Min(1).Required(),
	"model":               z.String().Min(1).Required(),
	"manufacturer":        z.String(),
	"purchaseDate":        z.String(),
	"warrantyExpiry":      z.String(),
	"status":              z.String(),
	"location":            z.String(),
	"lastMaintenanceDate": z.String(),
	"nextMaintenanceDate": z.String(),
	"notes":               z.String(),
	"assignedTechnician":  z.Int(),
})

func (r *DeviceRequest) toModel() (*models.Device, error) {
	var dates dateFields
	device := &models.Device{
		DeviceName:          r.DeviceName,
		SerialNumber:        r.SerialNumber,
		Model:               r.Model,
		Manufacturer:        r.Manufacturer,
		PurchaseDate:        dates.parse("purchaseDate", r.PurchaseDate),
		WarrantyExpiry:      dates.parse("warrantyExpiry", r.WarrantyExpiry),
		Status:              models.DeviceStatus(r.Status),
		Location:            r.Location,
		LastMaintenanceDate: dates.parse("lastMaintenanceDate", r.LastMaintenanceDate),
		NextMaintenanceDate: dates.parse("nextMaintenanceDate", r.NextMaintenanceDate),
		Notes:               r.Notes,
		AssignedTechnician:  optionalUint(r.AssignedTechnician),
	}
	return device, dates.err()
}

func (rs *RestfulServer) ListDevices(c *gin.Context) {
	devices, err := rs.Maint.Device.ListDevices(c.Request.Context())
	if err != nil {
		respondError(c, common.LoggerCategoryDevice, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (rs *RestfulServer) GetDevice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	device, err := rs.Maint.Device.GetDevice(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryDevice, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (rs *RestfulServer) CreateDevice(c *gin.Context) {
	var req DeviceRequest
	if errs := deviceRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		respondBadRequest(c, errs)
		return
	}
	input, err := req.toModel()
	if err != nil {
		respondError(c, common.LoggerCategoryDevice, err)
		return
	}

	device, err := rs.Maint.Device.CreateDevice(c.Request.Context(), input)
	if err != nil {
		respondError(c, common.LoggerCategoryDevice, err)
		return
	}
	respondEntity(c, http.StatusCreated, "Device created successfully", device)
}

func (rs *RestfulServer) UpdateDevice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.DevicePatch
	if !bindPatch(c, &patch) {
		return
	}

	device, err := rs.Maint.Device.UpdateDevice(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, common.LoggerCategoryDevice, err)
		return
	}
	respondEntity(c, http.StatusOK, "Device updated successfully", device)
}

func (rs *RestfulServer) DeleteDevice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	device, err := rs.Maint.Device.DeleteDevice(c.Request.Context(), id)
	if err != nil {
		if !common.IsNotFoundError(err) {
			metrics.IncCascadeDelete("device", metrics.ResultError)
		}
		respondError(c, common.LoggerCategoryDevice, err)
		return
	}
	metrics.IncCascadeDelete("device", metrics.ResultSuccess)
	respondEntity(c, http.StatusOK, "Device deleted successfully", device)
}
