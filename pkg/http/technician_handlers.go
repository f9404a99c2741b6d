package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/metrics"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

type TechnicianRequest struct {
	FullName       string `json:"fullName"`
	Specialization string `json:"specialization"`
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	HireDate       string `json:"hireDate"`
}

var technicianRequestSchema = z.Struct(z.Shape{
	"fullName":       z.String().Min(1).Required(),
	"specialization": z.String(),
	"phoneNumber":    z.String(),
	"address":        z.String(),
	"hireDate":       z.String(),
})

func (rs *RestfulServer) ListTechnicians(c *gin.Context) {
	technicians, err := rs.Maint.Technician.ListTechnicians(c.Request.Context())
	if err != nil {
		respondError(c, common.LoggerCategoryTechnician, err)
		return
	}
	c.JSON(http.StatusOK, technicians)
}

func (rs *RestfulServer) GetTechnician(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	technician, err := rs.Maint.Technician.GetTechnician(c.Request.Context(), id)
	if err != nil {
		respondError(c, common.LoggerCategoryTechnician, err)
		return
	}
	c.JSON(http.StatusOK, technician)
}

func (rs *RestfulServer) CreateTechnician(c *gin.Context) {
	var req TechnicianRequest
	if errs := technicianRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		respondBadRequest(c, errs)
		return
	}
	var dates dateFields
	input := &models.Technician{
		FullName:       req.FullName,
		Specialization: req.Specialization,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		HireDate:       dates.parse("hireDate", req.HireDate),
	}
	if err := dates.err(); err != nil {
		respondError(c, common.LoggerCategoryTechnician, err)
		return
	}

	technician, err := rs.Maint.Technician.CreateTechnician(c.Request.Context(), input)
	if err != nil {
		respondError(c, common.LoggerCategoryTechnician, err)
		return
	}
	respondEntity(c, http.StatusCreated, "Technician created successfully", technician)
}

func (rs *RestfulServer) UpdateTechnician(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.TechnicianPatch
	if !bindPatch(c, &patch) {
		return
	}

	technician, err := rs.Maint.Technician.UpdateTechnician(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, common.LoggerCategoryTechnician, err)
		return
	}
	respondEntity(c, http.StatusOK, "Technician updated successfully", technician)
}

func (rs *RestfulServer) DeleteTechnician(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	technician, err := rs.Maint.Technician.DeleteTechnician(c.Request.Context(), id)
	if err != nil {
		if common.IsConflictError(err) {
			metrics.IncCascadeDelete("technician", "blocked")
		}
		respondError(c, common.LoggerCategoryTechnician, err)
		return
	}
	metrics.IncCascadeDelete("technician", metrics.ResultSuccess)
	respondEntity(c, http.StatusOK, "Technician deleted successfully", technician)
}
