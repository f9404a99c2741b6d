package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/metrics"
	"liyu1981.xyz/maintenance-service/pkg/models"
	"liyu1981.xyz/maintenance-service/pkg/report"
)

func (rs *RestfulServer) ListActivityLogs(c *gin.Context) {
	logs, err := rs.Maint.Activity.ListActivityLogs(c.Request.Context())
	if err != nil {
		respondError(c, common.LoggerCategoryActivity, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (rs *RestfulServer) GetDashboard(c *gin.Context) {
	dashboard, err := rs.Maint.Dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, common.LoggerCategoryDashboard, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

type reportSource struct {
	name  string
	noun  string
	table string
	load  func(ctx context.Context) (report.Table, error)
}

func (rs *RestfulServer) ExportDevices(c *gin.Context) {
	rs.export(c, reportSource{
		name:  "devices",
		noun:  "device",
		table: models.TableDevices,
		load: func(ctx context.Context) (report.Table, error) {
			devices, err := rs.Maint.Device.ListDevices(ctx)
			return report.DevicesTable(devices), err
		},
	})
}

func (rs *RestfulServer) ExportSchedules(c *gin.Context) {
	rs.export(c, reportSource{
		name:  "maintenance",
		noun:  "maintenance",
		table: models.TableMaintenanceSchedules,
		load: func(ctx context.Context) (report.Table, error) {
			schedules, err := rs.Maint.Schedule.ListSchedules(ctx)
			return report.SchedulesTable(schedules), err
		},
	})
}

func (rs *RestfulServer) ExportAlerts(c *gin.Context) {
	rs.export(c, reportSource{
		name:  "alerts",
		noun:  "alert",
		table: models.TableAlerts,
		load: func(ctx context.Context) (report.Table, error) {
			alerts, err := rs.Maint.Alert.ListAlerts(ctx, models.AlertFilter{})
			return report.AlertsTable(alerts), err
		},
	})
}

// export renders a full snapshot as an attachment and records an EXPORT
// activity against record 0.
func (rs *RestfulServer) export(c *gin.Context, src reportSource) {
	logger := serverLogger(common.LoggerCategoryReport)
	start := time.Now()
	ctx := c.Request.Context()

	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "format must be one of csv, xlsx, pdf"})
		return
	}

	table, err := src.load(ctx)
	if err != nil {
		metrics.ObserveExport(src.name, string(format), metrics.ResultError, time.Since(start))
		respondError(c, common.LoggerCategoryReport, err)
		return
	}

	file, err := report.Render(format, table)
	if err != nil {
		metrics.ObserveExport(src.name, string(format), metrics.ResultError, time.Since(start))
		respondError(c, common.LoggerCategoryReport, err)
		return
	}

	rs.Maint.Activity.LogActivity(ctx, models.ActionExport, src.table, 0,
		fmt.Sprintf("Exported %s report as %s", src.noun, format.Label()))
	metrics.ObserveExport(src.name, string(format), metrics.ResultSuccess, time.Since(start))
	logger.Info("Exported report",
		zap.String("report", src.name),
		zap.String("format", string(format)),
		zap.Int("rows", len(table.Rows)),
	)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
