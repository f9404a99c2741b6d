package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyLogDir string = "LOG_DIR"

	LoggerNameMaintenanceCore string = "maintenance_core"
	LoggerNameRestfulServer   string = "restful_server"
	LoggerNameGrpcServer      string = "grpc_server"
	LoggerNameAuth            string = "auth"

	LoggerFieldCategory        string = "category"
	LoggerCategoryDevice       string = "device"
	LoggerCategoryTechnician   string = "technician"
	LoggerCategoryAlert        string = "alert"
	LoggerCategorySchedule     string = "schedule"
	LoggerCategoryUser         string = "user"
	LoggerCategoryActivity     string = "activity"
	LoggerCategoryReport       string = "report"
	LoggerCategoryDashboard    string = "dashboard"
	LoggerCategoryHealth       string = "health"
	LoggerCategorySession      string = "session"
	LoggerCategoryHTTPRequests string = "requests"
)
