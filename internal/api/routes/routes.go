package routes

import (
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/config"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/api/handlers"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/api/middleware"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/directions"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/location"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/schedule"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/socket"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/storage"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers to their collaborators and lays out the API.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	scheduleStore *storage.ScheduleStore,
	pointStore *storage.PointStore,
	machine *schedule.Machine,
	workflowSvc *workflow.Service,
	directionsClient *directions.Client,
	reporter *location.Reporter,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	scheduleHandler := &handlers.ScheduleHandler{Schedules: scheduleStore, Machine: machine, Workflow: workflowSvc}
	executionHandler := &handlers.ExecutionHandler{Workflow: workflowSvc, Directions: directionsClient}
	pointHandler := &handlers.PointHandler{Points: pointStore}
	locationHandler := &handlers.LocationHandler{Reporter: reporter, Schedules: scheduleStore}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Dispatcher administration.
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("admin"))
		{
			admin.POST("/users", userHandler.CreateUser)

			points := admin.Group("/points")
			{
				points.POST("/", pointHandler.CreatePoint)
				points.PUT("/:id", pointHandler.UpdatePoint)
			}

			schedules := admin.Group("/schedules")
			{
				schedules.POST("/", scheduleHandler.CreateSchedule)
				schedules.POST("/:id/advance", scheduleHandler.AdvanceSchedule)
				schedules.POST("/:id/cancel", scheduleHandler.CancelSchedule)
			}

			admin.GET("/drivers/:id/schedules", scheduleHandler.GetSchedulesByDriver)
			admin.GET("/drivers/:id/location", locationHandler.GetDriverLocation)
		}

		// Shared read surface for drivers and dispatchers.
		business := apiV1.Group("/")
		business.Use(middleware.Authenticate())
		business.Use(middleware.Authorize("admin", "driver"))
		{
			points := business.Group("/points")
			{
				points.GET("/", pointHandler.GetAllPoints)
				points.GET("/:id", pointHandler.GetPointByID)
				points.PUT("/:id/status", pointHandler.SetPointStatus)
			}

			business.GET("/schedules/:id", scheduleHandler.GetSchedule)
		}

		// Route execution, drivers only.
		driver := apiV1.Group("/")
		driver.Use(middleware.Authenticate())
		driver.Use(middleware.Authorize("driver"))
		{
			driver.GET("/schedules/my", scheduleHandler.GetMySchedules)
			driver.GET("/schedules/my/stats", scheduleHandler.GetMyDailyStats)

			driver.GET("/routes/active", executionHandler.GetActiveRoute)
			driver.GET("/routes/active/path", executionHandler.GetLegPath)

			driver.POST("/schedules/:id/start", executionHandler.StartSchedule)
			driver.POST("/schedules/:id/stops/:index/complete", executionHandler.CompleteStop)
			driver.POST("/schedules/:id/stops/:index/issue", executionHandler.ReportIssue)

			driver.POST("/locations", locationHandler.PublishLocation)
			driver.DELETE("/locations", locationHandler.StopTracking)
		}
	}

	return router
}
