package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SFillip/el-backend/internal/controllers"
	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/pkg/domain"
)

func SetupMappings(app *Application) {
	if app.Issuer != nil {
		app.Engine.POST("/Authenticate", controllers.NewAuthenticateController(app.Users, app.Issuer).Handle)
	}

	authed := app.Engine.Group("", middleware.AuthMiddleware(app.Validator, app.Config.Auth.Header))
	{
		// Station enumeration is reserved for the highest privilege level.
		authed.GET("/StationNames", middleware.RequirePrivilege(domain.PrivilegeAdmin),
			controllers.NewStationNamesController(app.Stats).Handle)

		authed.GET("/SendTimes", controllers.NewSendTimesController(app.Stats).Handle)

		if app.Config.EnableImagesPerHour {
			authed.GET("/ImagesPerHour", controllers.NewImagesPerHourController(app.Stats).Handle)
		}
		if app.Config.EnableBrightness {
			authed.GET("/BrightnessValues", controllers.NewBrightnessController(app.Stats).Handle)
		}
	}

	app.Engine.GET("/healthz", func(c *gin.Context) {
		if err := app.Store.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	app.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
