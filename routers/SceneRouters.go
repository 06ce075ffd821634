package routers

import (
	"github.com/GrainArc/GeoMesh/services"
	"github.com/GrainArc/GeoMesh/views"
	"github.com/gin-gonic/gin"
)

func SceneRouters(r *gin.Engine, service *services.SceneService) {
	handler := views.NewSceneHandler(service)
	sceneRouter := r.Group("/scene")
	{
		sceneRouter.POST("/Build", handler.Build)
		sceneRouter.GET("/List", handler.List)
		sceneRouter.GET("/Stream", handler.Stream)
		sceneRouter.GET("/:id", handler.Get)
		sceneRouter.GET("/:id/Node/:name", handler.Node)
		sceneRouter.GET("/:id/Export", handler.Export)
		sceneRouter.DELETE("/:id", handler.Delete)
	}
}

// NewEngine gin 引擎, 使用 logrus 访问日志
func NewEngine(service *services.SceneService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), views.AccessLog())
	SceneRouters(r, service)
	return r
}
