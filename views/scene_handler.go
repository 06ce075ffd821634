package views

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GrainArc/GeoMesh/Scene"
	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/GrainArc/GeoMesh/methods"
	"github.com/GrainArc/GeoMesh/response"
	"github.com/GrainArc/GeoMesh/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// MaxUploadSize 上传数据集大小上限
const MaxUploadSize = 256 << 20

type SceneHandler struct {
	service *services.SceneService
}

func NewSceneHandler(service *services.SceneService) *SceneHandler {
	return &SceneHandler{service: service}
}

func buildSummary(res *services.BuildResult) gin.H {
	h := gin.H{
		"id":      res.Scene.ID,
		"name":    res.Scene.Name,
		"nodes":   res.Scene.Len(),
		"skipped": res.Skipped,
		"center":  res.Scene.Center,
	}
	if res.LabelErr != nil {
		h["labels_error"] = res.LabelErr.Error()
	}
	return h
}

// Build 上传数据集构建场景
// @Accept multipart/form-data 或 application/json
// @Param file formData file false "GeoJSON/KML/Shapefile 压缩包"
// @Param name query string false "场景名称"
func (h *SceneHandler) Build(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		res *services.BuildResult
		err error
	)
	if file, ferr := c.FormFile("file"); ferr == nil {
		if file.Size > MaxUploadSize {
			response.BadRequest(c, "文件过大")
			return
		}
		dir, terr := os.MkdirTemp("", "geomesh-upload-*")
		if terr != nil {
			response.InternalError(c, "创建临时目录失败")
			return
		}
		defer os.RemoveAll(dir)
		dst := filepath.Join(dir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			response.InternalError(c, "保存上传文件失败")
			return
		}
		res, err = h.service.BuildFromFile(ctx, dst)
	} else {
		body, rerr := io.ReadAll(io.LimitReader(c.Request.Body, MaxUploadSize))
		if rerr != nil || len(body) == 0 {
			response.BadRequest(c, "请上传数据文件或在请求体中提供 GeoJSON")
			return
		}
		res, err = h.service.BuildFromBytes(ctx, c.DefaultQuery("name", "upload"), body)
	}
	if err != nil {
		writeBuildError(c, err)
		return
	}
	response.SuccessWithMessage(c, "构建成功", buildSummary(res))
}

func writeBuildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, Transformer.ErrEmptyDataset),
		errors.Is(err, Transformer.ErrUnsupportedFormat),
		errors.Is(err, Transformer.ErrDecode):
		response.BadRequest(c, err.Error())
	default:
		log.WithError(err).Error("场景构建失败")
		response.InternalError(c, "场景构建失败: "+err.Error())
	}
}

// List 场景列表
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
func (h *SceneHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	store := h.service.Store()
	if store == nil {
		response.Success(c, gin.H{"list": []interface{}{}, "total": 0, "page": page, "page_size": pageSize})
		return
	}
	items, total, err := store.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalError(c, "获取列表失败")
		return
	}
	response.Success(c, gin.H{
		"list":      items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get 完整场景
func (h *SceneHandler) Get(c *gin.Context) {
	sc, err := h.service.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLoadError(c, err)
		return
	}
	response.Success(c, sc)
}

// Node 按名称拾取单个区块, 锚点同时以经纬度返回
func (h *SceneHandler) Node(c *gin.Context) {
	sc, err := h.service.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLoadError(c, err)
		return
	}
	node, err := sc.Lookup(c.Param("name"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	data := gin.H{"node": node}
	if node.Label != nil {
		data["anchor"] = sceneToLonLat(sc, node.Label.Position.X, node.Label.Position.Y)
	}
	response.Success(c, data)
}

// sceneToLonLat 渲染坐标还原为经纬度
func sceneToLonLat(sc *Scene.Scene, x, y float64) []float64 {
	scale := sc.Scale
	if scale == 0 {
		scale = 1
	}
	g := Transformer.UnprojectXY(x*scale+sc.Center.X, y*scale+sc.Center.Y)
	return []float64{g.Lon, g.Lat}
}

// Export 导出 obj/mtl/dxf/json/zip
func (h *SceneHandler) Export(c *gin.Context) {
	sc, err := h.service.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLoadError(c, err)
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	base := methods.BundleName(sc)
	switch format {
	case "json":
		c.Header("Content-Disposition", "attachment; filename="+base+".json")
		c.JSON(http.StatusOK, sc)
	case "obj":
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename="+base+".obj")
		if err := methods.SceneToOBJ(c.Writer, sc, base+".mtl"); err != nil {
			log.WithError(err).Error("导出 OBJ 失败")
		}
	case "mtl":
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename="+base+".mtl")
		if err := methods.SceneToMTL(c.Writer, sc.Style); err != nil {
			log.WithError(err).Error("导出 MTL 失败")
		}
	case "dxf":
		dir, err := os.MkdirTemp("", "geomesh-dxf-*")
		if err != nil {
			response.InternalError(c, "创建临时目录失败")
			return
		}
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, base+".dxf")
		if err := methods.SceneToDXF(sc, path); err != nil {
			response.InternalError(c, "导出 DXF 失败: "+err.Error())
			return
		}
		c.FileAttachment(path, base+".dxf")
	case "zip":
		data, err := methods.SceneBundle(sc)
		if err != nil {
			response.InternalError(c, "打包失败: "+err.Error())
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+base+".zip")
		c.Data(http.StatusOK, "application/zip", data)
	default:
		response.BadRequest(c, "不支持的导出格式: "+format)
	}
}

// Delete 删除场景
func (h *SceneHandler) Delete(c *gin.Context) {
	store := h.service.Store()
	if store == nil {
		response.NotFound(c, Scene.ErrSceneNotFound.Error())
		return
	}
	if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeLoadError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

func writeLoadError(c *gin.Context, err error) {
	if errors.Is(err, Scene.ErrSceneNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	response.InternalError(c, err.Error())
}
