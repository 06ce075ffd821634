package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GrainArc/GeoMesh/Asset"
	"github.com/GrainArc/GeoMesh/Label"
	"github.com/GrainArc/GeoMesh/Scene"
	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/GrainArc/GeoMesh/config"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SceneService 数据集到场景的完整流程: 解析, 计算中心, 生成区块, 等待字体生成文字, 保存
type SceneService struct {
	cfg      config.Config
	store    *SceneStore
	composer *Scene.Composer
	font     *Asset.Future[*Label.Font]
}

// NewSceneService 字体在这里开始加载, 之后所有构建共用; store 为 nil 时不保存
func NewSceneService(ctx context.Context, cfg config.Config, store *SceneStore) *SceneService {
	return &SceneService{
		cfg:      cfg,
		store:    store,
		composer: Scene.NewComposer(cfg.SceneOptions()),
		font:     Label.LoadFont(ctx, cfg.Label.Font),
	}
}

// WithFont 替换字体来源
func (s *SceneService) WithFont(font *Asset.Future[*Label.Font]) *SceneService {
	s.font = font
	return s
}

// BuildResult 构建结果
type BuildResult struct {
	Scene   *Scene.Scene                 `json:"scene"`
	Skipped []Transformer.SkippedFeature `json:"skipped"`
	// LabelErr 非空表示文字生成失败, 区块仍然可用
	LabelErr error `json:"-"`
}

// BuildFromFile 按扩展名读取数据集后构建
func (s *SceneService) BuildFromFile(ctx context.Context, path string, sinks ...Scene.Sink) (*BuildResult, error) {
	res, err := Transformer.LoadDataset(path, s.cfg.ParseOptions())
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s.Build(ctx, name, filepath.Base(path), res, sinks...)
}

// BuildFromBytes GeoJSON 或 KML 内容直接构建
func (s *SceneService) BuildFromBytes(ctx context.Context, name string, data []byte, sinks ...Scene.Sink) (*BuildResult, error) {
	var (
		res *Transformer.ParseResult
		err error
	)
	if isKML(data) {
		res, err = Transformer.ParseKML(data, s.cfg.ParseOptions())
	} else {
		res, err = Transformer.ParseGeoJSON(data, s.cfg.ParseOptions())
	}
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, name, "upload", res, sinks...)
}

// Build 解析结果已经包含完整的 Extent, 从这里开始生成网格
func (s *SceneService) Build(ctx context.Context, name, source string, res *Transformer.ParseResult, sinks ...Scene.Sink) (*BuildResult, error) {
	if res == nil || len(res.Features) == 0 {
		return nil, Transformer.ErrEmptyDataset
	}
	logger := log.WithFields(log.Fields{"scene": name, "features": len(res.Features), "rings": res.RingCount()})
	for _, sk := range res.Skipped {
		logger.WithFields(log.Fields{"index": sk.Index, "name": sk.Name, "type": sk.Type}).Warn("非面要素已跳过")
	}

	center := res.Center()
	sc := Scene.New(name, center, s.cfg.Mesh.Scale)
	sc.ID = uuid.NewString()
	if s.cfg.Axes > 0 {
		sc.Axes = Scene.AxisLines(s.cfg.Axes)
	}
	if s.cfg.Model.Path != "" {
		model, err := Scene.LoadModel(s.cfg.Model.Path, s.cfg.ModelPosition(), s.cfg.Model.Scale)
		if err != nil {
			logger.WithError(err).Warn("模型加载失败")
		} else {
			sc.Models = append(sc.Models, model)
		}
	}

	sink := Scene.Tee(append([]Scene.Sink{sc}, sinks...)...)
	result := &BuildResult{Scene: sc, Skipped: res.Skipped}
	if err := s.composer.ComposeInto(ctx, sink, res.Features, center, s.font); err != nil {
		if !errors.Is(err, Scene.ErrLabelsUnavailable) || sc.Len() != len(res.Features) {
			return nil, err
		}
		logger.WithError(err).Warn("文字生成失败, 仅输出区块")
		result.LabelErr = err
	}

	if s.store != nil {
		if _, err := s.store.Save(ctx, SaveRequest{Scene: sc, Source: source, Skipped: len(res.Skipped)}); err != nil {
			return nil, err
		}
	}
	logger.WithField("id", sc.ID).Info("场景构建完成")
	return result, nil
}

// Load 读取已保存的场景
func (s *SceneService) Load(ctx context.Context, id string) (*Scene.Scene, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: %s", Scene.ErrSceneNotFound, id)
	}
	return s.store.Load(ctx, id)
}

// Store 持久化层
func (s *SceneService) Store() *SceneStore { return s.store }

func isKML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(string(head), "<kml")
}
