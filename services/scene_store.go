package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GrainArc/GeoMesh/Scene"
	"github.com/GrainArc/GeoMesh/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SceneStore 场景持久化
type SceneStore struct {
	db *gorm.DB
}

func NewSceneStore(db *gorm.DB) *SceneStore {
	return &SceneStore{db: db}
}

// SaveRequest 保存参数
type SaveRequest struct {
	Scene   *Scene.Scene
	Source  string
	Skipped int
}

// Save 写入场景和节点, 没有 ID 的场景分配一个 uuid
func (s *SceneStore) Save(ctx context.Context, req SaveRequest) (*models.SceneRecord, error) {
	sc := req.Scene
	if sc == nil {
		return nil, errors.New("保存场景失败: 场景为空")
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	data, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("编码场景失败: %w", err)
	}
	record := &models.SceneRecord{
		ID:        sc.ID,
		Name:      sc.Name,
		Source:    req.Source,
		NodeCount: sc.Len(),
		Skipped:   req.Skipped,
		CenterX:   sc.Center.X,
		CenterY:   sc.Center.Y,
		Scale:     sc.Scale,
		Data:      datatypes.JSON(data),
	}

	nodes := sc.Nodes()
	rows := make([]models.NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		nodeData, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("编码节点 %q 失败: %w", n.Name, err)
		}
		row := models.NodeRecord{
			SceneID: sc.ID,
			Name:    n.Name,
			Handle:  int(n.Handle),
			Parts:   len(n.Parts),
			Data:    datatypes.JSON(nodeData),
		}
		if n.Label != nil {
			row.Label = n.Label.Content
		}
		rows = append(rows, row)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scene_id = ?", sc.ID).Delete(&models.NodeRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			return tx.CreateInBatches(rows, 100).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("保存场景失败: %w", err)
	}
	return record, nil
}

// Load 读取完整场景
func (s *SceneStore) Load(ctx context.Context, id string) (*Scene.Scene, error) {
	var record models.SceneRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFound(err, id)
	}
	sc := &Scene.Scene{}
	if err := json.Unmarshal(record.Data, sc); err != nil {
		return nil, fmt.Errorf("解析场景 %s 失败: %w", id, err)
	}
	return sc, nil
}

// Node 按名称读取单个节点, 不加载整个场景
func (s *SceneStore) Node(ctx context.Context, id, name string) (*Scene.RegionNode, error) {
	var row models.NodeRecord
	err := s.db.WithContext(ctx).
		Where("scene_id = ? AND name = ?", id, name).
		Order("handle").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", Scene.ErrNodeNotFound, id, name)
		}
		return nil, err
	}
	var node Scene.RegionNode
	if err := json.Unmarshal(row.Data, &node); err != nil {
		return nil, fmt.Errorf("解析节点失败: %w", err)
	}
	return &node, nil
}

// List 场景列表, 不包含几何数据, 最新的在前
func (s *SceneStore) List(ctx context.Context, page, pageSize int) ([]models.SceneRecord, int64, error) {
	var (
		records []models.SceneRecord
		total   int64
	)
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.SceneRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	err := db.Select("id, name, source, node_count, skipped, center_x, center_y, scale, created_at, updated_at").
		Order("created_at DESC, id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Delete 删除场景及其节点
func (s *SceneStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scene_id = ?", id).Delete(&models.NodeRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SceneRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", Scene.ErrSceneNotFound, id)
		}
		return nil
	})
}

func notFound(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", Scene.ErrSceneNotFound, id)
	}
	return err
}
