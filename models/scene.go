package models

import "gorm.io/datatypes"

// SceneRecord 一次构建的结果, Data 为完整场景 JSON
type SceneRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"index;not null" json:"name"`
	Source    string         `json:"source"`
	NodeCount int            `json:"node_count"`
	Skipped   int            `json:"skipped"`
	CenterX   float64        `json:"center_x"`
	CenterY   float64        `json:"center_y"`
	Scale     float64        `json:"scale"`
	Data      datatypes.JSON `gorm:"type:json" json:"-"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SceneRecord) TableName() string {
	return "scenes"
}

// NodeRecord 场景中的单个区块, 供按名称拾取
type NodeRecord struct {
	ID      uint           `gorm:"primaryKey" json:"id"`
	SceneID string         `gorm:"index:idx_scene_name,priority:1;size:36;not null" json:"scene_id"`
	Name    string         `gorm:"index:idx_scene_name,priority:2" json:"name"`
	Handle  int            `json:"handle"`
	Parts   int            `json:"parts"`
	Label   string         `json:"label"`
	Data    datatypes.JSON `gorm:"type:json" json:"-"`
}

func (NodeRecord) TableName() string {
	return "scene_nodes"
}
