package Scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GrainArc/GeoMesh/Transformer"
)

var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrNodeNotFound  = errors.New("node not found")
)

// Sink 接收组装完成的节点
type Sink interface {
	Attach(node *RegionNode) error
}

// SinkFunc 函数适配为 Sink
type SinkFunc func(node *RegionNode) error

func (f SinkFunc) Attach(node *RegionNode) error { return f(node) }

// Style 材质颜色
type Style struct {
	Region string `json:"region"`
	Edge   string `json:"edge"`
	Label  string `json:"label"`
}

// DefaultStyle 区块蓝色, 边线黑色, 文字黄色
func DefaultStyle() Style {
	return Style{Region: "#203A9A", Edge: "#000000", Label: "#FFFF00"}
}

// Scene 节点按下标存放, 节点之间不互相引用
type Scene struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Center Transformer.Center `json:"center"`
	Scale  float64            `json:"scale"`
	Style  Style              `json:"style"`
	Axes   []Line             `json:"axes,omitempty"`
	Models []ModelNode        `json:"models,omitempty"`

	mu     sync.RWMutex
	nodes  []*RegionNode
	byName map[string]Handle
}

// New 空场景
func New(name string, center Transformer.Center, scale float64) *Scene {
	return &Scene{
		Name:   name,
		Center: center,
		Scale:  scale,
		Style:  DefaultStyle(),
		byName: make(map[string]Handle),
	}
}

// Attach 追加节点并分配 Handle; 同名节点只有第一个可以按名称查到
func (s *Scene) Attach(node *RegionNode) error {
	if node == nil {
		return fmt.Errorf("attach: nil node")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byName == nil {
		s.byName = make(map[string]Handle)
	}
	node.Handle = Handle(len(s.nodes))
	s.nodes = append(s.nodes, node)
	if _, ok := s.byName[node.Name]; !ok {
		s.byName[node.Name] = node.Handle
	}
	return nil
}

// Node 按 Handle 取节点
func (s *Scene) Node(h Handle) (*RegionNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h < 0 || int(h) >= len(s.nodes) {
		return nil, fmt.Errorf("%w: handle %d", ErrNodeNotFound, h)
	}
	return s.nodes[h], nil
}

// Lookup 按名称取节点, 用于拾取和高亮
func (s *Scene) Lookup(name string) (*RegionNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return s.nodes[h], nil
}

// Nodes 按挂载顺序返回所有节点
func (s *Scene) Nodes() []*RegionNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*RegionNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Len 节点数量
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Reset 清空节点, 释放全部几何
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
	s.byName = make(map[string]Handle)
}

// Tee 依次挂到多个 sink, 任一失败即停止
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(node *RegionNode) error {
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Attach(node); err != nil {
				return err
			}
		}
		return nil
	})
}
