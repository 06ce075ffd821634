package Scene

import (
	"math"

	"github.com/GrainArc/GeoMesh/Label"
	"github.com/GrainArc/GeoMesh/Mesh"
)

// Handle 节点在场景中的下标
type Handle int

// InvalidHandle 尚未挂到场景上的节点
const InvalidHandle Handle = -1

// Part 一个环生成的实体与边线
type Part struct {
	Ring       int          `json:"ring"`
	Solid      Mesh.Solid   `json:"solid"`
	Outline    Mesh.Outline `json:"outline"`
	Degenerate bool         `json:"degenerate"`
}

// RegionNode 一个行政区对应的节点, 名称即要素名称
type RegionNode struct {
	Handle         Handle       `json:"handle"`
	Name           string       `json:"name"`
	Parts          []Part       `json:"parts"`
	Label          *Label.Text  `json:"label,omitempty"`
	BoundingCenter Mesh.Point3D `json:"boundingCenter"`
	AnchorDerived  bool         `json:"anchorDerived"`
}

// SolidCount 非退化实体数量
func (n *RegionNode) SolidCount() int {
	c := 0
	for _, p := range n.Parts {
		if !p.Solid.IsEmpty() {
			c++
		}
	}
	return c
}

// computeBoundingCenter 所有环顶点外包盒的中心
func (n *RegionNode) computeBoundingCenter() {
	min := Mesh.Point3D{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := Mesh.Point3D{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	found := false
	for _, p := range n.Parts {
		for _, v := range p.Solid.Vertices {
			min = Mesh.Point3D{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
			max = Mesh.Point3D{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
			found = true
		}
	}
	if !found {
		n.BoundingCenter = Mesh.Point3D{}
		return
	}
	n.BoundingCenter = min.Add(max).Scale(0.5)
}
