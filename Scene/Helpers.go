package Scene

import (
	"fmt"
	"os"

	"github.com/GrainArc/GeoMesh/Mesh"
)

// Line 带颜色的辅助线
type Line struct {
	Edge  Mesh.Edge `json:"edge"`
	Color string    `json:"color"`
}

// AxisLines 坐标轴辅助线, x 红 y 绿 z 蓝
func AxisLines(length float64) []Line {
	o := Mesh.Point3D{}
	return []Line{
		{Edge: Mesh.Edge{P1: o, P2: Mesh.Point3D{X: length}}, Color: "#FF0000"},
		{Edge: Mesh.Edge{P1: o, P2: Mesh.Point3D{Y: length}}, Color: "#00FF00"},
		{Edge: Mesh.Edge{P1: o, P2: Mesh.Point3D{Z: length}}, Color: "#0000FF"},
	}
}

// ModelNode 附加的外部模型, 顶点已经缩放并平移到场景坐标
type ModelNode struct {
	Name  string     `json:"name"`
	Solid Mesh.Solid `json:"solid"`
}

// PlaceModel 按统一缩放和位置摆放模型
func PlaceModel(name string, solid Mesh.Solid, position Mesh.Point3D, scale float64) ModelNode {
	placed := Mesh.Solid{
		Vertices:  make([]Mesh.Point3D, len(solid.Vertices)),
		Triangles: append([]Mesh.Triangle(nil), solid.Triangles...),
	}
	for i, v := range solid.Vertices {
		placed.Vertices[i] = v.Scale(scale).Add(position)
	}
	placed.ComputeBoundingSphere()
	return ModelNode{Name: name, Solid: placed}
}

// LoadModel 读取 OBJ 文件并摆放
func LoadModel(path string, position Mesh.Point3D, scale float64) (ModelNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return ModelNode{}, err
	}
	defer f.Close()
	solid, err := Mesh.LoadOBJ(f)
	if err != nil {
		return ModelNode{}, fmt.Errorf("load model %s: %w", path, err)
	}
	return PlaceModel(path, solid, position, scale), nil
}
