package Mesh

import "math"

// Point3D 三维顶点
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point3D) Add(q Point3D) Point3D   { return Point3D{p.X + q.X, p.Y + q.Y, p.Z + q.Z} }
func (p Point3D) Sub(q Point3D) Point3D   { return Point3D{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }
func (p Point3D) Scale(s float64) Point3D { return Point3D{p.X * s, p.Y * s, p.Z * s} }
func (p Point3D) Dot(q Point3D) float64   { return p.X*q.X + p.Y*q.Y + p.Z*q.Z }
func (p Point3D) Length() float64         { return math.Sqrt(p.Dot(p)) }

func (p Point3D) Cross(q Point3D) Point3D {
	return Point3D{
		X: p.Y*q.Z - p.Z*q.Y,
		Y: p.Z*q.X - p.X*q.Z,
		Z: p.X*q.Y - p.Y*q.X,
	}
}

// Triangle 顶点索引, 逆时针为正面
type Triangle [3]int

// Edge 线段
type Edge struct {
	P1 Point3D `json:"p1"`
	P2 Point3D `json:"p2"`
}

// Sphere 包围球
type Sphere struct {
	Center Point3D `json:"center"`
	Radius float64 `json:"radius"`
}

// Solid 索引三角网实体
type Solid struct {
	Vertices       []Point3D  `json:"vertices"`
	Triangles      []Triangle `json:"triangles"`
	BoundingSphere Sphere     `json:"boundingSphere"`
}

// Outline 边线
type Outline struct {
	Segments []Edge `json:"segments"`
}

func (s *Solid) IsEmpty() bool      { return len(s.Triangles) == 0 }
func (s *Solid) VertexCount() int   { return len(s.Vertices) }
func (s *Solid) TriangleCount() int { return len(s.Triangles) }
func (o *Outline) IsEmpty() bool    { return len(o.Segments) == 0 }

// TriangleArea 三角形面积, 叉积模长的一半
func (s *Solid) TriangleArea(t Triangle) float64 {
	p1, p2, p3 := s.Vertices[t[0]], s.Vertices[t[1]], s.Vertices[t[2]]
	return p2.Sub(p1).Cross(p3.Sub(p1)).Length() / 2.0
}

// Normal 三角形单位法向量, 退化三角形返回零向量
func (s *Solid) Normal(t Triangle) Point3D {
	p1, p2, p3 := s.Vertices[t[0]], s.Vertices[t[1]], s.Vertices[t[2]]
	n := p2.Sub(p1).Cross(p3.Sub(p1))
	length := n.Length()
	if length > 0 {
		n = n.Scale(1 / length)
	}
	return n
}

// Area 表面积
func (s *Solid) Area() float64 {
	var total float64
	for _, t := range s.Triangles {
		total += s.TriangleArea(t)
	}
	return total
}

// Volume 有向体积, 面片朝外时为正
func (s *Solid) Volume() float64 {
	var v float64
	for _, t := range s.Triangles {
		a, b, c := s.Vertices[t[0]], s.Vertices[t[1]], s.Vertices[t[2]]
		v += a.Dot(b.Cross(c))
	}
	return v / 6.0
}

// Translate 平移所有顶点, 包围球随之移动
func (s *Solid) Translate(d Point3D) {
	for i := range s.Vertices {
		s.Vertices[i] = s.Vertices[i].Add(d)
	}
	s.BoundingSphere.Center = s.BoundingSphere.Center.Add(d)
}

// Append 合并另一个实体(用于文字的多个字形)
func (s *Solid) Append(o Solid) {
	base := len(s.Vertices)
	s.Vertices = append(s.Vertices, o.Vertices...)
	for _, t := range o.Triangles {
		s.Triangles = append(s.Triangles, Triangle{t[0] + base, t[1] + base, t[2] + base})
	}
}

// ComputeBoundingSphere 包围盒中心为球心, 到最远顶点的距离为半径
func (s *Solid) ComputeBoundingSphere() {
	if len(s.Vertices) == 0 {
		s.BoundingSphere = Sphere{}
		return
	}
	min, max := s.Vertices[0], s.Vertices[0]
	for _, p := range s.Vertices[1:] {
		min = Point3D{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Point3D{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	center := min.Add(max).Scale(0.5)
	var r2 float64
	for _, p := range s.Vertices {
		d := p.Sub(center)
		r2 = math.Max(r2, d.Dot(d))
	}
	s.BoundingSphere = Sphere{Center: center, Radius: math.Sqrt(r2)}
}
