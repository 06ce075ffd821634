package Mesh

import (
	"math"

	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/paulmach/orb"
)

// Options 拉伸参数
type Options struct {
	Depth         float64 // 拉伸高度, 渲染单位
	EdgeThreshold float64 // 边线角度阈值(度)
}

// DefaultOptions 行政区块默认参数
func DefaultOptions() Options {
	return Options{Depth: 10, EdgeThreshold: 1}
}

// cleanRing 去掉闭合点、重复点和共线点
// 剩余少于 3 个点或面积为 0 时返回 nil
func cleanRing(ring []orb.Point) []orb.Point {
	pts := make([]orb.Point, 0, len(ring))
	for _, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			continue
		}
		if len(pts) > 0 && pts[len(pts)-1].Equal(p) {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && pts[0].Equal(pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}

	for changed := true; changed && len(pts) >= 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) >= 3; i++ {
			a := pts[(i+len(pts)-1)%len(pts)]
			b := pts[i]
			c := pts[(i+1)%len(pts)]
			if math.Abs(cross2(a, b, c)) <= epsilon {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				i--
			}
		}
	}
	if len(pts) < 3 || math.Abs(signedArea(pts)) <= epsilon {
		return nil
	}
	return pts
}

// orient 按需反转环的方向, ccw 为 true 时输出逆时针
func orient(ring []orb.Point, ccw bool) []orb.Point {
	if (signedArea(ring) > 0) == ccw {
		return ring
	}
	out := make([]orb.Point, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// Extrude 平面多边形沿 z 轴拉伸成封闭实体, 不做倒角
// 底面 z=0 朝下, 顶面 z=depth 朝上, 顶点共享, 输出是水密的
// 环退化时返回空实体
func Extrude(contour []orb.Point, holes [][]orb.Point, depth float64) Solid {
	outer := cleanRing(contour)
	if outer == nil {
		return Solid{}
	}
	outer = orient(outer, true)

	loops := [][]orb.Point{outer}
	var inner [][]orb.Point
	for _, h := range holes {
		h = cleanRing(h)
		if h == nil {
			continue
		}
		h = orient(h, false)
		inner = append(inner, h)
		loops = append(loops, h)
	}

	caps := Triangulate(outer, inner)
	if len(caps) == 0 {
		return Solid{}
	}

	n := 0
	for _, l := range loops {
		n += len(l)
	}
	solid := Solid{
		Vertices:  make([]Point3D, 0, 2*n),
		Triangles: make([]Triangle, 0, 2*len(caps)+2*n),
	}
	for _, l := range loops {
		for _, p := range l {
			solid.Vertices = append(solid.Vertices, Point3D{X: p[0], Y: p[1], Z: 0})
		}
	}
	for _, l := range loops {
		for _, p := range l {
			solid.Vertices = append(solid.Vertices, Point3D{X: p[0], Y: p[1], Z: depth})
		}
	}

	for _, t := range caps {
		solid.Triangles = append(solid.Triangles, Triangle{t[0], t[2], t[1]})
	}
	for _, t := range caps {
		solid.Triangles = append(solid.Triangles, Triangle{n + t[0], n + t[1], n + t[2]})
	}

	offset := 0
	for _, l := range loops {
		m := len(l)
		for i := 0; i < m; i++ {
			a := offset + i
			b := offset + (i+1)%m
			solid.Triangles = append(solid.Triangles,
				Triangle{a, b, n + b},
				Triangle{a, n + b, n + a},
			)
		}
		offset += m
	}

	solid.ComputeBoundingSphere()
	return solid
}

// Build 已归一化的单个环生成实体和边线
func Build(ring []orb.Point, opts Options) (Solid, Outline) {
	solid := Extrude(ring, nil, opts.Depth)
	if solid.IsEmpty() {
		return solid, Outline{}
	}
	return solid, Edges(&solid, opts.EdgeThreshold)
}

// BuildRing 投影环先经过 Normalizer 再生成
func BuildRing(ring Transformer.Ring, n Normalizer, opts Options) (Solid, Outline) {
	return Build(n.Ring(ring), opts)
}
