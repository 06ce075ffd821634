package Transformer

import (
	"math"

	"github.com/paulmach/orb"
)

// Ring 投影后的闭合边界, 首尾点可以重合也可以不重合
type Ring []ProjectedPoint

// Points 转为 orb.Ring
func (r Ring) Points() orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = p.Point()
	}
	return out
}

// GeometryKind 要素几何类型
type GeometryKind int

const (
	KindOther GeometryKind = iota
	KindPolygon
	KindMultiPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Other"
	}
}

// Feature 一个行政区, 解析后只读
type Feature struct {
	Name   string
	Anchor ProjectedPoint // 标注位置
	Rings  []Ring
	Kind   GeometryKind

	// AnchorDerived 为 true 表示数据里没有锚点, 使用了第一个环的质心
	AnchorDerived bool
	// HasAnchor 为 false 时既没有锚点属性也没有可用的环, Anchor 无意义, 不生成文字
	HasAnchor bool
}

// Center 全局中心点
type Center struct {
	X float64
	Y float64
}

// Extent 所有投影点的外包矩形
type Extent struct {
	bound orb.Bound
	count int
}

// NewExtent 空外包
func NewExtent() Extent {
	return Extent{bound: orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}}
}

// Extend 并入一个投影点
func (e *Extent) Extend(p ProjectedPoint) {
	if e.count == 0 {
		e.bound = p.Point().Bound()
	} else {
		e.bound = e.bound.Extend(p.Point())
	}
	e.count++
}

// IsEmpty 没有任何点并入时为 true
func (e Extent) IsEmpty() bool { return e.count == 0 }

// Count 并入的点数
func (e Extent) Count() int { return e.count }

func (e Extent) MinX() float64 { return e.bound.Min[0] }
func (e Extent) MinY() float64 { return e.bound.Min[1] }
func (e Extent) MaxX() float64 { return e.bound.Max[0] }
func (e Extent) MaxY() float64 { return e.bound.Max[1] }

// Center 每个轴取 (min+max)/2
func (e Extent) Center() Center {
	if e.IsEmpty() {
		return Center{}
	}
	c := e.bound.Center()
	return Center{X: c[0], Y: c[1]}
}
