package Mesh

import (
	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/paulmach/orb"
)

// Normalizer 先减中心再除以比例, 所有环和标注锚点共用同一个
type Normalizer struct {
	CenterX float64
	CenterY float64
	Scale   float64
}

func NewNormalizer(c Transformer.Center, scale float64) Normalizer {
	return Normalizer{CenterX: c.X, CenterY: c.Y, Scale: scale}
}

func (n Normalizer) scale() float64 {
	if n.Scale == 0 {
		return 1
	}
	return n.Scale
}

// Apply 投影坐标转渲染坐标
func (n Normalizer) Apply(p Transformer.ProjectedPoint) orb.Point {
	s := n.scale()
	return orb.Point{(p.X() - n.CenterX) / s, (p.Y() - n.CenterY) / s}
}

// Ring 逐点转换
func (n Normalizer) Ring(r Transformer.Ring) []orb.Point {
	out := make([]orb.Point, len(r))
	for i, p := range r {
		out[i] = n.Apply(p)
	}
	return out
}
