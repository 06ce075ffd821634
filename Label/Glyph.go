package Label

import (
	"math"
	"sort"

	"github.com/golang/freetype/truetype"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// glyphPart 一个外轮廓及其内部的洞, 字体单位, y 轴向上
type glyphPart struct {
	Contour []orb.Point
	Holes   [][]orb.Point
}

// glyphOutline 展平后的字形
type glyphOutline struct {
	Parts   []glyphPart
	Advance float64
}

type ctlPoint struct {
	p  orb.Point
	on bool
}

// buildOutline 把二次贝塞尔轮廓展平为折线, 并按方向和包含关系区分外轮廓与洞
func buildOutline(buf *truetype.GlyphBuf, segments int) *glyphOutline {
	if segments < 1 {
		segments = 1
	}
	var rings [][]orb.Point
	start := 0
	for _, end := range buf.Ends {
		pts := make([]ctlPoint, 0, end-start)
		for _, p := range buf.Points[start:end] {
			pts = append(pts, ctlPoint{
				p:  orb.Point{float64(p.X), float64(p.Y)},
				on: p.Flags&0x01 != 0,
			})
		}
		start = end
		if ring := flattenContour(pts, segments); len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	return &glyphOutline{Parts: groupContours(rings)}
}

// flattenContour 连续两个控制点之间补出隐含的曲线上点, 然后逐段采样
func flattenContour(pts []ctlPoint, segments int) []orb.Point {
	n := len(pts)
	if n == 0 {
		return nil
	}
	expanded := make([]ctlPoint, 0, 2*n)
	for i := 0; i < n; i++ {
		cur, next := pts[i], pts[(i+1)%n]
		expanded = append(expanded, cur)
		if !cur.on && !next.on {
			mid := orb.Point{(cur.p[0] + next.p[0]) / 2, (cur.p[1] + next.p[1]) / 2}
			expanded = append(expanded, ctlPoint{p: mid, on: true})
		}
	}
	first := 0
	for first < len(expanded) && !expanded[first].on {
		first++
	}
	if first == len(expanded) {
		return nil
	}
	e := append(expanded[first:len(expanded):len(expanded)], expanded[:first]...)

	m := len(e)
	out := []orb.Point{e[0].p}
	last := e[0].p
	for i := 1; i <= m; {
		p := e[i%m]
		if p.on {
			if i < m {
				out = append(out, p.p)
			}
			last = p.p
			i++
			continue
		}
		end := e[(i+1)%m].p
		for k := 1; k <= segments; k++ {
			if i+1 == m && k == segments {
				break
			}
			t := float64(k) / float64(segments)
			out = append(out, quad(last, p.p, end, t))
		}
		last = end
		i += 2
	}
	return out
}

func quad(p0, p1, p2 orb.Point, t float64) orb.Point {
	u := 1 - t
	return orb.Point{
		u*u*p0[0] + 2*u*t*p1[0] + t*t*p2[0],
		u*u*p0[1] + 2*u*t*p1[1] + t*t*p2[1],
	}
}

func ringArea(r []orb.Point) float64 {
	var sum float64
	for i := range r {
		a, b := r[i], r[(i+1)%len(r)]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// groupContours 面积最大的轮廓方向视为外轮廓方向, 反向的轮廓归入包含它的最小外轮廓
func groupContours(rings [][]orb.Point) []glyphPart {
	if len(rings) == 0 {
		return nil
	}
	areas := make([]float64, len(rings))
	largest := 0
	for i, r := range rings {
		areas[i] = ringArea(r)
		if math.Abs(areas[i]) > math.Abs(areas[largest]) {
			largest = i
		}
	}
	outerSign := math.Signbit(areas[largest])

	var outers, holes []int
	for i := range rings {
		if areas[i] == 0 {
			continue
		}
		if math.Signbit(areas[i]) == outerSign {
			outers = append(outers, i)
		} else {
			holes = append(holes, i)
		}
	}
	sort.SliceStable(outers, func(a, b int) bool {
		return math.Abs(areas[outers[a]]) < math.Abs(areas[outers[b]])
	})

	parts := make([]glyphPart, len(outers))
	for k, i := range outers {
		parts[k].Contour = rings[i]
	}
	for _, h := range holes {
		owner := -1
		for k, i := range outers {
			if planar.RingContains(orb.Ring(rings[i]), rings[h][0]) {
				owner = k
				break
			}
		}
		if owner < 0 {
			// 找不到所属外轮廓时当作独立的实心轮廓
			parts = append(parts, glyphPart{Contour: rings[h]})
			continue
		}
		parts[owner].Holes = append(parts[owner].Holes, rings[h])
	}
	return parts
}
