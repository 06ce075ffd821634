package Mesh

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

const epsilon = 1e-14

// cross2 (b-a)x(c-b) 的 z 分量, 大于 0 表示 a,b,c 逆时针
func cross2(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-b[1]) - (b[1]-a[1])*(c[0]-b[0])
}

// signedArea 鞋带公式, 逆时针为正
func signedArea(ring []orb.Point) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		sum += p1[0]*p2[1] - p2[0]*p1[1]
	}
	return sum / 2
}

// pointInTriangle 重心坐标判断点是否在三角形内(含边界)
func pointInTriangle(p, a, b, c orb.Point) bool {
	denominator := (b[1]-c[1])*(a[0]-c[0]) + (c[0]-b[0])*(a[1]-c[1])
	if math.Abs(denominator) < epsilon {
		return false
	}
	l1 := ((b[1]-c[1])*(p[0]-c[0]) + (c[0]-b[0])*(p[1]-c[1])) / denominator
	l2 := ((c[1]-a[1])*(p[0]-c[0]) + (a[0]-c[0])*(p[1]-c[1])) / denominator
	l3 := 1 - l1 - l2
	return l1 >= 0 && l2 >= 0 && l3 >= 0
}

// segmentsCross 两条线段是否在内部相交, 端点接触不算
func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross2(q1, q2, p1)
	d2 := cross2(q1, q2, p2)
	d3 := cross2(p1, p2, q1)
	d4 := cross2(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

type node struct {
	idx int
	p   orb.Point
}

// Triangulate 耳切法三角化
// contour 需为逆时针, holes 需为顺时针; 返回的索引指向 contour 与各个 hole 依次拼接后的点序列
// 自相交等无法找到耳朵的情况下会强制切除, 保证结束
func Triangulate(contour []orb.Point, holes [][]orb.Point) []Triangle {
	if len(contour) < 3 {
		return nil
	}
	poly := make([]node, len(contour))
	for i, p := range contour {
		poly[i] = node{idx: i, p: p}
	}
	offset := len(contour)
	var holeNodes [][]node
	for _, h := range holes {
		hn := make([]node, len(h))
		for i, p := range h {
			hn[i] = node{idx: offset + i, p: p}
		}
		offset += len(h)
		if len(hn) >= 3 {
			holeNodes = append(holeNodes, hn)
		}
	}
	poly = eliminateHoles(poly, holeNodes)
	return earcut(poly)
}

// eliminateHoles 从洞的最右点向外环连一条不相交的桥, 把洞并入外环
func eliminateHoles(poly []node, holes [][]node) []node {
	sort.SliceStable(holes, func(i, j int) bool {
		return maxX(holes[i]) > maxX(holes[j])
	})
	for hi, hole := range holes {
		m := 0
		for i, n := range hole {
			if n.p[0] > hole[m].p[0] {
				m = i
			}
		}
		mp := hole[m].p

		bridge := -1
		best := math.Inf(1)
		for j, cand := range poly {
			d := math.Hypot(cand.p[0]-mp[0], cand.p[1]-mp[1])
			if d >= best {
				continue
			}
			if bridgeBlocked(mp, cand.p, poly) || bridgeBlocked(mp, cand.p, hole) {
				continue
			}
			blocked := false
			for _, other := range holes[hi+1:] {
				if bridgeBlocked(mp, cand.p, other) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			best = d
			bridge = j
		}
		if bridge < 0 {
			bridge = nearest(poly, mp)
		}

		merged := make([]node, 0, len(poly)+len(hole)+2)
		merged = append(merged, poly[:bridge+1]...)
		for k := 0; k < len(hole); k++ {
			merged = append(merged, hole[(m+k)%len(hole)])
		}
		merged = append(merged, hole[m], poly[bridge])
		merged = append(merged, poly[bridge+1:]...)
		poly = merged
	}
	return poly
}

func bridgeBlocked(a, b orb.Point, ring []node) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		q1, q2 := ring[i].p, ring[(i+1)%n].p
		if segmentsCross(a, b, q1, q2) {
			return true
		}
	}
	return false
}

func nearest(poly []node, p orb.Point) int {
	best, idx := math.Inf(1), 0
	for i, n := range poly {
		if d := math.Hypot(n.p[0]-p[0], n.p[1]-p[1]); d < best {
			best, idx = d, i
		}
	}
	return idx
}

func maxX(ring []node) float64 {
	m := math.Inf(-1)
	for _, n := range ring {
		m = math.Max(m, n.p[0])
	}
	return m
}

// earcut 在双向链表上逐个切耳
func earcut(poly []node) []Triangle {
	n := len(poly)
	if n < 3 {
		return nil
	}
	prev := make([]int, n)
	next := make([]int, n)
	for i := range poly {
		prev[i] = (i + n - 1) % n
		next[i] = (i + 1) % n
	}
	remove := func(i int) {
		next[prev[i]] = next[i]
		prev[next[i]] = prev[i]
	}

	tris := make([]Triangle, 0, n-2)
	emit := func(a, b, c int) {
		if math.Abs(cross2(poly[a].p, poly[b].p, poly[c].p)) <= epsilon {
			return
		}
		tris = append(tris, Triangle{poly[a].idx, poly[b].idx, poly[c].idx})
	}

	remaining := n
	cur := 0
	stall := 0
	for remaining > 3 {
		a, b, c := prev[cur], cur, next[cur]
		cr := cross2(poly[a].p, poly[b].p, poly[c].p)

		switch {
		case math.Abs(cr) <= epsilon:
			// 共线或重合点直接去掉
			remove(b)
			remaining--
			cur = a
			stall = 0
		case cr > 0 && !containsOther(poly, next, a, b, c):
			emit(a, b, c)
			remove(b)
			remaining--
			cur = c
			stall = 0
		default:
			cur = c
			stall++
			if stall > remaining {
				// 自相交环: 找不到合法的耳朵, 强制切除当前顶点
				if cr > 0 {
					emit(a, b, c)
				}
				remove(b)
				remaining--
				cur = c
				stall = 0
			}
		}
	}
	if remaining == 3 {
		a := cur
		emit(prev[a], a, next[a])
	}
	return tris
}

// containsOther 是否有其他顶点落在三角形 abc 内
func containsOther(poly []node, next []int, a, b, c int) bool {
	pa, pb, pc := poly[a].p, poly[b].p, poly[c].p
	for i := next[c]; i != a; i = next[i] {
		p := poly[i].p
		if p.Equal(pa) || p.Equal(pb) || p.Equal(pc) {
			continue
		}
		if pointInTriangle(p, pa, pb, pc) {
			return true
		}
	}
	return false
}
