package Mesh

import "math"

type edgeKey struct {
	a, b int
}

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

type edgeInfo struct {
	normal Point3D
	faces  int
	emit   bool
}

// Edges 提取特征边: 相邻两面法向夹角超过 thresholdDeg 的边, 以及只属于一个面的边界边
// 面积为 0 的三角形不参与; 输出顺序按边第一次出现的顺序
func Edges(solid *Solid, thresholdDeg float64) Outline {
	if solid == nil || solid.IsEmpty() {
		return Outline{}
	}
	if thresholdDeg <= 0 {
		thresholdDeg = 1
	}
	cosThreshold := math.Cos(thresholdDeg * math.Pi / 180)

	edges := make(map[edgeKey]*edgeInfo)
	order := make([]edgeKey, 0, len(solid.Triangles)*3/2)

	for _, t := range solid.Triangles {
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			continue
		}
		normal := solid.Normal(t)
		if normal.Length() == 0 {
			continue
		}
		for i := 0; i < 3; i++ {
			key := newEdgeKey(t[i], t[(i+1)%3])
			info, ok := edges[key]
			if !ok {
				edges[key] = &edgeInfo{normal: normal, faces: 1}
				order = append(order, key)
				continue
			}
			info.faces++
			if info.normal.Dot(normal) <= cosThreshold {
				info.emit = true
			}
		}
	}

	var out Outline
	for _, key := range order {
		info := edges[key]
		if info.faces == 1 || info.emit {
			out.Segments = append(out.Segments, Edge{P1: solid.Vertices[key.a], P2: solid.Vertices[key.b]})
		}
	}
	return out
}
