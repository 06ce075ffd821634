package Mesh

import (
	"math"
	"strings"
	"testing"

	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(side float64) []orb.Point {
	return []orb.Point{{0, 0}, {side, 0}, {side, side}, {0, side}, {0, 0}}
}

// assertWatertight 每条有向边恰好出现一次, 且反向边也存在
func assertWatertight(t *testing.T, s Solid) {
	t.Helper()
	directed := make(map[[2]int]int)
	for _, tri := range s.Triangles {
		for i := 0; i < 3; i++ {
			directed[[2]int{tri[i], tri[(i+1)%3]}]++
		}
	}
	for e, n := range directed {
		assert.Equal(t, 1, n, "edge %v used %d times", e, n)
		assert.Equal(t, 1, directed[[2]int{e[1], e[0]}], "edge %v has no twin", e)
	}
}

func TestExtrudeSquare(t *testing.T) {
	s := Extrude(square(2), nil, 3)
	require.False(t, s.IsEmpty())
	assert.Equal(t, 8, s.VertexCount())
	assert.Equal(t, 12, s.TriangleCount())
	assert.InDelta(t, 12.0, s.Volume(), 1e-9)
	assert.InDelta(t, 2*4+4*6, s.Area(), 1e-9)
	assertWatertight(t, s)

	for _, v := range s.Vertices {
		assert.True(t, v.Z == 0 || v.Z == 3)
	}
	assert.InDelta(t, 1.0, s.BoundingSphere.Center.X, 1e-9)
	assert.InDelta(t, 1.5, s.BoundingSphere.Center.Z, 1e-9)
	assert.InDelta(t, math.Sqrt(1+1+2.25), s.BoundingSphere.Radius, 1e-9)
}

func TestExtrudeClockwiseInput(t *testing.T) {
	ring := []orb.Point{{0, 0}, {0, 5}, {5, 5}, {5, 0}}
	s := Extrude(ring, nil, 2)
	assert.InDelta(t, 50.0, s.Volume(), 1e-9)
	assertWatertight(t, s)
}

func TestExtrudeConcave(t *testing.T) {
	ring := []orb.Point{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}}
	tris := Triangulate(ring, nil)
	assert.Len(t, tris, len(ring)-2)

	s := Extrude(ring, nil, 1)
	assert.InDelta(t, 7.0, s.Volume(), 1e-9)
	assertWatertight(t, s)

	var top float64
	for _, tri := range s.Triangles {
		if s.Vertices[tri[0]].Z == 1 && s.Vertices[tri[1]].Z == 1 && s.Vertices[tri[2]].Z == 1 {
			top += s.TriangleArea(tri)
			assert.Greater(t, s.Normal(tri).Z, 0.99)
		}
	}
	assert.InDelta(t, 7.0, top, 1e-9)
}

func TestExtrudeWithHole(t *testing.T) {
	outer := []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	hole := []orb.Point{{3, 3}, {3, 7}, {7, 7}, {7, 3}}
	s := Extrude(outer, [][]orb.Point{hole}, 1)
	require.False(t, s.IsEmpty())
	assert.Equal(t, 16, s.VertexCount())
	assert.InDelta(t, 84.0, s.Volume(), 1e-9)
	assertWatertight(t, s)
}

func TestExtrudeDegenerate(t *testing.T) {
	cases := map[string][]orb.Point{
		"empty":     nil,
		"two":       {{0, 0}, {1, 1}},
		"duplicate": {{1, 1}, {1, 1}, {1, 1}, {1, 1}},
		"collinear": {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	}
	for name, ring := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				s, o := Build(ring, DefaultOptions())
				assert.True(t, s.IsEmpty())
				assert.True(t, o.IsEmpty())
			})
		})
	}
}

func TestExtrudeSelfIntersecting(t *testing.T) {
	bowtie := []orb.Point{{0, 0}, {4, 4}, {4, 0}, {0, 4}}
	assert.NotPanics(t, func() {
		Extrude(bowtie, nil, 1)
	})
}

func TestCleanRingDropsCollinear(t *testing.T) {
	ring := []orb.Point{{0, 0}, {1, 0}, {2, 0}, {2, 2}, {2, 2}, {0, 2}, {0, 0}}
	assert.Len(t, cleanRing(ring), 4)
}

func TestEdgesBox(t *testing.T) {
	s, o := Build(square(1), Options{Depth: 1, EdgeThreshold: 1})
	require.False(t, s.IsEmpty())
	assert.Len(t, o.Segments, 12)

	again := Edges(&s, 1)
	assert.Equal(t, o.Segments, again.Segments)
}

func TestEdgesOpenSurface(t *testing.T) {
	s := Solid{
		Vertices:  []Point3D{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Triangles: []Triangle{{0, 1, 2}, {0, 2, 3}},
	}
	o := Edges(&s, 1)
	assert.Len(t, o.Segments, 4)

	empty := Edges(&Solid{}, 1)
	assert.True(t, empty.IsEmpty())
}

func TestBuildRingNormalizes(t *testing.T) {
	ring := Transformer.Ring{
		Transformer.ProjectLonLat(0, 0),
		Transformer.ProjectLonLat(1, 0),
		Transformer.ProjectLonLat(1, 1),
		Transformer.ProjectLonLat(0, 1),
	}
	c := Transformer.Center{X: ring[2].X() / 2, Y: ring[2].Y() / 2}
	n := NewNormalizer(c, 10000)
	s, o := BuildRing(ring, n, Options{Depth: 10, EdgeThreshold: 1})
	require.False(t, s.IsEmpty())
	assert.Len(t, o.Segments, 12)
	assert.InDelta(t, 0, s.BoundingSphere.Center.X, 1e-9)
	assert.InDelta(t, 0, s.BoundingSphere.Center.Y, 1e-9)
	assert.InDelta(t, 5, s.BoundingSphere.Center.Z, 1e-9)
}

func TestNormalizerZeroScale(t *testing.T) {
	n := Normalizer{CenterX: 1, CenterY: 1}
	p := n.Apply(Transformer.ProjectLonLat(0, 0))
	assert.Equal(t, orb.Point{-1, -1}, p)
}

func TestSolidTranslateAndAppend(t *testing.T) {
	a := Extrude(square(1), nil, 1)
	b := Extrude(square(1), nil, 1)
	b.Translate(Point3D{X: 5})
	a.Append(b)
	assert.Equal(t, 16, a.VertexCount())
	assert.Equal(t, 24, a.TriangleCount())
	assert.InDelta(t, 2.0, a.Volume(), 1e-9)
	assertWatertight(t, a)
}

func TestLoadOBJ(t *testing.T) {
	src := `# quad pyramid
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0.5 0.5 1
vn 0 0 1
f 4//1 3//1 2//1 1//1
f 1/1 2/1 5/1
f 2 3 5
f -3 -2 -1
f 4 1 5
`
	s, err := LoadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 5, s.VertexCount())
	assert.Equal(t, 6, s.TriangleCount())
	assert.Equal(t, Triangle{2, 3, 4}, s.Triangles[4])
	assert.InDelta(t, 1.0/3.0, s.Volume(), 1e-9)
	assertWatertight(t, s)
}

func TestLoadOBJErrors(t *testing.T) {
	_, err := LoadOBJ(strings.NewReader("v 0 0\n"))
	assert.Error(t, err)
	_, err = LoadOBJ(strings.NewReader("v 0 0 0\nf 1 2 3\n"))
	assert.Error(t, err)
}
