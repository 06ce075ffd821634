package Label

import (
	"context"
	"testing"

	"github.com/GrainArc/GeoMesh/Mesh"
	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultFont(t *testing.T) *Font {
	t.Helper()
	f, err := DefaultFont()
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestDefaultFont(t *testing.T) {
	f := defaultFont(t)
	assert.Greater(t, f.UnitsPerEm(), 0.0)
	assert.True(t, f.HasGlyph('A'))
	assert.False(t, f.HasGlyph('北'))
	assert.Greater(t, f.Advance('A'), 0.0)
	assert.NotEmpty(t, f.Name())
}

func TestParseFontInvalid(t *testing.T) {
	_, err := ParseFont([]byte("not a font"))
	assert.Error(t, err)
}

func TestGlyphHoles(t *testing.T) {
	f := defaultFont(t)
	g, err := f.outline('o', 4)
	require.NoError(t, err)
	require.Len(t, g.Parts, 1)
	assert.Len(t, g.Parts[0].Holes, 1)

	g, err = f.outline('i', 4)
	require.NoError(t, err)
	assert.Len(t, g.Parts, 2)

	_, err = f.outline('北', 4)
	assert.ErrorIs(t, err, ErrNoGlyph)
}

func TestFlattenContour(t *testing.T) {
	curve := []ctlPoint{
		{p: orb.Point{0, 0}, on: true},
		{p: orb.Point{1, 1}},
		{p: orb.Point{2, 0}, on: true},
	}
	assert.Equal(t, []orb.Point{{0, 0}, {1, 0.5}, {2, 0}}, flattenContour(curve, 2))

	allOff := []ctlPoint{
		{p: orb.Point{0, 0}},
		{p: orb.Point{2, 0}},
		{p: orb.Point{2, 2}},
		{p: orb.Point{0, 2}},
	}
	assert.Equal(t, []orb.Point{{1, 0}, {2, 1}, {1, 2}, {0, 1}}, flattenContour(allOff, 1))

	assert.Nil(t, flattenContour(nil, 4))
}

func TestGroupContours(t *testing.T) {
	outer := []orb.Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}} // 顺时针
	hole := []orb.Point{{2, 2}, {8, 2}, {8, 8}, {2, 8}}
	dot := []orb.Point{{20, 0}, {20, 1}, {21, 1}, {21, 0}}
	parts := groupContours([][]orb.Point{hole, outer, dot})
	require.Len(t, parts, 2)
	assert.Equal(t, dot, parts[0].Contour)
	assert.Equal(t, outer, parts[1].Contour)
	assert.Equal(t, [][]orb.Point{hole}, parts[1].Holes)
}

func TestPlace(t *testing.T) {
	f := defaultFont(t)
	p := NewPlacer(f, DefaultOptions())
	anchor := Transformer.ProjectLonLat(0.5, 0.5)
	n := Mesh.NewNormalizer(Transformer.Center{X: anchor.X() - 100, Y: anchor.Y() + 200}, 10000)

	text, err := p.Place("A", anchor, n)
	require.NoError(t, err)
	assert.Equal(t, "A", text.Content)
	assert.InDelta(t, 0.01, text.Position.X, 1e-9)
	assert.InDelta(t, -0.02, text.Position.Y, 1e-9)
	assert.Equal(t, 10.0, text.Position.Z)
	assert.InDelta(t, f.Advance('A')*5/f.UnitsPerEm(), text.Width, 1e-9)

	require.False(t, text.Solid.IsEmpty())
	assert.Greater(t, text.Solid.Volume(), 0.0)
	for _, v := range text.Solid.Vertices {
		assert.True(t, v.Z == 0 || v.Z == 1)
		assert.LessOrEqual(t, v.Y, 5.0)
	}
}

func TestPlaceTransliterates(t *testing.T) {
	f := defaultFont(t)
	p := NewPlacer(f, DefaultOptions())
	text, err := p.Place("北京", Transformer.ProjectLonLat(116, 40), Mesh.Normalizer{Scale: 10000})
	require.NoError(t, err)
	assert.Equal(t, "Bei Jing", text.Content)
	assert.Empty(t, text.Missing)

	opts := DefaultOptions()
	opts.Transliterate = false
	_, err = NewPlacer(f, opts).Place("北京", Transformer.ProjectLonLat(116, 40), Mesh.Normalizer{Scale: 10000})
	assert.ErrorIs(t, err, ErrEmptyLabel)

	_, err = p.Place("  ", Transformer.ProjectLonLat(0, 0), Mesh.Normalizer{Scale: 1})
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestShapeAdvances(t *testing.T) {
	f := defaultFont(t)
	p := NewPlacer(f, DefaultOptions())
	one, w1, _ := p.Shape("H")
	two, w2, _ := p.Shape("H H")
	assert.Greater(t, w2, 2*w1)
	assert.Equal(t, 2*one.VertexCount(), two.VertexCount())
}

func TestChineseToPinyin(t *testing.T) {
	assert.Equal(t, "Bei Jing Shi", chineseToPinyin("北京市"))
	assert.Equal(t, "A Qu", chineseToPinyin("A区"))
	assert.Equal(t, "abc", chineseToPinyin("abc"))
	assert.True(t, hasHan("新疆"))
	assert.False(t, hasHan("Texas"))
}

func TestLoadFont(t *testing.T) {
	f, err := LoadFont(context.Background(), "").Await(context.Background())
	require.NoError(t, err)
	assert.True(t, f.HasGlyph('A'))

	_, err = LoadFont(context.Background(), "/nonexistent/font.ttf").Await(context.Background())
	assert.Error(t, err)

	_, err = LoadFontBytes(context.Background(), []byte{1, 2, 3}).Await(context.Background())
	assert.Error(t, err)
}
