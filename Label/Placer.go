package Label

import (
	"errors"
	"strings"
	"unicode"

	"github.com/GrainArc/GeoMesh/Mesh"
	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyLabel 名称为空或没有任何可渲染字符
var ErrEmptyLabel = errors.New("label has no renderable glyphs")

// Options 文字参数, 单位与区块渲染坐标一致
type Options struct {
	Size          float64 // 字高(em)
	Depth         float64 // 拉伸厚度
	CurveSegments int     // 每段曲线的采样数
	Elevation     float64 // 文字底面所在高度, 需高于区块顶面
	Transliterate bool    // 字体缺少汉字时改用拼音
}

// DefaultOptions 与区块默认参数配套
func DefaultOptions() Options {
	return Options{Size: 5, Depth: 1, CurveSegments: 4, Elevation: 10, Transliterate: true}
}

// Text 三维文字, Solid 为局部坐标, 原点在基线起点
type Text struct {
	Content  string       `json:"content"`
	Solid    Mesh.Solid   `json:"solid"`
	Position Mesh.Point3D `json:"position"`
	Width    float64      `json:"width"`
	Missing  []rune       `json:"-"`
}

// Placer 用同一个字体为所有要素生成文字
type Placer struct {
	Font    *Font
	Options Options
}

func NewPlacer(f *Font, opts Options) *Placer {
	return &Placer{Font: f, Options: opts}
}

// Place 锚点按区块同样的方式归一化, 文字原点放在 (x, y, Elevation)
func (p *Placer) Place(name string, anchor Transformer.ProjectedPoint, n Mesh.Normalizer) (*Text, error) {
	content := p.content(name)
	solid, width, missing := p.Shape(content)
	if solid.IsEmpty() {
		return nil, ErrEmptyLabel
	}
	if len(missing) > 0 {
		log.WithFields(log.Fields{"label": content, "missing": string(missing)}).Warn("font lacks glyphs")
	}
	pos := n.Apply(anchor)
	return &Text{
		Content:  content,
		Solid:    solid,
		Position: Mesh.Point3D{X: pos[0], Y: pos[1], Z: p.Options.Elevation},
		Width:    width,
		Missing:  missing,
	}, nil
}

// content 字体不能显示的汉字名称转为拼音
func (p *Placer) content(name string) string {
	name = strings.TrimSpace(name)
	if !p.Options.Transliterate || !hasHan(name) {
		return name
	}
	for _, r := range name {
		if unicode.Is(unicode.Han, r) && !p.Font.HasGlyph(r) {
			return chineseToPinyin(name)
		}
	}
	return name
}

// Shape 逐字排版并拉伸, 返回实体、总宽度以及缺失的字符
func (p *Placer) Shape(text string) (Mesh.Solid, float64, []rune) {
	var (
		solid   Mesh.Solid
		missing []rune
		pen     float64
		prev    rune = -1
	)
	k := p.Options.Size / p.Font.UnitsPerEm()
	for _, r := range text {
		if prev >= 0 {
			pen += p.Font.Kern(prev, r) * k
		}
		prev = r
		if unicode.IsSpace(r) {
			pen += p.Font.Advance(r) * k
			continue
		}
		g, err := p.Font.outline(r, p.Options.CurveSegments)
		if err != nil {
			missing = append(missing, r)
			pen += p.Font.Advance(r) * k
			continue
		}
		for _, part := range g.Parts {
			holes := make([][]orb.Point, len(part.Holes))
			for i, h := range part.Holes {
				holes[i] = scaleRing(h, k, pen)
			}
			glyph := Mesh.Extrude(scaleRing(part.Contour, k, pen), holes, p.Options.Depth)
			solid.Append(glyph)
		}
		pen += g.Advance * k
	}
	solid.ComputeBoundingSphere()
	return solid, pen, missing
}

func scaleRing(r []orb.Point, k, dx float64) []orb.Point {
	out := make([]orb.Point, len(r))
	for i, pt := range r {
		out[i] = orb.Point{pt[0]*k + dx, pt[1] * k}
	}
	return out
}
