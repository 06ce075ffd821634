package Label

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ErrNoGlyph 字体中没有该字符
var ErrNoGlyph = errors.New("glyph not found in font")

// DefaultFontBytes 未配置字体文件时使用的内置字体
var DefaultFontBytes = goregular.TTF

// Font TrueType 字体, 字形轮廓按字形索引缓存
type Font struct {
	ttf        *truetype.Font
	unitsPerEm float64
	scale      fixed.Int26_6
	glyphs     *ristretto.Cache[int, *glyphOutline]
}

// ParseFont 解析 TTF 数据
func ParseFont(data []byte) (*Font, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	cache, err := ristretto.NewCache(&ristretto.Config[int, *glyphOutline]{
		NumCounters: 1 << 14,
		MaxCost:     1 << 12,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph cache: %w", err)
	}
	upem := ttf.FUnitsPerEm()
	return &Font{
		ttf:        ttf,
		unitsPerEm: float64(upem),
		// 以 unitsPerEm 作为缩放, 加载出的点坐标就是字体单位
		scale:  fixed.Int26_6(upem),
		glyphs: cache,
	}, nil
}

// DefaultFont 内置字体
func DefaultFont() (*Font, error) {
	return ParseFont(DefaultFontBytes)
}

// Name 字体全名
func (f *Font) Name() string {
	return f.ttf.Name(truetype.NameIDFontFullName)
}

// UnitsPerEm 每 em 的字体单位数
func (f *Font) UnitsPerEm() float64 { return f.unitsPerEm }

// HasGlyph 字体是否包含该字符
func (f *Font) HasGlyph(r rune) bool {
	return f.ttf.Index(r) != 0
}

// Advance 字符前进宽度(字体单位)
func (f *Font) Advance(r rune) float64 {
	return float64(f.ttf.HMetric(f.scale, f.ttf.Index(r)).AdvanceWidth)
}

// Kern 两个字符之间的字距调整(字体单位)
func (f *Font) Kern(a, b rune) float64 {
	return float64(f.ttf.Kern(f.scale, f.ttf.Index(a), f.ttf.Index(b)))
}

// Close 释放字形缓存
func (f *Font) Close() {
	f.glyphs.Close()
}

// outline 读取字形轮廓, 命中缓存时直接返回
func (f *Font) outline(r rune, segments int) (*glyphOutline, error) {
	idx := f.ttf.Index(r)
	if idx == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoGlyph, r)
	}
	key := int(idx)<<8 | segments&0xff
	if g, ok := f.glyphs.Get(key); ok {
		return g, nil
	}

	var buf truetype.GlyphBuf
	if err := buf.Load(f.ttf, f.scale, idx, font.HintingNone); err != nil {
		return nil, fmt.Errorf("load glyph %q: %w", r, err)
	}
	g := buildOutline(&buf, segments)
	g.Advance = float64(f.ttf.HMetric(f.scale, idx).AdvanceWidth)
	f.glyphs.Set(key, g, 1)
	return g, nil
}
