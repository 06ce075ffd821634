package Transformer

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var (
	ErrEmptyDataset      = errors.New("dataset has no features")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrDecode            = errors.New("decode dataset")
)

// ParseOptions 属性字段名
type ParseOptions struct {
	NameKey   string // 默认 name
	AnchorKey string // 默认 cp
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.NameKey == "" {
		o.NameKey = "name"
	}
	if o.AnchorKey == "" {
		o.AnchorKey = "cp"
	}
	return o
}

// SkippedFeature 几何类型不是 Polygon/MultiPolygon 被跳过的要素
type SkippedFeature struct {
	Index int
	Name  string
	Type  string
}

// ParseResult 解析结果
type ParseResult struct {
	Features []Feature
	Extent   Extent
	Skipped  []SkippedFeature
}

// Center 由完整的 Extent 计算, 必须在所有要素解析完成后调用
func (r *ParseResult) Center() Center {
	return r.Extent.Center()
}

// RingCount 所有要素的环数量
func (r *ParseResult) RingCount() int {
	n := 0
	for _, f := range r.Features {
		n += len(f.Rings)
	}
	return n
}

// ParseGeoJSON 解析 GeoJSON FeatureCollection 字节流
// 非 UTF-8 (GBK/GB18030) 的输入先转码
func ParseGeoJSON(data []byte, opts ParseOptions) (*ParseResult, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(text)
	if err != nil {
		return nil, fmt.Errorf("%w: feature collection: %w", ErrDecode, err)
	}
	return ParseFeatureCollection(fc, opts)
}

// ParseFeatureCollection 遍历要素, 投影每个坐标并累计外包
// 输出顺序与输入一致
func ParseFeatureCollection(fc *geojson.FeatureCollection, opts ParseOptions) (*ParseResult, error) {
	if fc == nil {
		return nil, ErrEmptyDataset
	}
	opts = opts.withDefaults()
	res := &ParseResult{Extent: NewExtent()}

	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		name := propertyString(f.Properties, opts.NameKey)
		kind, polygons := classify(f.Geometry)

		var lonlatRings []orb.Ring
		switch kind {
		case KindPolygon:
			// Polygon 的每个环都生成一个实体
			lonlatRings = append(lonlatRings, polygons[0]...)
		case KindMultiPolygon:
			// MultiPolygon 每个子面只取第一个环
			for _, poly := range polygons {
				if len(poly) > 0 {
					lonlatRings = append(lonlatRings, poly[0])
				}
			}
		case KindOther:
			res.Skipped = append(res.Skipped, SkippedFeature{Index: i, Name: name, Type: geometryType(f.Geometry)})
			continue
		}

		feature := Feature{Name: name, Kind: kind}
		for _, lr := range lonlatRings {
			ring := make(Ring, 0, len(lr))
			for _, pt := range lr {
				p := ProjectLonLat(pt[0], pt[1])
				res.Extent.Extend(p)
				ring = append(ring, p)
			}
			feature.Rings = append(feature.Rings, ring)
		}

		anchor, ok := anchorOf(f.Properties, opts.AnchorKey)
		if !ok {
			anchor, ok = ringCentroid(lonlatRings)
			feature.AnchorDerived = true
		}
		if ok {
			feature.Anchor = Project(anchor)
			feature.HasAnchor = true
			res.Extent.Extend(feature.Anchor)
		}
		res.Features = append(res.Features, feature)
	}
	return res, nil
}

// classify 把 orb 几何归为三类, 返回统一的多面结构
func classify(g orb.Geometry) (GeometryKind, []orb.Polygon) {
	switch geom := g.(type) {
	case orb.Polygon:
		return KindPolygon, []orb.Polygon{geom}
	case orb.MultiPolygon:
		return KindMultiPolygon, []orb.Polygon(geom)
	default:
		return KindOther, nil
	}
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}

// propertyString 属性转字符串, 数字名称也接受
func propertyString(props geojson.Properties, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// anchorOf 读取 [lon, lat] 形式的锚点属性
func anchorOf(props geojson.Properties, key string) (GeoPoint, bool) {
	raw, ok := props[key]
	if !ok {
		return GeoPoint{}, false
	}
	switch v := raw.(type) {
	case []interface{}:
		if len(v) < 2 {
			return GeoPoint{}, false
		}
		lon, ok1 := v[0].(float64)
		lat, ok2 := v[1].(float64)
		if !ok1 || !ok2 {
			return GeoPoint{}, false
		}
		return GeoPoint{Lon: lon, Lat: lat}, true
	case []float64:
		if len(v) < 2 {
			return GeoPoint{}, false
		}
		return GeoPoint{Lon: v[0], Lat: v[1]}, true
	}
	return GeoPoint{}, false
}

// ringCentroid 没有锚点时用第一个非退化环的面积质心
func ringCentroid(rings []orb.Ring) (GeoPoint, bool) {
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		c, _ := planar.CentroidArea(r)
		return GeoPoint{Lon: c[0], Lat: c[1]}, true
	}
	return GeoPoint{}, false
}
