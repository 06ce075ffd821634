package Transformer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseShapefile 读取面状 shapefile
// 顺时针的部件是外环, 逆时针的是洞; 洞与 MultiPolygon 的内环一样不参与拉伸
func ParseShapefile(path string, opts ParseOptions) (*ParseResult, error) {
	fc, err := ShapefileToFeatureCollection(path, opts.withDefaults().NameKey)
	if err != nil {
		return nil, err
	}
	return ParseFeatureCollection(fc, opts)
}

// ShapefileToFeatureCollection shapefile 转 GeoJSON 要素集合, 只保留名称字段
func ShapefileToFeatureCollection(path string, nameKey string) (*geojson.FeatureCollection, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	nameField := -1
	for k, f := range fields {
		if strings.EqualFold(strings.TrimSpace(f.String()), nameKey) {
			nameField = k
			break
		}
	}
	encoding := readCPGEncoding(path)

	fc := geojson.NewFeatureCollection()
	for shape.Next() {
		n, p := shape.Shape()

		var geom orb.Geometry
		switch s := p.(type) {
		case *shp.Polygon:
			geom = polygonParts(s.Points, s.Parts)
		case *shp.PolygonZ:
			geom = polygonParts(s.Points, s.Parts)
		case *shp.PolygonM:
			geom = polygonParts(s.Points, s.Parts)
		case *shp.Point:
			// 点要素在解析时按 Other 跳过
			geom = orb.Point{s.X, s.Y}
		default:
			geom = nil
		}

		if mp, ok := geom.(orb.MultiPolygon); ok && len(mp) > 0 && len(mp[0]) > 0 && len(mp[0][0]) > 0 {
			if x := mp[0][0][0][0]; x > 1000 || x < -1000 {
				return nil, fmt.Errorf("%w: shapefile %s is not in EPSG:4326", ErrUnsupportedFormat, filepath.Base(path))
			}
		}

		feature := geojson.NewFeature(geom)
		if nameField >= 0 {
			name := strings.Trim(shape.ReadAttribute(n, nameField), " \x00")
			if strings.EqualFold(encoding, "GBK") || strings.EqualFold(encoding, "GB2312") || strings.EqualFold(encoding, "GB18030") {
				name = GbkToUtf8(name)
			}
			feature.Properties[nameKey] = name
		}
		fc.Append(feature)
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	return fc, nil
}

// polygonParts 按部件拆分, 每个外环单独成一个子面
func polygonParts(points []shp.Point, parts []int32) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, part := range SplitPoints(points, parts) {
		ring := make(orb.Ring, len(part))
		for i, pt := range part {
			ring[i] = orb.Point{pt.X, pt.Y}
		}
		if IsClockwise(ring) {
			mp = append(mp, orb.Polygon{ring})
		}
	}
	return mp
}

// SplitPoints 根据 Parts 索引把点序列拆成多个部件
func SplitPoints(points []shp.Point, parts []int32) [][]shp.Point {
	var out [][]shp.Point
	for i, start := range parts {
		end := int32(len(points))
		if i < len(parts)-1 {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(points) {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}

// IsClockwise 鞋带公式, 和为正表示顺时针
func IsClockwise(points []orb.Point) bool {
	sum := 0.0
	for i := 0; i < len(points)-1; i++ {
		p1 := points[i]
		p2 := points[i+1]
		sum += (p2[0] - p1[0]) * (p2[1] + p1[1])
	}
	return sum > 0
}

// readCPGEncoding 读取同名 .cpg 文件中的编码, 缺省 GBK
func readCPGEncoding(shpfilePath string) string {
	base := strings.TrimSuffix(filepath.Base(shpfilePath), filepath.Ext(shpfilePath))
	cpgContent, err := os.ReadFile(filepath.Join(filepath.Dir(shpfilePath), base+".cpg"))
	if err != nil {
		return "GBK"
	}
	return strings.TrimSpace(string(cpgContent))
}
