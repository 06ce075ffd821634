package Transformer

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type kmlDoc struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name      string         `xml:"name"`
	Folders   []kmlFolder    `xml:"Folder"`
	Placemark []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Name      string         `xml:"name"`
	Folders   []kmlFolder    `xml:"Folder"`
	Placemark []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name          string            `xml:"name"`
	ExtendedData  kmlExtendedData   `xml:"ExtendedData"`
	Point         *kmlPoint         `xml:"Point"`
	Polygon       *kmlPolygon       `xml:"Polygon"`
	MultiGeometry *kmlMultiGeometry `xml:"MultiGeometry"`
}

type kmlExtendedData struct {
	SchemaData struct {
		SimpleData []kmlSimpleData `xml:"SimpleData"`
	} `xml:"SchemaData"`
	Data []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value"`
	} `xml:"Data"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlBoundary struct {
	LinearRing struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"LinearRing"`
}

type kmlMultiGeometry struct {
	Polygons []kmlPolygon `xml:"Polygon"`
	Points   []kmlPoint   `xml:"Point"`
}

// StringToCoords 解析 KML "lon,lat[,alt] lon,lat ..." 坐标串, 无法解析的坐标跳过
func StringToCoords(coords string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(coords) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		x, err1 := strconv.ParseFloat(parts[0], 64)
		y, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{x, y})
	}
	return out
}

func (p *kmlPolygon) polygon() orb.Polygon {
	poly := orb.Polygon{orb.Ring(StringToCoords(p.Outer.LinearRing.Coordinates))}
	for _, in := range p.Inner {
		poly = append(poly, orb.Ring(StringToCoords(in.LinearRing.Coordinates)))
	}
	return poly
}

// geometry 单个 Polygon 保持 Polygon, MultiGeometry 中的多个面转为 MultiPolygon
func (pm *kmlPlacemark) geometry() orb.Geometry {
	switch {
	case pm.Polygon != nil:
		return pm.Polygon.polygon()
	case pm.MultiGeometry != nil && len(pm.MultiGeometry.Polygons) > 0:
		mp := make(orb.MultiPolygon, 0, len(pm.MultiGeometry.Polygons))
		for i := range pm.MultiGeometry.Polygons {
			mp = append(mp, pm.MultiGeometry.Polygons[i].polygon())
		}
		return mp
	case pm.Point != nil:
		if pts := StringToCoords(pm.Point.Coordinates); len(pts) > 0 {
			return pts[0]
		}
	}
	return nil
}

func (pm *kmlPlacemark) properties(nameKey string) geojson.Properties {
	props := geojson.Properties{}
	for _, d := range pm.ExtendedData.SchemaData.SimpleData {
		props[d.Name] = strings.TrimSpace(d.Value)
	}
	for _, d := range pm.ExtendedData.Data {
		props[d.Name] = strings.TrimSpace(d.Value)
	}
	if _, ok := props[nameKey]; !ok && pm.Name != "" {
		props[nameKey] = strings.TrimSpace(pm.Name)
	}
	props["kml_name"] = pm.Name
	return props
}

func collectPlacemarks(folders []kmlFolder, out []kmlPlacemark) []kmlPlacemark {
	for _, f := range folders {
		out = append(out, f.Placemark...)
		out = collectPlacemarks(f.Folders, out)
	}
	return out
}

// KmlToFeatureCollection KML 转 FeatureCollection, 名称优先取扩展属性, 其次取 Placemark 名称
func KmlToFeatureCollection(data []byte, nameKey string) (*geojson.FeatureCollection, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	var doc kmlDoc
	if err := xml.Unmarshal(text, &doc); err != nil {
		return nil, fmt.Errorf("%w: kml: %w", ErrDecode, err)
	}
	if nameKey == "" {
		nameKey = "name"
	}
	placemarks := append([]kmlPlacemark(nil), doc.Document.Placemark...)
	placemarks = collectPlacemarks(doc.Document.Folders, placemarks)

	fc := geojson.NewFeatureCollection()
	for i := range placemarks {
		f := geojson.NewFeature(placemarks[i].geometry())
		f.Properties = placemarks[i].properties(nameKey)
		fc.Append(f)
	}
	if len(fc.Features) == 0 {
		return nil, ErrEmptyDataset
	}
	return fc, nil
}

// ParseKML 解析 KML 数据
func ParseKML(data []byte, opts ParseOptions) (*ParseResult, error) {
	opts = opts.withDefaults()
	fc, err := KmlToFeatureCollection(data, opts.NameKey)
	if err != nil {
		return nil, err
	}
	return ParseFeatureCollection(fc, opts)
}
