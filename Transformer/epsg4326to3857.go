package Transformer

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// EarthRadius EPSG:3857 使用的地球半径(米)
const EarthRadius = 6378137.0

// MaxLatitude 投影前纬度的钳制范围, ±90° 处 tan/log 发散
const MaxLatitude = 89.9999

// GeoPoint EPSG:4326 经纬度坐标(度)
type GeoPoint struct {
	Lon float64
	Lat float64
}

// ProjectedPoint EPSG:3857 平面坐标(米), 只能通过 Project 得到
type ProjectedPoint struct {
	x float64
	y float64
}

func (p ProjectedPoint) X() float64 { return p.x }
func (p ProjectedPoint) Y() float64 { return p.y }

// Point 转成 orb.Point, 供 planar/Bound 等计算使用
func (p ProjectedPoint) Point() orb.Point { return orb.Point{p.x, p.y} }

// Project 经纬度转 web 墨卡托
// 纬度先钳制到 ±MaxLatitude, 不会返回 Inf
func Project(g GeoPoint) ProjectedPoint {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, g.Lat))
	x := EarthRadius * (math.Pi / 180) * g.Lon
	y := EarthRadius * math.Log(math.Tan((math.Pi/4)+((math.Pi/180)*lat/2)))
	return ProjectedPoint{x: x, y: y}
}

// ProjectLonLat 便捷形式, 输入为 GeoJSON 的 [lon, lat]
func ProjectLonLat(lon, lat float64) ProjectedPoint {
	return Project(GeoPoint{Lon: lon, Lat: lat})
}

// Unproject web 墨卡托转经纬度
func Unproject(p ProjectedPoint) GeoPoint {
	ll := project.Mercator.ToWGS84(orb.Point{p.x, p.y})
	return GeoPoint{Lon: ll[0], Lat: ll[1]}
}

// UnprojectXY 平面坐标(米)转经纬度, 用于把渲染坐标还原为经纬度
func UnprojectXY(x, y float64) GeoPoint {
	return Unproject(ProjectedPoint{x: x, y: y})
}
