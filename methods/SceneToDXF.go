package methods

import (
	"fmt"

	"github.com/GrainArc/GeoMesh/Mesh"
	"github.com/GrainArc/GeoMesh/Scene"
	log "github.com/sirupsen/logrus"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF 图层名
const (
	LayerRegion  = "Region"
	LayerOutline = "Outline"
	LayerLabel   = "Label"
)

// SceneToDXF 区块面片写为 3DFACE, 边线写为 LINE, 文字写为 TEXT 加 3DFACE
func SceneToDXF(sc *Scene.Scene, outputFilename string) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	for _, l := range []struct {
		name string
		cl   color.ColorNumber
	}{
		{LayerRegion, color.Blue},
		{LayerOutline, color.White},
		{LayerLabel, color.Yellow},
	} {
		if _, err := d.AddLayer(l.name, l.cl, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	for _, n := range sc.Nodes() {
		for _, p := range n.Parts {
			if p.Solid.IsEmpty() {
				continue
			}
			if err := d.ChangeLayer(LayerRegion); err != nil {
				return err
			}
			if err := addFaces(d, p.Solid, Mesh.Point3D{}); err != nil {
				return fmt.Errorf("region %q: %w", n.Name, err)
			}
			if err := d.ChangeLayer(LayerOutline); err != nil {
				return err
			}
			for _, e := range p.Outline.Segments {
				if _, err := d.Line(e.P1.X, e.P1.Y, e.P1.Z, e.P2.X, e.P2.Y, e.P2.Z); err != nil {
					return err
				}
			}
		}
		if n.Label == nil {
			continue
		}
		if err := d.ChangeLayer(LayerLabel); err != nil {
			return err
		}
		if err := addFaces(d, n.Label.Solid, n.Label.Position); err != nil {
			return fmt.Errorf("label %q: %w", n.Name, err)
		}
		pos := n.Label.Position
		if _, err := d.Text(n.Label.Content, pos.X, pos.Y, pos.Z, 1); err != nil {
			log.WithError(err).WithField("label", n.Label.Content).Warn("dxf text skipped")
		}
	}

	return d.SaveAs(outputFilename)
}

func addFaces(d *drawing.Drawing, s Mesh.Solid, offset Mesh.Point3D) error {
	for _, t := range s.Triangles {
		pts := make([][]float64, 0, 4)
		for _, i := range t {
			v := s.Vertices[i].Add(offset)
			pts = append(pts, []float64{v.X, v.Y, v.Z})
		}
		// 3DFACE 需要 4 个角点, 三角形重复最后一个点
		pts = append(pts, pts[2])
		if _, err := d.ThreeDFace(pts); err != nil {
			return err
		}
	}
	return nil
}
