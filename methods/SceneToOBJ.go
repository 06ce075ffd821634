package methods

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/GrainArc/GeoMesh/Mesh"
	"github.com/GrainArc/GeoMesh/Scene"
)

// objWriter 顶点全局编号, 从 1 开始
type objWriter struct {
	w    *bufio.Writer
	next int
}

func (o *objWriter) vertex(p Mesh.Point3D) int {
	fmt.Fprintf(o.w, "v %s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	o.next++
	return o.next
}

func (o *objWriter) solid(s Mesh.Solid, offset Mesh.Point3D) {
	base := o.next
	for _, v := range s.Vertices {
		o.vertex(v.Add(offset))
	}
	for _, t := range s.Triangles {
		fmt.Fprintf(o.w, "f %d %d %d\n", base+t[0]+1, base+t[1]+1, base+t[2]+1)
	}
}

func (o *objWriter) lines(edges []Mesh.Edge) {
	for _, e := range edges {
		a := o.vertex(e.P1)
		b := o.vertex(e.P2)
		fmt.Fprintf(o.w, "l %d %d\n", a, b)
	}
}

// SceneToOBJ 导出 Wavefront OBJ, 每个区块一个对象, 材质见 SceneToMTL
func SceneToOBJ(w io.Writer, sc *Scene.Scene, mtlName string) error {
	o := &objWriter{w: bufio.NewWriter(w)}
	fmt.Fprintf(o.w, "# %s\n", sc.Name)
	if mtlName != "" {
		fmt.Fprintf(o.w, "mtllib %s\n", mtlName)
	}
	for _, n := range sc.Nodes() {
		fmt.Fprintf(o.w, "o %s\n", objName(n.Name, int(n.Handle)))
		for _, p := range n.Parts {
			if p.Solid.IsEmpty() {
				continue
			}
			fmt.Fprintf(o.w, "g ring_%d\nusemtl region\n", p.Ring)
			o.solid(p.Solid, Mesh.Point3D{})
			fmt.Fprintln(o.w, "usemtl edge")
			o.lines(p.Outline.Segments)
		}
		if n.Label != nil {
			fmt.Fprintln(o.w, "g label\nusemtl label")
			o.solid(n.Label.Solid, n.Label.Position)
		}
	}
	for _, m := range sc.Models {
		fmt.Fprintf(o.w, "o %s\nusemtl model\n", objName(m.Name, 0))
		o.solid(m.Solid, Mesh.Point3D{})
	}
	if len(sc.Axes) > 0 {
		fmt.Fprintln(o.w, "o axes")
		for _, l := range sc.Axes {
			o.lines([]Mesh.Edge{l.Edge})
		}
	}
	return o.w.Flush()
}

// SceneToMTL 与 SceneToOBJ 配套的材质
func SceneToMTL(w io.Writer, style Scene.Style) error {
	bw := bufio.NewWriter(w)
	for _, m := range []struct{ name, hex string }{
		{"region", style.Region},
		{"edge", style.Edge},
		{"label", style.Label},
		{"model", "#FFFFFF"},
	} {
		r, g, b, err := HexToRGB(m.hex)
		if err != nil {
			return fmt.Errorf("material %s: %w", m.name, err)
		}
		fmt.Fprintf(bw, "newmtl %s\nKd %s %s %s\nd 1\n\n", m.name, ftoa(r), ftoa(g), ftoa(b))
	}
	return bw.Flush()
}

// HexToRGB "#RRGGBB" 转 0~1 的分量
func HexToRGB(hex string) (float64, float64, float64, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255, nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// objName OBJ 对象名不能有空白
func objName(name string, handle int) string {
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "region_" + strconv.Itoa(handle)
	}
	return name
}
