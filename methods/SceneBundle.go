package methods

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GrainArc/GeoMesh/Scene"
)

// BundleName 场景导出文件的基础名称
func BundleName(sc *Scene.Scene) string {
	name := strings.Join(strings.Fields(sc.Name), "_")
	if name == "" {
		name = sc.ID
	}
	if name == "" {
		name = "scene"
	}
	return name
}

// SceneBundle json/obj/mtl/dxf 四种格式打包为 zip
// DXF 只能落盘生成, 先写到临时目录再读回
func SceneBundle(sc *Scene.Scene) ([]byte, error) {
	base := BundleName(sc)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{base + ".json", func(w io.Writer) error {
			data, err := sc.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}},
		{base + ".obj", func(w io.Writer) error { return SceneToOBJ(w, sc, base+".mtl") }},
		{base + ".mtl", func(w io.Writer) error { return SceneToMTL(w, sc.Style) }},
		{base + ".dxf", func(w io.Writer) error { return copyDXF(w, sc) }},
	}
	for _, e := range entries {
		f, err := zw.Create(e.name)
		if err != nil {
			zw.Close()
			return nil, err
		}
		if err := e.write(f); err != nil {
			zw.Close()
			return nil, fmt.Errorf("bundle %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyDXF(w io.Writer, sc *Scene.Scene) error {
	dir, err := os.MkdirTemp("", "geomesh-dxf-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "scene.dxf")
	if err := SceneToDXF(sc, path); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
