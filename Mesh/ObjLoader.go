package Mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadOBJ 读取 Wavefront OBJ 模型, 只取 v 和 f
// 多边形面按扇形拆成三角形, 支持 v/vt/vn 与负索引
func LoadOBJ(r io.Reader) (Solid, error) {
	var solid Solid
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return Solid{}, fmt.Errorf("obj line %d: vertex needs 3 coordinates", line)
			}
			var xyz [3]float64
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return Solid{}, fmt.Errorf("obj line %d: %w", line, err)
				}
				xyz[i] = v
			}
			solid.Vertices = append(solid.Vertices, Point3D{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "f":
			if len(fields) < 4 {
				return Solid{}, fmt.Errorf("obj line %d: face needs at least 3 vertices", line)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				i, err := objIndex(f, len(solid.Vertices))
				if err != nil {
					return Solid{}, fmt.Errorf("obj line %d: %w", line, err)
				}
				idx = append(idx, i)
			}
			for i := 1; i+1 < len(idx); i++ {
				solid.Triangles = append(solid.Triangles, Triangle{idx[0], idx[i], idx[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Solid{}, err
	}
	solid.ComputeBoundingSphere()
	return solid, nil
}

// objIndex 解析 "3", "3/1", "3//2", "-1" 等形式, 返回从 0 开始的索引
func objIndex(token string, count int) (int, error) {
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		token = token[:slash]
	}
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("vertex index %s out of range", token)
	}
	return i, nil
}
