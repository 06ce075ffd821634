package Transformer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"
)

// LoadDataset 按扩展名读取数据集
// .geojson/.json/.kml 直接解析, .shp 走 shapefile, 压缩包先解压再找第一个可用的数据文件
func LoadDataset(path string, opts ParseOptions) (*ParseResult, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".geojson"), strings.HasSuffix(lower, ".json"):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseGeoJSON(data, opts)
	case strings.HasSuffix(lower, ".kml"):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseKML(data, opts)
	case strings.HasSuffix(lower, ".shp"):
		return ParseShapefile(path, opts)
	case isArchive(lower):
		return loadArchive(path, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

func isArchive(lower string) bool {
	for _, ext := range []string{".zip", ".rar", ".tar", ".tar.gz", ".tgz", ".7z"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func loadArchive(path string, opts ParseOptions) (*ParseResult, error) {
	dir, err := os.MkdirTemp("", "geomesh-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := archiver.Unarchive(path, dir); err != nil {
		return nil, fmt.Errorf("unarchive %s: %w", filepath.Base(path), err)
	}
	for _, exts := range [][]string{{"geojson", "json"}, {"shp"}, {"kml"}} {
		files, err := FindFiles(dir, exts...)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", filepath.Base(path), err)
		}
		if len(files) > 0 {
			return LoadDataset(files[0], opts)
		}
	}
	return nil, fmt.Errorf("%w: no geojson or shapefile in %s", ErrEmptyDataset, filepath.Base(path))
}
