package Transformer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFiles 递归查找指定扩展名的文件, 结果按路径排序
func FindFiles(root string, exts ...string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := strings.ToLower(info.Name())
		for _, ext := range exts {
			if strings.HasSuffix(name, "."+ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
