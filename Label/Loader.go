package Label

import (
	"context"
	"fmt"
	"os"

	"github.com/GrainArc/GeoMesh/Asset"
	log "github.com/sirupsen/logrus"
)

// LoadFont 后台加载字体, 所有文字共享同一个 Future
// path 为空时使用内置字体
func LoadFont(ctx context.Context, path string) *Asset.Future[*Font] {
	return Asset.Go(ctx, func(ctx context.Context) (*Font, error) {
		if path == "" {
			return DefaultFont()
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := ParseFont(data)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"path": path, "font": f.Name()}).Info("font loaded")
		return f, nil
	})
}

// LoadFontBytes 从内存数据加载
func LoadFontBytes(ctx context.Context, data []byte) *Asset.Future[*Font] {
	return Asset.Go(ctx, func(context.Context) (*Font, error) {
		return ParseFont(data)
	})
}
