package Scene

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/GrainArc/GeoMesh/Asset"
	"github.com/GrainArc/GeoMesh/Label"
	"github.com/GrainArc/GeoMesh/Mesh"
	"github.com/GrainArc/GeoMesh/Transformer"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrLabelsUnavailable 字体加载失败, 节点只有区块没有文字
var ErrLabelsUnavailable = errors.New("labels unavailable")

// Options 组装参数
type Options struct {
	Scale   float64 // 投影坐标到渲染坐标的缩放
	Mesh    Mesh.Options
	Label   Label.Options
	Workers int // 并行构建的要素数, 0 表示 CPU 核数
}

// DefaultOptions scale 10000, 区块高 10, 文字在 z=10
func DefaultOptions() Options {
	return Options{
		Scale: 10000,
		Mesh:  Mesh.DefaultOptions(),
		Label: Label.DefaultOptions(),
	}
}

// Composer 把要素组装为场景节点
type Composer struct {
	Options Options
}

func NewComposer(opts Options) *Composer {
	return &Composer{Options: opts}
}

func (c *Composer) workers() int {
	if c.Options.Workers > 0 {
		return c.Options.Workers
	}
	return runtime.NumCPU()
}

// Compose 先并行生成所有区块, 再等待字体一次性生成文字
// 字体失败时返回已完成区块的节点和包装了 ErrLabelsUnavailable 的错误
// center 必须由完整数据集的 Extent 计算得到
func (c *Composer) Compose(ctx context.Context, features []Transformer.Feature, center Transformer.Center, font *Asset.Future[*Label.Font]) ([]*RegionNode, error) {
	norm := Mesh.NewNormalizer(center, c.Options.Scale)
	nodes, err := c.buildMeshes(ctx, features, norm)
	if err != nil {
		return nil, err
	}
	if font == nil {
		return nodes, fmt.Errorf("%w: no font", ErrLabelsUnavailable)
	}
	f, err := font.Await(ctx)
	if err != nil {
		return nodes, fmt.Errorf("%w: %w", ErrLabelsUnavailable, err)
	}
	if err := c.placeLabels(ctx, features, nodes, Label.NewPlacer(f, c.Options.Label), norm); err != nil {
		return nodes, err
	}
	return nodes, nil
}

// ComposeInto 组装并按要素顺序挂到 sink 上
// 文字失败时区块照常挂载, 错误返回给调用方
func (c *Composer) ComposeInto(ctx context.Context, sink Sink, features []Transformer.Feature, center Transformer.Center, font *Asset.Future[*Label.Font]) error {
	nodes, composeErr := c.Compose(ctx, features, center, font)
	if nodes == nil {
		return composeErr
	}
	for _, n := range nodes {
		if err := sink.Attach(n); err != nil {
			return errors.Join(composeErr, fmt.Errorf("attach %q: %w", n.Name, err))
		}
	}
	return composeErr
}

// buildMeshes 第一阶段, 不依赖字体
func (c *Composer) buildMeshes(ctx context.Context, features []Transformer.Feature, norm Mesh.Normalizer) ([]*RegionNode, error) {
	nodes := make([]*RegionNode, len(features))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i := range features {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			nodes[i] = c.buildNode(&features[i], norm)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (c *Composer) buildNode(f *Transformer.Feature, norm Mesh.Normalizer) *RegionNode {
	node := &RegionNode{
		Handle:        InvalidHandle,
		Name:          f.Name,
		Parts:         make([]Part, 0, len(f.Rings)),
		AnchorDerived: f.AnchorDerived,
	}
	for j, ring := range f.Rings {
		solid, outline := Mesh.BuildRing(ring, norm, c.Options.Mesh)
		part := Part{Ring: j, Solid: solid, Outline: outline}
		if solid.IsEmpty() {
			part.Degenerate = true
			log.WithFields(log.Fields{"feature": f.Name, "ring": j, "points": len(ring)}).Warn("degenerate ring")
		}
		node.Parts = append(node.Parts, part)
	}
	if f.AnchorDerived {
		log.WithField("feature", f.Name).Debug("anchor derived from ring centroid")
	}
	node.computeBoundingCenter()
	return node
}

// placeLabels 第二阶段, 每个要素一个文字
func (c *Composer) placeLabels(ctx context.Context, features []Transformer.Feature, nodes []*RegionNode, placer *Label.Placer, norm Mesh.Normalizer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i := range features {
		i := i
		if !features[i].HasAnchor {
			log.WithField("feature", features[i].Name).Warn("no anchor, label skipped")
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := placer.Place(features[i].Name, features[i].Anchor, norm)
			if err != nil {
				log.WithFields(log.Fields{"feature": features[i].Name}).WithError(err).Warn("label skipped")
				return nil
			}
			nodes[i].Label = text
			return nil
		})
	}
	return g.Wait()
}
