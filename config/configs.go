package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/GrainArc/GeoMesh/Label"
	"github.com/GrainArc/GeoMesh/Mesh"
	"github.com/GrainArc/GeoMesh/Scene"
	"github.com/GrainArc/GeoMesh/Transformer"
	"github.com/spf13/viper"
)

var (
	ErrInvalidScale     = errors.New("mesh scale must be positive")
	ErrInvalidDepth     = errors.New("mesh depth must be positive")
	ErrInvalidElevation = errors.New("label elevation must be above the region top face")
	ErrInvalidLabel     = errors.New("label size and depth must be positive")
)

// MainConfig 当前生效的配置
var MainConfig = DefaultConfig()

type LogConfig struct {
	Level  string `xml:"level"`
	Format string `xml:"format"` // text 或 json
}

type KeyConfig struct {
	Name   string `xml:"name"`
	Anchor string `xml:"anchor"`
}

type MeshConfig struct {
	Scale         float64 `xml:"scale"`
	Depth         float64 `xml:"depth"`
	EdgeThreshold float64 `xml:"edgeThreshold"`
}

type LabelConfig struct {
	Font          string  `xml:"font"` // 为空时使用内置字体
	Size          float64 `xml:"size"`
	Depth         float64 `xml:"depth"`
	Elevation     float64 `xml:"elevation"`
	CurveSegments int     `xml:"segments"`
	Transliterate bool    `xml:"transliterate"`
}

// ModelConfig 场景中附加的 OBJ 模型
type ModelConfig struct {
	Path  string  `xml:"path"`
	X     float64 `xml:"x"`
	Y     float64 `xml:"y"`
	Z     float64 `xml:"z"`
	Scale float64 `xml:"scale"`
}

type Config struct {
	XMLName xml.Name    `xml:"config"`
	Listen  string      `xml:"listen"`
	Storage string      `xml:"storage"`
	Workers int         `xml:"workers"`
	Axes    float64     `xml:"axes"` // 坐标轴长度, 0 不显示
	Log     LogConfig   `xml:"log"`
	Keys    KeyConfig   `xml:"keys"`
	Mesh    MeshConfig  `xml:"mesh"`
	Label   LabelConfig `xml:"label"`
	Model   ModelConfig `xml:"model"`
}

// DefaultConfig 默认值与前端展示效果一致
func DefaultConfig() Config {
	return Config{
		Listen:  ":8426",
		Storage: "./data",
		Log:     LogConfig{Level: "info", Format: "text"},
		Keys:    KeyConfig{Name: "name", Anchor: "cp"},
		Mesh:    MeshConfig{Scale: 10000, Depth: 10, EdgeThreshold: 1},
		Label: LabelConfig{
			Size:          5,
			Depth:         1,
			Elevation:     10,
			CurveSegments: 4,
			Transliterate: true,
		},
		Model: ModelConfig{Z: -120, Scale: 0.05},
	}
}

// LoadConfig 读取 XML 配置文件, 未出现的字段保留默认值, 再叠加 GEOMESH_ 环境变量
// path 为空或文件不存在时只使用默认值和环境变量
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		xmlFile, err := os.Open(path)
		switch {
		case err == nil:
			defer xmlFile.Close()
			if err := xml.NewDecoder(xmlFile).Decode(&cfg); err != nil {
				return Config{}, fmt.Errorf("decode %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("open %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	MainConfig = cfg
	return cfg, nil
}

// applyEnv 环境变量覆盖, 例如 GEOMESH_MESH_SCALE=5000
func (c *Config) applyEnv() error {
	v := viper.New()
	v.SetEnvPrefix("geomesh")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	str := map[string]*string{
		"listen":      &c.Listen,
		"storage":     &c.Storage,
		"log.level":   &c.Log.Level,
		"log.format":  &c.Log.Format,
		"keys.name":   &c.Keys.Name,
		"keys.anchor": &c.Keys.Anchor,
		"label.font":  &c.Label.Font,
		"model.path":  &c.Model.Path,
	}
	num := map[string]*float64{
		"axes":               &c.Axes,
		"mesh.scale":         &c.Mesh.Scale,
		"mesh.depth":         &c.Mesh.Depth,
		"mesh.edgethreshold": &c.Mesh.EdgeThreshold,
		"label.size":         &c.Label.Size,
		"label.depth":        &c.Label.Depth,
		"label.elevation":    &c.Label.Elevation,
		"model.x":            &c.Model.X,
		"model.y":            &c.Model.Y,
		"model.z":            &c.Model.Z,
		"model.scale":        &c.Model.Scale,
	}
	ints := map[string]*int{
		"workers":        &c.Workers,
		"label.segments": &c.Label.CurveSegments,
	}

	bind := func(key string) (bool, error) {
		if err := v.BindEnv(key); err != nil {
			return false, fmt.Errorf("bind %s: %w", key, err)
		}
		return v.IsSet(key), nil
	}
	for key, dst := range str {
		ok, err := bind(key)
		if err != nil {
			return err
		}
		if ok {
			*dst = v.GetString(key)
		}
	}
	for key, dst := range num {
		ok, err := bind(key)
		if err != nil {
			return err
		}
		if ok {
			*dst = v.GetFloat64(key)
		}
	}
	for key, dst := range ints {
		ok, err := bind(key)
		if err != nil {
			return err
		}
		if ok {
			*dst = v.GetInt(key)
		}
	}
	ok, err := bind("label.transliterate")
	if err != nil {
		return err
	}
	if ok {
		c.Label.Transliterate = v.GetBool("label.transliterate")
	}
	return nil
}

// Validate 检查取值范围
func (c Config) Validate() error {
	var errs []error
	if c.Mesh.Scale <= 0 {
		errs = append(errs, ErrInvalidScale)
	}
	if c.Mesh.Depth <= 0 {
		errs = append(errs, ErrInvalidDepth)
	}
	if c.Label.Size <= 0 || c.Label.Depth <= 0 {
		errs = append(errs, ErrInvalidLabel)
	}
	if c.Label.Elevation < c.Mesh.Depth {
		errs = append(errs, fmt.Errorf("%w: elevation %g < depth %g", ErrInvalidElevation, c.Label.Elevation, c.Mesh.Depth))
	}
	return errors.Join(errs...)
}

// ParseOptions 属性字段名
func (c Config) ParseOptions() Transformer.ParseOptions {
	return Transformer.ParseOptions{NameKey: c.Keys.Name, AnchorKey: c.Keys.Anchor}
}

// SceneOptions 组装参数
func (c Config) SceneOptions() Scene.Options {
	return Scene.Options{
		Scale:   c.Mesh.Scale,
		Workers: c.Workers,
		Mesh: Mesh.Options{
			Depth:         c.Mesh.Depth,
			EdgeThreshold: c.Mesh.EdgeThreshold,
		},
		Label: Label.Options{
			Size:          c.Label.Size,
			Depth:         c.Label.Depth,
			CurveSegments: c.Label.CurveSegments,
			Elevation:     c.Label.Elevation,
			Transliterate: c.Label.Transliterate,
		},
	}
}

// ModelPosition 模型摆放位置
func (c Config) ModelPosition() Mesh.Point3D {
	return Mesh.Point3D{X: c.Model.X, Y: c.Model.Y, Z: c.Model.Z}
}
