package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/GrainArc/GeoMesh/config"
	"github.com/GrainArc/GeoMesh/methods"
	"github.com/GrainArc/GeoMesh/routers"
	"github.com/GrainArc/GeoMesh/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "geomesh",
		Short:         "行政区划 GeoJSON/KML/Shapefile 转三维场景",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			config.SetupLogger(cfg.Log)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.xml", "XML 配置文件")
	root.AddCommand(newBuildCmd(), newServeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("geomesh 退出")
		os.Exit(1)
	}
}

func newBuildCmd() *cobra.Command {
	var (
		input  string
		output string
		format string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "构建场景并导出到文件",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MainConfig
			var store *services.SceneStore
			if save {
				db, err := config.InitDatabase(cfg.Storage)
				if err != nil {
					return err
				}
				store = services.NewSceneStore(db)
			}
			svc := services.NewSceneService(cmd.Context(), cfg, store)
			res, err := svc.BuildFromFile(cmd.Context(), input)
			if err != nil {
				return err
			}
			if res.LabelErr != nil {
				log.WithError(res.LabelErr).Warn("未生成文字")
			}
			if output == "" {
				base := strings.TrimSuffix(input, filepath.Ext(input))
				output = base + "." + format
			}
			if err := export(res, format, output); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"id":      res.Scene.ID,
				"nodes":   res.Scene.Len(),
				"skipped": len(res.Skipped),
				"output":  output,
			}).Info("导出完成")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "GeoJSON/KML 文件或 Shapefile 压缩包")
	cmd.Flags().StringVarP(&output, "out", "o", "", "输出文件, 默认与输入同名")
	cmd.Flags().StringVarP(&format, "format", "f", "obj", "输出格式 json|obj|dxf|zip")
	cmd.Flags().BoolVar(&save, "save", false, "同时写入场景库")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func export(res *services.BuildResult, format, output string) error {
	sc := res.Scene
	switch format {
	case "dxf":
		return methods.SceneToDXF(sc, output)
	case "zip":
		data, err := methods.SceneBundle(sc)
		if err != nil {
			return err
		}
		return os.WriteFile(output, data, 0o644)
	case "json", "obj":
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if format == "json" {
		data, err := sc.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	}

	mtl := strings.TrimSuffix(output, filepath.Ext(output)) + ".mtl"
	if err := methods.SceneToOBJ(f, sc, filepath.Base(mtl)); err != nil {
		return err
	}
	mf, err := os.Create(mtl)
	if err != nil {
		return err
	}
	defer mf.Close()
	return methods.SceneToMTL(mf, sc.Style)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MainConfig
			db, err := config.InitDatabase(cfg.Storage)
			if err != nil {
				return err
			}
			svc := services.NewSceneService(cmd.Context(), cfg, services.NewSceneStore(db))
			r := routers.NewEngine(svc)
			log.WithField("listen", cfg.Listen).Info("服务启动")
			return r.Run(cfg.Listen)
		},
	}
}
