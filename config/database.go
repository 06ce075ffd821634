package config

import (
	"os"
	"path/filepath"

	"github.com/GrainArc/GeoMesh/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBFileName 场景库文件名
const DBFileName = "scenes.db"

// InitDatabase 在存储目录下打开 SQLite 场景库并迁移表结构
func InitDatabase(storage string) (*gorm.DB, error) {
	if err := os.MkdirAll(storage, os.ModePerm); err != nil {
		log.WithError(err).Error("创建存储目录失败")
		return nil, err
	}
	dbPath := filepath.Join(storage, DBFileName)
	log.WithField("path", dbPath).Info("数据库路径")

	db, err := OpenDatabase(dbPath, logger.Warn)
	if err != nil {
		return nil, err
	}
	log.Info("数据库初始化成功")
	return db, nil
}

// OpenDatabase 打开指定文件并自动迁移
func OpenDatabase(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		log.WithError(err).Error("连接数据库失败")
		return nil, err
	}
	if err := db.AutoMigrate(&models.SceneRecord{}, &models.NodeRecord{}); err != nil {
		log.WithError(err).Error("数据库迁移失败")
		return nil, err
	}
	return db, nil
}
