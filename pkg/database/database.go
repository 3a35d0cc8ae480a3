package database

import (
	"fmt"
	"log"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate runs AutoMigrate for the full model set and seeds defaults.
// Shared with the in-memory test setup.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.Option{},
		&model.TestSession{},
		&model.UserResponse{},
		&model.Violation{},
		&model.PermissionLog{},
		&model.ScreenCapture{},
		&model.BehavioralAnomaly{},
		&model.FaceVerification{},
		&model.RestrictedShortcut{},
	)
	if err != nil {
		return err
	}

	seedRestrictedShortcuts(db)
	return nil
}

func seedRestrictedShortcuts(db *gorm.DB) {
	var count int64
	db.Model(&model.RestrictedShortcut{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.RestrictedShortcut{
		{Combination: "ctrl+c", Description: "Copy", Enabled: true},
		{Combination: "ctrl+v", Description: "Paste", Enabled: true},
		{Combination: "ctrl+x", Description: "Cut", Enabled: true},
		{Combination: "ctrl+t", Description: "New tab", Enabled: true},
		{Combination: "ctrl+n", Description: "New window", Enabled: true},
		{Combination: "ctrl+shift+i", Description: "Developer tools", Enabled: true},
		{Combination: "alt+tab", Description: "Switch application", Enabled: true},
		{Combination: "f12", Description: "Developer tools", Enabled: true},
		{Combination: "printscreen", Description: "Screen capture", Enabled: true},
	}
	for _, s := range defaults {
		db.Create(&s)
	}
}
