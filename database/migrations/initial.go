package migrations

import (
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250101000000_create_products_table", &CreateProductsTable{})
	migration.Register("20250101000001_create_logs_table", &CreateLogsTable{})
	migration.Register("20250101000002_create_settings_table", &CreateSettingsTable{})
}

// -------- 0001: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&model.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0002: logs --------

type CreateLogsTable struct{}

func (m *CreateLogsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&model.ActionLog{})
}

func (m *CreateLogsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("logs")
}

// -------- 0003: settings --------

type CreateSettingsTable struct{}

func (m *CreateSettingsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&model.AppSettings{})
}

func (m *CreateSettingsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("settings")
}
