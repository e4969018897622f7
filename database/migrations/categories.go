package migrations

import (
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/migration"
	"gorm.io/gorm"
)

// Categories arrived in the second schema revision. Databases created by
// the first revision keep their products, logs and settings.
func init() {
	migration.Register("20250301000000_create_categories_table", &CreateCategoriesTable{})
}

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&model.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}
