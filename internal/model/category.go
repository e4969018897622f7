package model

// Category groups products by name. Names are unique ignoring case.
type Category struct {
	ID   string `gorm:"primaryKey;size:64"  json:"id"`
	Name string `gorm:"size:255;not null"   json:"name"`
}

func (Category) TableName() string { return "categories" }

func (c Category) PrimaryKey() string { return c.ID }
