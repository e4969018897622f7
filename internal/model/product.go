package model

import "time"

// Product is one stocked item with an expiry date.
//
// Category names a Category by its name, not its id. Nothing keeps the two
// in sync: renaming or deleting a category leaves products untouched.
type Product struct {
	ID         string    `gorm:"primaryKey;size:64"        json:"id"`
	Barcode    string    `gorm:"size:128;index"            json:"barcode"`
	Name       string    `gorm:"size:255;not null"         json:"name"`
	Category   string    `gorm:"size:255;index"            json:"category"`
	ExpiryDate Date      `gorm:"type:varchar(10);index"    json:"expiryDate"`
	Quantity   int       `gorm:"not null"                  json:"quantity"`
	Price      float64   `gorm:"not null"                  json:"price"`
	Supplier   *string   `gorm:"size:255"                  json:"supplier,omitempty"`
	Image      *string   `gorm:"type:text"                 json:"image,omitempty"`
	AddedDate  time.Time `gorm:"not null"                  json:"addedDate"`
}

func (Product) TableName() string { return "products" }

// StockValue is price × quantity.
func (p Product) StockValue() float64 { return p.Price * float64(p.Quantity) }

// NewProduct carries the caller-supplied fields of a product; the engine
// assigns ID and AddedDate.
type NewProduct struct {
	Barcode    string  `json:"barcode"             validate:"max=128"`
	Name       string  `json:"name"                validate:"required,max=255"`
	Category   string  `json:"category"            validate:"max=255"`
	ExpiryDate Date    `json:"expiryDate"          validate:"required"`
	Quantity   int     `json:"quantity"            validate:"gte=0"`
	Price      float64 `json:"price"               validate:"gte=0"`
	Supplier   *string `json:"supplier,omitempty"  validate:"nullable,max=255"`
	Image      *string `json:"image,omitempty"`
}

// ProductPatch is a partial update. Nil fields keep their current value.
type ProductPatch struct {
	Barcode    *string  `json:"barcode,omitempty"    validate:"max=128"`
	Name       *string  `json:"name,omitempty"       validate:"min=1,max=255"`
	Category   *string  `json:"category,omitempty"   validate:"max=255"`
	ExpiryDate *Date    `json:"expiryDate,omitempty"`
	Quantity   *int     `json:"quantity,omitempty"   validate:"gte=0"`
	Price      *float64 `json:"price,omitempty"      validate:"gte=0"`
	Supplier   *string  `json:"supplier,omitempty"   validate:"max=255"`
	Image      *string  `json:"image,omitempty"`
}

// Apply returns p with every non-nil patch field written over it.
func (pt ProductPatch) Apply(p Product) Product {
	if pt.Barcode != nil {
		p.Barcode = *pt.Barcode
	}
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.ExpiryDate != nil {
		p.ExpiryDate = *pt.ExpiryDate
	}
	if pt.Quantity != nil {
		p.Quantity = *pt.Quantity
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Supplier != nil {
		s := *pt.Supplier
		p.Supplier = &s
	}
	if pt.Image != nil {
		img := *pt.Image
		p.Image = &img
	}
	return p
}

func (p Product) PrimaryKey() string { return p.ID }
