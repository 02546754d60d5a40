package catalog

import "strings"

// Product is one mirrored catalog row. ID is unique across the whole mirror.
type Product struct {
	ID           string       `gorm:"primaryKey;size:48" json:"id" yaml:"id"`
	Name         string       `gorm:"size:128;not null;index" json:"name" yaml:"name"`
	Price        int          `gorm:"not null" json:"price" yaml:"price"`
	Colors       string       `gorm:"size:512;not null" json:"colors" yaml:"colors"`
	Category     string       `gorm:"size:128;not null;index" json:"category" yaml:"category"`
	Manufacturer string       `gorm:"size:128;not null;index" json:"manufacturer" yaml:"manufacturer"`
	Available    Availability `gorm:"not null;default:0" json:"available" yaml:"available"`
}

// TableName overrides the gorm table name.
func (Product) TableName() string {
	return "products"
}

// Store column names touched by the reconciler.
const (
	ColumnName         = "name"
	ColumnColors       = "colors"
	ColumnPrice        = "price"
	ColumnManufacturer = "manufacturer"
	ColumnCategory     = "category"
	ColumnAvailable    = "available"
)

// ItemColumns are the columns refreshed from the category feed.
var ItemColumns = []string{ColumnName, ColumnColors, ColumnManufacturer, ColumnPrice}

// Display is the presentation view of a product.
type Display struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Colors       string `json:"colors" yaml:"colors"`
	Price        int    `json:"price" yaml:"price"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	Available    string `json:"available" yaml:"available"`
}

// Display returns the presentation view with the manufacturer title-cased.
func (p Product) Display() Display {
	return Display{
		ID:           p.ID,
		Name:         p.Name,
		Colors:       p.Colors,
		Price:        p.Price,
		Manufacturer: titleCaser.String(p.Manufacturer),
		Available:    p.Available.Pretty(),
	}
}

// Item is a product as delivered by the category feed, already normalized.
type Item struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Colors       string `json:"colors" yaml:"colors"`
	Price        int    `json:"price" yaml:"price"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
}

// NewItem normalizes raw feed fields: ids and manufacturers are lower-cased and
// colors are joined with ", ".
func NewItem(id, name string, colors []string, price int, manufacturer string) Item {
	return Item{
		ID:           strings.ToLower(id),
		Name:         name,
		Colors:       strings.Join(colors, ", "),
		Price:        price,
		Manufacturer: strings.ToLower(manufacturer),
	}
}

// Product builds a new row for category from the item.
func (i Item) Product(category string) Product {
	return Product{
		ID:           i.ID,
		Name:         i.Name,
		Price:        i.Price,
		Colors:       i.Colors,
		Category:     category,
		Manufacturer: i.Manufacturer,
		Available:    AvailabilityUnknown,
	}
}

// Column returns the value of the named category-sourced column.
func (i Item) Column(column string) (any, bool) {
	switch column {
	case ColumnName:
		return i.Name, true
	case ColumnColors:
		return i.Colors, true
	case ColumnPrice:
		return i.Price, true
	case ColumnManufacturer:
		return i.Manufacturer, true
	}
	return nil, false
}
