package orders

import "time"

type ProductType string

const (
	ProductRetail    ProductType = "retail"
	ProductResell    ProductType = "resell"
	ProductWholesale ProductType = "wholesale"
	ProductRental    ProductType = "rental"
	ProductFlight    ProductType = "flight"
)

const (
	ResellAvailable = "available"
	ResellSold      = "sold"
)

type Product struct {
	ID           string
	Name         string
	Stock        int
	PriceCents   int
	Type         ProductType
	ResellStatus string // hanya relevan utk type resell
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Order struct {
	ID               string
	ExternalID       string
	CustomerID       string
	Status           Status // lihat status.go
	TotalCents       int
	DeliveryFeeCents int
	Items            []OrderItem
	History          []StatusEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem snapshots the product at purchase time; the catalog row may
// change or sell out afterwards.
type OrderItem struct {
	ID           string
	OrderID      string
	ProductID    string
	Qty          int
	PriceCents   int // price at purchase
	ProductName  string
	ProductImage string
}

type StatusEntry struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}
