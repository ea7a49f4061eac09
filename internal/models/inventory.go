package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Part represents an inventory item available to parts requests.
type Part struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category" json:"category"` // "engine", "brakes", "electrical", "body", "other"
	Price             float64            `bson:"price" json:"price"`       // shop local currency
	Stock             int                `bson:"stock" json:"stock"`
	LowStockThreshold int                `bson:"low_stock_threshold" json:"low_stock_threshold"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsLowStock reports whether the part's stock is at or below its threshold.
func (p *Part) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
