package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SaleKind string

const (
	SalePercentage SaleKind = "percentage"
	SaleAmount     SaleKind = "amount"
)

// SaleConfig describes a discount. Percentage sales are clamped to [0,100] of
// the list price; amount sales never push the effective price below zero.
type SaleConfig struct {
	Kind   SaleKind `bson:"kind" json:"kind"`
	Value  float64  `bson:"value" json:"value"`
	Active bool     `bson:"active" json:"active"`
}

// ProductUnit is a purchasable size/color variant with its own price, stock
// and optional sale. A unit-level sale wins over the product-level one.
type ProductUnit struct {
	UnitID     string      `bson:"unitId" json:"unitId"`
	Size       string      `bson:"size,omitempty" json:"size,omitempty"`
	Color      string      `bson:"color,omitempty" json:"color,omitempty"`
	Price      float64     `bson:"price" json:"price"`
	Stock      int         `bson:"stock" json:"stock"`
	SaleConfig *SaleConfig `bson:"saleConfig,omitempty" json:"saleConfig,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Materials   []string           `bson:"materials,omitempty" json:"materials,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`

	// Flat price/stock, used when the product has no units.
	Price float64 `bson:"price" json:"price"`
	Stock int     `bson:"stock" json:"stock"`

	Units      []ProductUnit `bson:"units,omitempty" json:"units,omitempty"`
	SaleConfig *SaleConfig   `bson:"saleConfig,omitempty" json:"saleConfig,omitempty"`

	Featured  bool      `bson:"featured,omitempty" json:"featured,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Unit returns the variant with the given id, or nil.
func (p *Product) Unit(unitID string) *ProductUnit {
	for i := range p.Units {
		if p.Units[i].UnitID == unitID {
			return &p.Units[i]
		}
	}
	return nil
}
