package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" binding:"required"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price" binding:"required,gt=0"`
	Category    string             `bson:"category" json:"category"`
	Images      []string           `bson:"images" json:"images"`
	Stock       int                `bson:"stock" json:"stock" binding:"gte=0"`
	Material    string             `bson:"material,omitempty" json:"material,omitempty"`
	Dimensions  string             `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Weight      string             `bson:"weight,omitempty" json:"weight,omitempty"`
	Artisan     string             `bson:"artisan,omitempty" json:"artisan,omitempty"`
	Featured    bool               `bson:"featured" json:"featured"`
	Rating      float64            `bson:"rating" json:"rating"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductUpdate carries a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price" binding:"omitempty,gt=0"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
	Stock       *int      `json:"stock" binding:"omitempty,gte=0"`
	Material    *string   `json:"material"`
	Dimensions  *string   `json:"dimensions"`
	Weight      *string   `json:"weight"`
	Artisan     *string   `json:"artisan"`
	Featured    *bool     `json:"featured"`
	Rating      *float64  `json:"rating" binding:"omitempty,gte=0,lte=5"`
}

// Apply copies the set fields onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Images != nil {
		p.Images = append([]string(nil), (*u.Images)...)
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Material != nil {
		p.Material = *u.Material
	}
	if u.Dimensions != nil {
		p.Dimensions = *u.Dimensions
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Artisan != nil {
		p.Artisan = *u.Artisan
	}
	if u.Featured != nil {
		p.Featured = *u.Featured
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
}
