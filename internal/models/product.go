package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product representa un producto del catálogo.
//
// CategoryID es la referencia guardada en la colección; Category solo se llena
// al leer (populate) y nunca se persiste.
type Product struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Description     string              `json:"description" bson:"description"`
	RichDescription string              `json:"richDescription" bson:"richDescription"`
	Image           string              `json:"image" bson:"image"`
	Images          []string            `json:"images" bson:"images"`
	Brand           string              `json:"brand" bson:"brand"`
	Price           float64             `json:"price" bson:"price"`
	CategoryID      *primitive.ObjectID `json:"-" bson:"category,omitempty"`
	Category        *Category           `json:"category" bson:"categoryDoc,omitempty"`
	CountInStock    int                 `json:"countInStock" bson:"countInStock"`
	Rating          float64             `json:"rating" bson:"rating"`
	NumReviews      int                 `json:"numReviews" bson:"numReviews"`
	IsFeatured      bool                `json:"isFeatured" bson:"isFeatured"`
	DateCreated     time.Time           `json:"dateCreated" bson:"dateCreated"`
}

// ProductInput son los campos que el cliente puede enviar al crear o reemplazar un producto.
type ProductInput struct {
	Name            string   `json:"name" form:"name" binding:"required"`
	Description     string   `json:"description" form:"description" binding:"required"`
	RichDescription string   `json:"richDescription" form:"richDescription"`
	Image           string   `json:"image" form:"-"`
	Images          []string `json:"images" form:"images"`
	Brand           string   `json:"brand" form:"brand"`
	Price           float64  `json:"price" form:"price" binding:"gte=0"`
	Category        string   `json:"category" form:"category"`
	CountInStock    int      `json:"countInStock" form:"countInStock" binding:"gte=0"`
	Rating          float64  `json:"rating" form:"rating" binding:"gte=0"`
	NumReviews      int      `json:"numReviews" form:"numReviews" binding:"gte=0"`
	IsFeatured      bool     `json:"isFeatured" form:"isFeatured"`
}

// ReplacementFields devuelve el $set usado por el reemplazo completo.
// _id y dateCreated no se tocan.
func (p *Product) ReplacementFields() bson.M {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return bson.M{
		"name":            p.Name,
		"description":     p.Description,
		"richDescription": p.RichDescription,
		"image":           p.Image,
		"images":          images,
		"brand":           p.Brand,
		"price":           p.Price,
		"category":        p.CategoryID,
		"countInStock":    p.CountInStock,
		"rating":          p.Rating,
		"numReviews":      p.NumReviews,
		"isFeatured":      p.IsFeatured,
	}
}

// ProductFilter describe las consultas de listado: por categorías, destacados y límite.
// Limit 0 significa sin límite.
type ProductFilter struct {
	CategoryIDs  []primitive.ObjectID
	FeaturedOnly bool
	Limit        int64
}
