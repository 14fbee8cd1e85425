package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category pertenece a otro módulo; aquí solo se lee para validar y poblar productos.
type Category struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Icon  string             `json:"icon,omitempty" bson:"icon,omitempty"`
	Color string             `json:"color,omitempty" bson:"color,omitempty"`
}
