package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hostel-catalog/internal/models"
)

const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"

	readTimeout  = 3 * time.Second
	writeTimeout = 5 * time.Second
	listTimeout  = 10 * time.Second
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection(ProductsCollection),
	}
}

// Insert crea un nuevo producto y le asigna ID y fecha de creación
func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	product.ID = primitive.NewObjectID()
	if product.DateCreated.IsZero() {
		product.DateCreated = time.Now().UTC().Truncate(time.Millisecond)
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	product.Category = nil

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// FindByID obtiene un producto por ID con su categoría poblada
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	products, err := r.aggregate(ctx, bson.M{"_id": id}, 1)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return &products[0], nil
}

// FindMany lista productos según el filtro. Una lista vacía no es un error.
func (r *ProductRepository) FindMany(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	match := bson.M{}
	if len(filter.CategoryIDs) > 0 {
		match["category"] = bson.M{"$in": filter.CategoryIDs}
	}
	if filter.FeaturedOnly {
		match["isFeatured"] = true
	}

	return r.aggregate(ctx, match, filter.Limit)
}

// CountAll cuenta todos los productos
func (r *ProductRepository) CountAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// ReplaceByID reemplaza todos los campos editables de un producto
func (r *ProductRepository) ReplaceByID(ctx context.Context, id primitive.ObjectID, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": product.ReplacementFields()},
	)
	if err != nil {
		return fmt.Errorf("replace product %s: %w", id.Hex(), err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteByID elimina un producto definitivamente
func (r *ProductRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id.Hex(), err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// aggregate ejecuta el match y resuelve la categoría con $lookup (populate)
func (r *ProductRepository) aggregate(ctx context.Context, match bson.M, limit int64) ([]models.Product, error) {
	cursor, err := r.collection.Aggregate(ctx, populatePipeline(match, limit))
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func populatePipeline(match bson.M, limit int64) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	return append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CategoriesCollection},
			{Key: "localField", Value: "category"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "categoryDoc"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$categoryDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)
}
