package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hostel-catalog/internal/apperrors"
	"hostel-catalog/internal/models"
	"hostel-catalog/internal/service"
)

type ProductService interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context, categoryIDs []primitive.ObjectID) ([]models.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	FeaturedProducts(ctx context.Context, count int64) ([]models.Product, error)
	CreateProduct(ctx context.Context, input models.ProductInput, upload *service.ImageUpload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, input models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

// margen para los campos de texto y los encabezados del multipart
const multipartOverhead = 64 << 10

type ProductHandler struct {
	service        ProductService
	maxUploadBytes int64
}

// NewProductHandler limita el cuerpo del alta a maxUploadBytes más el margen del formulario.
// Con maxUploadBytes <= 0 no hay límite.
func NewProductHandler(svc ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// CreateProduct godoc
// @Summary      Create a product
// @Description  Accepts JSON or multipart/form-data. The optional "image" file must be JPEG or PNG.
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Param        body   body      models.ProductInput  false  "Product data (JSON)"
// @Param        image  formData  file                 false  "Product photo"
// @Success      201    {object}  SuccessResponse{data=models.Product}
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	// cortar antes de que gin vuelque todo el archivo a disco
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	var input models.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, bindError(err))
		return
	}

	var upload *service.ImageUpload
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		file, err := c.FormFile("image")
		switch {
		case err == nil:
			upload = &service.ImageUpload{
				File:   file,
				Scheme: requestScheme(c),
				Host:   c.Request.Host,
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			respondError(c, apperrors.Validation("invalid multipart form").WithDetails(err.Error()))
			return
		}
	}

	product, err := h.service.CreateProduct(c.Request.Context(), input, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, product)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID (24 hex chars)"
// @Success      200  {object}  SuccessResponse{data=models.Product}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, product)
}

// ListProducts godoc
// @Summary      List products
// @Description  Returns every product, or only those whose category is in the comma separated list.
// @Tags         products
// @Produce      json
// @Param        categories  query     string  false  "Comma separated category IDs"
// @Success      200         {object}  SuccessResponse{data=[]models.Product}
// @Failure      400         {object}  ErrorResponse
// @Failure      500         {object}  ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	categoryIDs, err := parseCategoryIDs(c.Query("categories"))
	if err != nil {
		respondError(c, err)
		return
	}

	products, err := h.service.ListProducts(c.Request.Context(), categoryIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, products)
}

// UpdateProduct godoc
// @Summary      Replace a product
// @Description  Full replacement of every editable field. Category is required.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Product ID (24 hex chars)"
// @Param        body  body      models.ProductInput  true  "Product data"
// @Success      200   {object}  SuccessResponse{data=models.Product}
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID (24 hex chars)"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "product deleted")
}

// CountProducts godoc
// @Summary      Count products
// @Tags         products
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=int}
// @Failure      500  {object}  ErrorResponse
// @Router       /products/get/count [get]
func (h *ProductHandler) CountProducts(c *gin.Context) {
	total, err := h.service.CountProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, total)
}

// FeaturedProducts godoc
// @Summary      List featured products
// @Tags         products
// @Produce      json
// @Param        count  path      int  true  "Maximum number of products"
// @Success      200    {object}  SuccessResponse{data=[]models.Product}
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /products/get/featured/{count} [get]
func (h *ProductHandler) FeaturedProducts(c *gin.Context) {
	count, err := strconv.ParseInt(c.Param("count"), 10, 64)
	if err != nil || count < 0 {
		respondError(c, apperrors.Validation("count must be a non-negative integer"))
		return
	}

	products, err := h.service.FeaturedProducts(c.Request.Context(), count)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, products)
}
