package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hostel-catalog/internal/apperrors"
)

// Estructuras para respuestas
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"product deleted"`
}

type ErrorResponse struct {
	Success bool     `json:"success" example:"false"`
	Code    string   `json:"code" example:"NOT_FOUND"`
	Message string   `json:"message" example:"product not found"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Success: true, Message: message})
}

// respondError traduce cualquier error a la envoltura de falla.
// La causa solo se expone en fallas de almacenamiento.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    apperrors.CodeInternal,
			Message: "internal server error",
		})
		return
	}

	resp := ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeStorage && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}
	c.JSON(appErr.StatusCode, resp)
}

// --- Métodos auxiliares ---

// parseObjectID convierte el parámetro :id a ObjectID
func parseObjectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.MalformedIdentifier("invalid product id")
	}
	return id, nil
}

// parseCategoryIDs lee ?categories=a,b,c ignorando entradas vacías
func parseCategoryIDs(raw string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(part)
		if err != nil {
			return nil, apperrors.MalformedIdentifier("invalid category id").WithDetails(part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// bindError distingue errores de validación de cuerpos mal formados
func bindError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.FromValidation(err)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.Validation("request body too large").
			WithDetails("limit is " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes")
	}
	return apperrors.Validation("invalid request body").WithDetails(err.Error())
}

// requestScheme respeta X-Forwarded-Proto cuando hay un proxy delante
func requestScheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return "http"
}
