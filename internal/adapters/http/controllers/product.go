package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasvieira/inventory/internal/adapters/http/handlers"
	"github.com/lucasvieira/inventory/internal/core/domain"
	"github.com/lucasvieira/inventory/internal/core/dto"
	"github.com/lucasvieira/inventory/internal/core/service"
	"github.com/lucasvieira/inventory/internal/core/serviceerrors"
)

type ProductController struct {
	productService *service.ProductService
}

type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Quantity      int       `json:"quantity"`
	PurchasePrice int       `json:"purchase_price"`
	SalePrice     int       `json:"sale_price"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductDetailResponse struct {
	ProductResponse
	Operations []OperationResponse `json:"operations"`
}

func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            string(product.ID),
		Name:          product.Name,
		Description:   product.Description,
		Quantity:      product.Quantity,
		PurchasePrice: int(product.PurchasePrice),
		SalePrice:     int(product.SalePrice),
		Active:        product.Active,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// CreateProduct godoc
// @Summary     Create a product
// @Description Creates a new product with no stock and no prices
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       request body     dto.CreateProductRequest true "Product data"
// @Success     201     {object} ProductResponse
// @Failure     400     {object} handlers.ErrorResponse
// @Failure     409     {object} handlers.ErrorResponse
// @Failure     500     {object} handlers.ErrorResponse
// @Router      /api/v1/products [post]
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var request dto.CreateProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	product, err := pc.productService.CreateProduct(c.Request.Context(), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewProductResponse(product))
}

// GetAll godoc
// @Summary     List active products
// @Description Returns all active products
// @Tags        products
// @Produce     json
// @Success     200 {array} ProductResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /api/v1/products [get]
func (pc *ProductController) GetAll(c *gin.Context) {
	products, err := pc.productService.GetAllActive(c.Request.Context())
	if err != nil {
		handlers.HandleError(c, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, product := range products {
		response[i] = NewProductResponse(product)
	}

	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary     Get product by ID
// @Description Returns a product together with its operation history
// @Tags        products
// @Produce     json
// @Param       id  path     string true "Product ID"
// @Success     200 {object} ProductDetailResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id} [get]
func (pc *ProductController) GetByID(c *gin.Context) {
	productID := c.Param("id")
	if !domain.ValidateID(productID) {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError("Invalid product ID"))
		return
	}
	product, operations, err := pc.productService.GetWithOperations(c.Request.Context(), domain.ID(productID))
	if err != nil {
		handlers.HandleError(c, err)
		return
	}

	response := ProductDetailResponse{
		ProductResponse: NewProductResponse(product),
		Operations:      make([]OperationResponse, len(operations)),
	}
	for i, op := range operations {
		response.Operations[i] = NewOperationResponse(op)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProduct godoc
// @Summary     Update product details
// @Description Updates the name and description of a product. Stock and
// @Description prices only change through purchase and sale transactions.
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       id      path     string                   true "Product ID"
// @Param       request body     dto.UpdateProductRequest true "Fields to update"
// @Success     200     {object} ProductResponse
// @Failure     400     {object} handlers.ErrorResponse
// @Failure     404     {object} handlers.ErrorResponse
// @Failure     409     {object} handlers.ErrorResponse
// @Failure     500     {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id} [patch]
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")
	if !domain.ValidateID(productID) {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError("Invalid product ID"))
		return
	}
	var request dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	product, err := pc.productService.UpdateProduct(c.Request.Context(), domain.ID(productID), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(product))
}

// DeactivateProduct godoc
// @Summary     Deactivate a product
// @Description Soft-deletes a product. Its operation history is preserved.
// @Tags        products
// @Produce     json
// @Param       id  path     string true "Product ID"
// @Success     200 {object} ProductResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id} [delete]
func (pc *ProductController) DeactivateProduct(c *gin.Context) {
	productID := c.Param("id")
	if !domain.ValidateID(productID) {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError("Invalid product ID"))
		return
	}
	product, err := pc.productService.DeactivateProduct(c.Request.Context(), domain.ID(productID))
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(product))
}
