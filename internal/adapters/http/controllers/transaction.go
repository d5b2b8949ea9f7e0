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

type TransactionController struct {
	transactionService *service.TransactionService
}

type OperationResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Kind      string    `json:"kind"`
	Quantity  int       `json:"quantity"`
	UnitPrice int       `json:"unit_price"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionResponse struct {
	Operation OperationResponse `json:"operation"`
	Product   ProductResponse   `json:"product"`
}

func NewOperationResponse(op *domain.Operation) OperationResponse {
	return OperationResponse{
		ID:        string(op.ID),
		ProductID: string(op.ProductID),
		Kind:      string(op.Kind),
		Quantity:  op.Quantity,
		UnitPrice: int(op.UnitPrice),
		Total:     int(op.Total),
		Timestamp: op.Timestamp,
		CreatedAt: op.CreatedAt,
	}
}

func NewTransactionResponse(result *service.TransactionResult) TransactionResponse {
	return TransactionResponse{
		Operation: NewOperationResponse(result.Operation),
		Product:   NewProductResponse(result.Product),
	}
}

func NewTransactionController(transactionService *service.TransactionService) *TransactionController {
	return &TransactionController{transactionService: transactionService}
}

// Purchase godoc
// @Summary     Register a purchase
// @Description Adds stock to a product at the given unit cost, repricing it
// @Description when the cost requires a higher margin
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key header   string              false "Idempotency key"
// @Param       id              path     string              true  "Product ID"
// @Param       request         body     dto.PurchaseRequest true  "Purchase data"
// @Success     201             {object} TransactionResponse
// @Failure     400             {object} handlers.ErrorResponse
// @Failure     404             {object} handlers.ErrorResponse
// @Failure     409             {object} handlers.ErrorResponse
// @Failure     422             {object} handlers.ErrorResponse
// @Failure     429             {object} handlers.ErrorResponse
// @Failure     500             {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id}/purchase [post]
func (tc *TransactionController) Purchase(c *gin.Context) {
	productID := c.Param("id")
	if !domain.ValidateID(productID) {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError("Invalid product ID"))
		return
	}
	var request dto.PurchaseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	idempotencyKey := c.GetHeader("Idempotency-Key")
	result, err := tc.transactionService.Purchase(c.Request.Context(), idempotencyKey, domain.ID(productID), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTransactionResponse(result))
}

// Sale godoc
// @Summary     Register a sale
// @Description Deducts stock from a product at its current sale price
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key header   string          false "Idempotency key"
// @Param       id              path     string          true  "Product ID"
// @Param       request         body     dto.SaleRequest true  "Sale data"
// @Success     201             {object} TransactionResponse
// @Failure     400             {object} handlers.ErrorResponse
// @Failure     404             {object} handlers.ErrorResponse
// @Failure     409             {object} handlers.ErrorResponse
// @Failure     422             {object} handlers.ErrorResponse
// @Failure     429             {object} handlers.ErrorResponse
// @Failure     500             {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id}/sale [post]
func (tc *TransactionController) Sale(c *gin.Context) {
	productID := c.Param("id")
	if !domain.ValidateID(productID) {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError("Invalid product ID"))
		return
	}
	var request dto.SaleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	idempotencyKey := c.GetHeader("Idempotency-Key")
	result, err := tc.transactionService.Sale(c.Request.Context(), idempotencyKey, domain.ID(productID), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTransactionResponse(result))
}
