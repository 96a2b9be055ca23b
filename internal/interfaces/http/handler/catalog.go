package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/exoorder/backend/internal/application/catalog"
	"github.com/exoorder/backend/internal/interfaces/http/dto"
)

// defaultSuggestLimit applies when q is given without a limit
const defaultSuggestLimit = 10

// CatalogHandler serves the cached product list
type CatalogHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{
		productService: productService,
	}
}

// ListProducts returns the whole list, or suggestions when q is set
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query dto.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	var products []string
	if query.Q == "" {
		products = h.productService.Products()
		if query.Limit > 0 && len(products) > query.Limit {
			products = products[:query.Limit]
		}
	} else {
		limit := query.Limit
		if limit == 0 {
			limit = defaultSuggestLimit
		}
		products = h.productService.Suggest(query.Q, limit)
	}
	if products == nil {
		products = []string{}
	}
	h.SuccessList(c, products, len(products))
}

// Refresh fetches the list from the backend. A failed fetch still answers
// 200: the cached list is returned with the transport anomaly attached.
func (h *CatalogHandler) Refresh(c *gin.Context) {
	h.Success(c, h.productService.Refresh(c.Request.Context()))
}
