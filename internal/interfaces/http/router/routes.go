package router

import (
	"github.com/exoorder/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoints mounted by APIGroups
type Handlers struct {
	System    *handler.SystemHandler
	Settings  *handler.SettingsHandler
	Catalog   *handler.CatalogHandler
	Banks     *handler.BankHandler
	OrderForm *handler.OrderFormHandler
	Customer  *handler.CustomerHandler
}

// APIGroups returns the route groups of the order API
func APIGroups(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.GetSystemInfo)

	settings := NewDomainGroup("settings", "/settings")
	settings.GET("/api-key", h.Settings.GetAPIKey)
	settings.PUT("/api-key", h.Settings.SetAPIKey)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", h.Catalog.ListProducts)
	catalog.POST("/products/refresh", h.Catalog.Refresh)

	banks := NewDomainGroup("banks", "/banks")
	banks.GET("", h.Banks.List)

	orders := NewDomainGroup("orders", "/orders")
	forms := orders.Group("forms", "/forms")
	forms.POST("", h.OrderForm.Create)
	forms.GET("/:id", h.OrderForm.Get)
	forms.PATCH("/:id", h.OrderForm.Update)
	forms.DELETE("/:id", h.OrderForm.Discard)
	forms.POST("/:id/items", h.OrderForm.AddLineItem)
	forms.PATCH("/:id/items/:itemId", h.OrderForm.UpdateLineItem)
	forms.DELETE("/:id/items/:itemId", h.OrderForm.RemoveLineItem)
	forms.GET("/:id/preview", h.OrderForm.Preview)
	forms.GET("/:id/backup", h.OrderForm.Backup)
	forms.POST("/:id/import", h.OrderForm.Import)
	forms.POST("/:id/submit", h.OrderForm.Submit)

	customers := NewDomainGroup("customers", "/customers")
	customers.POST("", h.Customer.Submit)

	return []RouteRegistrar{system, settings, catalog, banks, orders, customers}
}
