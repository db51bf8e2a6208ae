package router

import (
	"net/http"

	"trader-storefront/app/controller"
)

type Controllers struct {
	Storefront *controller.StorefrontController
	Receipt    *controller.ReceiptController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Storefront page and its HTML form actions
	mux.HandleFunc("/", controllers.Storefront.Index)
	mux.HandleFunc("/order", controllers.Storefront.OrderForm)
	mux.HandleFunc("/quantities", controllers.Storefront.UpdateQuantities)
	mux.HandleFunc("/clear", controllers.Storefront.Clear)
	mux.HandleFunc("/catalog/refresh", controllers.Storefront.RefreshCatalog)

	// JSON API used for incremental updates
	mux.HandleFunc("/api/view", controllers.Storefront.View)
	mux.HandleFunc("/api/quantity", controllers.Storefront.SetQuantity)
	mux.HandleFunc("/api/clear", controllers.Storefront.Clear)
	mux.HandleFunc("/api/catalog/refresh", controllers.Storefront.RefreshCatalog)
	mux.HandleFunc("/api/orders", controllers.Storefront.SubmitOrder)

	// Receipt view and exports
	mux.HandleFunc("/receipt", controllers.Receipt.Receipt)
	mux.HandleFunc("/receipt/pdf", controllers.Receipt.PDF)
	mux.HandleFunc("/receipt/png", controllers.Receipt.PNG)
}
