package api

import (
	"net/http"
	"strings"

	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// ProductsHandler handles health product endpoints.
type ProductsHandler struct {
	Records store.Records
}

type productRequest struct {
	Category string `json:"category" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=200"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

func (h *ProductsHandler) input(w http.ResponseWriter, r *http.Request) (model.ProductInput, bool) {
	var req productRequest
	if !decodeValid(w, r, &req) {
		return model.ProductInput{}, false
	}
	return model.ProductInput{
		Category: strings.TrimSpace(req.Category),
		Name:     strings.TrimSpace(req.Name),
		Quantity: req.Quantity,
	}, true
}

// List handles GET /api/health-products with an optional category filter.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	products, err := h.Records.ListProducts(r.Context(), ownerID(r), category)
	if err != nil {
		recordError(w, err, "health products")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(products))
}

// Create handles POST /api/health-products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	p, err := h.Records.CreateProduct(r.Context(), ownerID(r), in)
	if err != nil {
		recordError(w, err, "health product")
		return
	}
	jsonResponse(w, http.StatusCreated, p)
}

// Get handles GET /api/health-products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Records.GetProduct(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		recordError(w, err, "health product")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Update handles PUT /api/health-products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	p, err := h.Records.UpdateProduct(r.Context(), ownerID(r), r.PathValue("id"), in)
	if err != nil {
		recordError(w, err, "health product")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/health-products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Records.DeleteProduct(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		recordError(w, err, "health product")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "health product deleted"})
}
