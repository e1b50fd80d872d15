package api

import (
	"net/http"

	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// VitaminsHandler handles vitamin endpoints.
type VitaminsHandler struct {
	Records store.Records
	clock
}

type vitaminRequest struct {
	SelectedType   string `json:"selectedType" validate:"max=100"`
	SelectedName   string `json:"selectedName" validate:"required,max=200"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
	ExpirationDate string `json:"expirationDate"`
}

func (h *VitaminsHandler) input(w http.ResponseWriter, r *http.Request) (model.VitaminInput, bool) {
	var req vitaminRequest
	if !decodeValid(w, r, &req) {
		return model.VitaminInput{}, false
	}
	exp, ok := h.parseDayField(w, "expirationDate", req.ExpirationDate)
	if !ok {
		return model.VitaminInput{}, false
	}
	return model.VitaminInput{
		SelectedType:   req.SelectedType,
		SelectedName:   req.SelectedName,
		Quantity:       req.Quantity,
		ExpirationDate: exp,
	}, true
}

// List handles GET /api/vitamins.
func (h *VitaminsHandler) List(w http.ResponseWriter, r *http.Request) {
	vits, err := h.Records.ListVitamins(r.Context(), ownerID(r))
	if err != nil {
		recordError(w, err, "vitamins")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(vits))
}

// Expiring handles GET /api/vitamins/expiring.
func (h *VitaminsHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	vits, err := h.Records.ListVitaminsExpiring(r.Context(), ownerID(r), today, today.AddDays(1))
	if err != nil {
		recordError(w, err, "vitamins")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(vits))
}

// Create handles POST /api/vitamins.
func (h *VitaminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	vit, err := h.Records.CreateVitamin(r.Context(), ownerID(r), in)
	if err != nil {
		recordError(w, err, "vitamin")
		return
	}
	jsonResponse(w, http.StatusCreated, vit)
}

// Get handles GET /api/vitamins/{id}.
func (h *VitaminsHandler) Get(w http.ResponseWriter, r *http.Request) {
	vit, err := h.Records.GetVitamin(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		recordError(w, err, "vitamin")
		return
	}
	jsonResponse(w, http.StatusOK, vit)
}

// Update handles PUT /api/vitamins/{id}.
func (h *VitaminsHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	vit, err := h.Records.UpdateVitamin(r.Context(), ownerID(r), r.PathValue("id"), in)
	if err != nil {
		recordError(w, err, "vitamin")
		return
	}
	jsonResponse(w, http.StatusOK, vit)
}

// Delete handles DELETE /api/vitamins/{id}.
func (h *VitaminsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Records.DeleteVitamin(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		recordError(w, err, "vitamin")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "vitamin deleted"})
}
