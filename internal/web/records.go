package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/lekarna/internal/auth"
	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// recordMissing writes the response for a failed single-record lookup and
// reports whether it did.
func recordMissing(w http.ResponseWriter, err error, what string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, what+" not found", http.StatusNotFound)
	default:
		slog.Error("failed to load record", "record", what, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return true
}

// formQuantity reads a whole number no smaller than least. A blank field is
// zero.
func formQuantity(r *http.Request, least int) (int, bool) {
	raw := strings.TrimSpace(r.FormValue("quantity"))
	if raw == "" {
		return 0, least <= 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < least {
		return 0, false
	}
	return n, true
}

// Medications

type medicationsData struct {
	PageData
	Medications []model.Medication
}

type medicationEditData struct {
	PageData
	Medication *model.Medication
}

func (s *Server) renderMedications(w http.ResponseWriter, r *http.Request, status int, problem string) {
	claims := GetWebClaims(r.Context())
	meds, err := s.Records.ListMedications(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list medications", "user", claims.UserID, "error", err)
		if problem == "" {
			problem = "Could not load medications."
		}
	}

	s.Templates.RenderStatus(w, status, "medications.html", &medicationsData{
		PageData:    PageData{Title: "Medications", User: claims, Error: problem},
		Medications: meds,
	})
}

func (s *Server) renderMedicationEdit(w http.ResponseWriter, status int, claims *auth.Claims, m *model.Medication, problem string) {
	s.Templates.RenderStatus(w, status, "medication_edit.html", &medicationEditData{
		PageData:   PageData{Title: m.Name, User: claims, Error: problem},
		Medication: m,
	})
}

// medicationForm reads the medication form. problem is empty when the input
// is usable.
func (s *Server) medicationForm(r *http.Request) (in model.MedicationInput, problem string) {
	in = model.MedicationInput{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Dose:       strings.TrimSpace(r.FormValue("dose")),
		TakenFor:   strings.TrimSpace(r.FormValue("taken_for")),
		Frequency:  strings.TrimSpace(r.FormValue("frequency")),
		TimesTaken: strings.TrimSpace(r.FormValue("times_taken")),
	}
	if in.Name == "" {
		return in, "Name is required."
	}
	stop, err := model.ParseOptionalDay(r.FormValue("date_stop"), s.Aggregator.Location())
	if err != nil {
		return in, "Invalid stop date."
	}
	in.DateStop = stop
	return in, ""
}

// MedicationsPage handles GET /medications.
func (s *Server) MedicationsPage(w http.ResponseWriter, r *http.Request) {
	s.renderMedications(w, r, http.StatusOK, "")
}

// MedicationCreateSubmit handles POST /medications.
func (s *Server) MedicationCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	in, problem := s.medicationForm(r)
	if problem != "" {
		s.renderMedications(w, r, http.StatusBadRequest, problem)
		return
	}

	m, err := s.Records.CreateMedication(r.Context(), claims.UserID, in)
	if err != nil {
		slog.Error("failed to create medication", "user", claims.UserID, "error", err)
		s.renderMedications(w, r, http.StatusInternalServerError, "Could not save the medication.")
		return
	}

	slog.Info("medication created", "user", claims.UserID, "medication", m.ID)
	http.Redirect(w, r, "/medications", http.StatusSeeOther)
}

// MedicationEditPage handles GET /medications/{id}.
func (s *Server) MedicationEditPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	m, err := s.Records.GetMedication(r.Context(), claims.UserID, r.PathValue("id"))
	if recordMissing(w, err, "medication") {
		return
	}
	s.renderMedicationEdit(w, http.StatusOK, claims, m, "")
}

// MedicationUpdateSubmit handles POST /medications/{id}.
func (s *Server) MedicationUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	in, problem := s.medicationForm(r)
	if problem != "" {
		s.renderMedicationEdit(w, http.StatusBadRequest, claims, &model.Medication{
			ID: id, Name: in.Name, Dose: in.Dose, TakenFor: in.TakenFor,
			Frequency: in.Frequency, TimesTaken: in.TimesTaken, DateStop: in.DateStop,
		}, problem)
		return
	}

	if _, err := s.Records.UpdateMedication(r.Context(), claims.UserID, id, in); recordMissing(w, err, "medication") {
		return
	}

	slog.Info("medication updated", "user", claims.UserID, "medication", id)
	http.Redirect(w, r, "/medications", http.StatusSeeOther)
}

// MedicationDeleteSubmit handles POST /medications/{id}/delete. Deleting a
// medication that is already gone is not an error.
func (s *Server) MedicationDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	err := s.Records.DeleteMedication(r.Context(), claims.UserID, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("failed to delete medication", "user", claims.UserID, "error", err)
		s.renderMedications(w, r, http.StatusInternalServerError, "Could not delete the medication.")
		return
	}

	slog.Info("medication deleted", "user", claims.UserID, "medication", id)
	http.Redirect(w, r, "/medications", http.StatusSeeOther)
}

// Vitamins

type vitaminsData struct {
	PageData
	Vitamins []model.Vitamin
}

type vitaminEditData struct {
	PageData
	Vitamin *model.Vitamin
}

func (s *Server) renderVitamins(w http.ResponseWriter, r *http.Request, status int, problem string) {
	claims := GetWebClaims(r.Context())
	vits, err := s.Records.ListVitamins(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list vitamins", "user", claims.UserID, "error", err)
		if problem == "" {
			problem = "Could not load vitamins."
		}
	}

	s.Templates.RenderStatus(w, status, "vitamins.html", &vitaminsData{
		PageData: PageData{Title: "Vitamins", User: claims, Error: problem},
		Vitamins: vits,
	})
}

func (s *Server) renderVitaminEdit(w http.ResponseWriter, status int, claims *auth.Claims, v *model.Vitamin, problem string) {
	s.Templates.RenderStatus(w, status, "vitamin_edit.html", &vitaminEditData{
		PageData: PageData{Title: v.SelectedName, User: claims, Error: problem},
		Vitamin:  v,
	})
}

func (s *Server) vitaminForm(r *http.Request) (in model.VitaminInput, problem string) {
	in = model.VitaminInput{
		SelectedType: strings.TrimSpace(r.FormValue("selected_type")),
		SelectedName: strings.TrimSpace(r.FormValue("selected_name")),
	}
	if in.SelectedName == "" {
		return in, "Name is required."
	}
	quantity, ok := formQuantity(r, 0)
	if !ok {
		return in, "Quantity must be a whole number, zero or more."
	}
	in.Quantity = quantity
	expires, err := model.ParseOptionalDay(r.FormValue("expiration_date"), s.Aggregator.Location())
	if err != nil {
		return in, "Invalid expiration date."
	}
	in.ExpirationDate = expires
	return in, ""
}

// VitaminsPage handles GET /vitamins.
func (s *Server) VitaminsPage(w http.ResponseWriter, r *http.Request) {
	s.renderVitamins(w, r, http.StatusOK, "")
}

// VitaminCreateSubmit handles POST /vitamins.
func (s *Server) VitaminCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	in, problem := s.vitaminForm(r)
	if problem != "" {
		s.renderVitamins(w, r, http.StatusBadRequest, problem)
		return
	}

	v, err := s.Records.CreateVitamin(r.Context(), claims.UserID, in)
	if err != nil {
		slog.Error("failed to create vitamin", "user", claims.UserID, "error", err)
		s.renderVitamins(w, r, http.StatusInternalServerError, "Could not save the vitamin.")
		return
	}

	slog.Info("vitamin created", "user", claims.UserID, "vitamin", v.ID)
	http.Redirect(w, r, "/vitamins", http.StatusSeeOther)
}

// VitaminEditPage handles GET /vitamins/{id}.
func (s *Server) VitaminEditPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	v, err := s.Records.GetVitamin(r.Context(), claims.UserID, r.PathValue("id"))
	if recordMissing(w, err, "vitamin") {
		return
	}
	s.renderVitaminEdit(w, http.StatusOK, claims, v, "")
}

// VitaminUpdateSubmit handles POST /vitamins/{id}.
func (s *Server) VitaminUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	in, problem := s.vitaminForm(r)
	if problem != "" {
		s.renderVitaminEdit(w, http.StatusBadRequest, claims, &model.Vitamin{
			ID: id, SelectedType: in.SelectedType, SelectedName: in.SelectedName,
			Quantity: in.Quantity, ExpirationDate: in.ExpirationDate,
		}, problem)
		return
	}

	if _, err := s.Records.UpdateVitamin(r.Context(), claims.UserID, id, in); recordMissing(w, err, "vitamin") {
		return
	}

	slog.Info("vitamin updated", "user", claims.UserID, "vitamin", id)
	http.Redirect(w, r, "/vitamins", http.StatusSeeOther)
}

// VitaminDeleteSubmit handles POST /vitamins/{id}/delete.
func (s *Server) VitaminDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	err := s.Records.DeleteVitamin(r.Context(), claims.UserID, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("failed to delete vitamin", "user", claims.UserID, "error", err)
		s.renderVitamins(w, r, http.StatusInternalServerError, "Could not delete the vitamin.")
		return
	}

	slog.Info("vitamin deleted", "user", claims.UserID, "vitamin", id)
	http.Redirect(w, r, "/vitamins", http.StatusSeeOther)
}

// Health products

type productsData struct {
	PageData
	Category string
	Products []model.Product
}

type productEditData struct {
	PageData
	Product *model.Product
}

func (s *Server) renderProducts(w http.ResponseWriter, r *http.Request, status int, problem string) {
	claims := GetWebClaims(r.Context())
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	products, err := s.Records.ListProducts(r.Context(), claims.UserID, category)
	if err != nil {
		slog.Error("failed to list health products", "user", claims.UserID, "error", err)
		if problem == "" {
			problem = "Could not load health products."
		}
	}

	s.Templates.RenderStatus(w, status, "products.html", &productsData{
		PageData: PageData{Title: "Health products", User: claims, Error: problem},
		Category: category,
		Products: products,
	})
}

func (s *Server) renderProductEdit(w http.ResponseWriter, status int, claims *auth.Claims, p *model.Product, problem string) {
	s.Templates.RenderStatus(w, status, "product_edit.html", &productEditData{
		PageData: PageData{Title: p.Name, User: claims, Error: problem},
		Product:  p,
	})
}

func productForm(r *http.Request) (in model.ProductInput, problem string) {
	in = model.ProductInput{
		Category: strings.TrimSpace(r.FormValue("category")),
		Name:     strings.TrimSpace(r.FormValue("name")),
	}
	if in.Category == "" || in.Name == "" {
		return in, "Category and name are required."
	}
	quantity, ok := formQuantity(r, 1)
	if !ok {
		return in, "Quantity must be a whole number above zero."
	}
	in.Quantity = quantity
	return in, ""
}

// ProductsPage handles GET /health-products with an optional category filter.
func (s *Server) ProductsPage(w http.ResponseWriter, r *http.Request) {
	s.renderProducts(w, r, http.StatusOK, "")
}

// ProductCreateSubmit handles POST /health-products.
func (s *Server) ProductCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	in, problem := productForm(r)
	if problem != "" {
		s.renderProducts(w, r, http.StatusBadRequest, problem)
		return
	}

	p, err := s.Records.CreateProduct(r.Context(), claims.UserID, in)
	if err != nil {
		slog.Error("failed to create health product", "user", claims.UserID, "error", err)
		s.renderProducts(w, r, http.StatusInternalServerError, "Could not save the health product.")
		return
	}

	slog.Info("health product created", "user", claims.UserID, "product", p.ID)
	http.Redirect(w, r, "/health-products", http.StatusSeeOther)
}

// ProductEditPage handles GET /health-products/{id}.
func (s *Server) ProductEditPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	p, err := s.Records.GetProduct(r.Context(), claims.UserID, r.PathValue("id"))
	if recordMissing(w, err, "health product") {
		return
	}
	s.renderProductEdit(w, http.StatusOK, claims, p, "")
}

// ProductUpdateSubmit handles POST /health-products/{id}.
func (s *Server) ProductUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	in, problem := productForm(r)
	if problem != "" {
		s.renderProductEdit(w, http.StatusBadRequest, claims, &model.Product{
			ID: id, Category: in.Category, Name: in.Name, Quantity: in.Quantity,
		}, problem)
		return
	}

	if _, err := s.Records.UpdateProduct(r.Context(), claims.UserID, id, in); recordMissing(w, err, "health product") {
		return
	}

	slog.Info("health product updated", "user", claims.UserID, "product", id)
	http.Redirect(w, r, "/health-products", http.StatusSeeOther)
}

// ProductDeleteSubmit handles POST /health-products/{id}/delete.
func (s *Server) ProductDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	err := s.Records.DeleteProduct(r.Context(), claims.UserID, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("failed to delete health product", "user", claims.UserID, "error", err)
		s.renderProducts(w, r, http.StatusInternalServerError, "Could not delete the health product.")
		return
	}

	slog.Info("health product deleted", "user", claims.UserID, "product", id)
	http.Redirect(w, r, "/health-products", http.StatusSeeOther)
}
