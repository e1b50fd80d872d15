package api

import (
	"net/http"

	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// MedicationsHandler handles medication endpoints.
type MedicationsHandler struct {
	Records store.Records
	clock
}

type medicationRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Dose       string `json:"dose" validate:"max=100"`
	TakenFor   string `json:"takenFor" validate:"max=200"`
	Frequency  string `json:"frequency" validate:"max=100"`
	TimesTaken string `json:"timesTaken" validate:"max=100"`
	DateStop   string `json:"dateStop"`
}

func (h *MedicationsHandler) input(w http.ResponseWriter, r *http.Request) (model.MedicationInput, bool) {
	var req medicationRequest
	if !decodeValid(w, r, &req) {
		return model.MedicationInput{}, false
	}
	stop, ok := h.parseDayField(w, "dateStop", req.DateStop)
	if !ok {
		return model.MedicationInput{}, false
	}
	return model.MedicationInput{
		Name:       req.Name,
		Dose:       req.Dose,
		TakenFor:   req.TakenFor,
		Frequency:  req.Frequency,
		TimesTaken: req.TimesTaken,
		DateStop:   stop,
	}, true
}

// List handles GET /api/medications.
func (h *MedicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := h.Records.ListMedications(r.Context(), ownerID(r))
	if err != nil {
		recordError(w, err, "medications")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(meds))
}

// Expiring handles GET /api/medications/expiring: medications whose last day
// is today or tomorrow.
func (h *MedicationsHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	meds, err := h.Records.ListMedicationsExpiring(r.Context(), ownerID(r), today, today.AddDays(1))
	if err != nil {
		recordError(w, err, "medications")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(meds))
}

// Create handles POST /api/medications.
func (h *MedicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	med, err := h.Records.CreateMedication(r.Context(), ownerID(r), in)
	if err != nil {
		recordError(w, err, "medication")
		return
	}
	jsonResponse(w, http.StatusCreated, med)
}

// Get handles GET /api/medications/{id}.
func (h *MedicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	med, err := h.Records.GetMedication(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		recordError(w, err, "medication")
		return
	}
	jsonResponse(w, http.StatusOK, med)
}

// Update handles PUT /api/medications/{id}.
func (h *MedicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	med, err := h.Records.UpdateMedication(r.Context(), ownerID(r), r.PathValue("id"), in)
	if err != nil {
		recordError(w, err, "medication")
		return
	}
	jsonResponse(w, http.StatusOK, med)
}

// Delete handles DELETE /api/medications/{id}.
func (h *MedicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Records.DeleteMedication(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		recordError(w, err, "medication")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "medication deleted"})
}
