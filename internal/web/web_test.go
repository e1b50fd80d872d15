package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lekarna/internal/auth"
	"github.com/erazemk/lekarna/internal/db"
	"github.com/erazemk/lekarna/internal/expiry"
	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

const testJWTSecret = "test-secret"

var testNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	handler  http.Handler
	database *sql.DB
	records  *store.SQLRecords
	userID   string
	token    string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	records := store.NewSQLRecords(database)

	handler, err := NewRouter(&Server{
		DB:         database,
		Records:    records,
		Aggregator: expiry.New(records, time.UTC),
		JWTSecret:  testJWTSecret,
		Now:        func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("creating router: %v", err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user, err := store.CreateUser(context.Background(), database, "ana@example.com", "Ana", string(hash))
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	token, err := auth.GenerateToken(testJWTSecret, time.Hour, user.ID, user.Email)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	return &testEnv{handler: handler, database: database, records: records, userID: user.ID, token: token}
}

func (e *testEnv) request(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: e.token})
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func day(s string) *civil.Date {
	d, _ := civil.ParseDate(s)
	return &d
}

func TestPagesRequireLogin(t *testing.T) {
	env := setupTestEnv(t)

	for _, path := range []string{"/", "/calendar", "/settings", "/medications", "/vitamins/abc", "/health-products"} {
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("%s: expected redirect to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestLoginSubmit(t *testing.T) {
	env := setupTestEnv(t)

	form := url.Values{"email": {"ANA@example.com"}, "password": {"password123"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected auth cookie to be set")
	}

	form.Set("password", "wrong")
	req = httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Wrong email or password.") {
		t.Errorf("expected login error, got %d", rec.Code)
	}
}

func TestDashboardDrawer(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	vit, err := env.records.CreateVitamin(ctx, env.userID, model.VitaminInput{
		SelectedName: "Vitamin D", Quantity: 10, ExpirationDate: day("2024-05-10"),
	})
	if err != nil {
		t.Fatalf("creating vitamin: %v", err)
	}
	if _, err := env.records.CreateMedication(ctx, env.userID, model.MedicationInput{
		Name: "Aspirin", DateStop: day("2024-05-20"),
	}); err != nil {
		t.Fatalf("creating medication: %v", err)
	}

	rec := env.request(t, "GET", "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Vitamin D") || !strings.Contains(body, "Expires today") {
		t.Error("expected vitamin expiring today in drawer")
	}
	if strings.Contains(body, "Aspirin") {
		t.Error("medication ending in ten days must not be in drawer")
	}

	rec = env.request(t, "POST", "/expiring/"+vit.ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after delete, got %d", rec.Code)
	}
	if _, err := env.records.GetVitamin(ctx, env.userID, vit.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected vitamin to be deleted, got %v", err)
	}

	// The item has left the drawer, so a repeated delete only refreshes it.
	rec = env.request(t, "POST", "/expiring/"+vit.ID+"/delete", url.Values{})
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "The list was refreshed. Try again.") {
		t.Errorf("expected refresh notice on repeated delete, got %d", rec.Code)
	}

	rec = env.request(t, "GET", "/", nil)
	if !strings.Contains(rec.Body.String(), "Nothing expires today or tomorrow.") {
		t.Error("expected empty drawer")
	}
}

func TestDeleteExpiringStaleDrawer(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	vit, err := env.records.CreateVitamin(ctx, env.userID, model.VitaminInput{
		SelectedName: "Magnesium", Quantity: 30, ExpirationDate: day("2024-05-11"),
	})
	if err != nil {
		t.Fatalf("creating vitamin: %v", err)
	}

	// No dashboard was rendered yet, so the drawer does not know the item.
	rec := env.request(t, "POST", "/expiring/"+vit.ID+"/delete", url.Values{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The list was refreshed. Try again.") {
		t.Error("expected refresh notice")
	}
	if !strings.Contains(body, "Magnesium") || !strings.Contains(body, "Expires tomorrow") {
		t.Error("expected the refreshed drawer to list the vitamin")
	}
	if _, err := env.records.GetVitamin(ctx, env.userID, vit.ID); err != nil {
		t.Fatalf("vitamin must not be deleted from a stale page: %v", err)
	}

	rec = env.request(t, "POST", "/expiring/"+vit.ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after retry, got %d", rec.Code)
	}
	if _, err := env.records.GetVitamin(ctx, env.userID, vit.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected vitamin to be deleted on retry, got %v", err)
	}
}

func TestDrawerSetEvictsIdleDrawers(t *testing.T) {
	ds := &drawerSet{ttl: time.Hour}
	start := testNow

	first := ds.get(nil, "ana", start)
	if ds.get(nil, "ana", start.Add(59*time.Minute)) != first {
		t.Fatal("expected the same drawer while in use")
	}
	ds.get(nil, "bor", start.Add(90*time.Minute))

	// ana was last used 59 minutes in, more than an hour before this call.
	ds.get(nil, "bor", start.Add(2*time.Hour+time.Minute))
	if ds.size() != 1 {
		t.Fatalf("expected only the active drawer to remain, got %d", ds.size())
	}
	if ds.get(nil, "ana", start.Add(2*time.Hour+time.Minute)) == first {
		t.Error("expected a fresh drawer after eviction")
	}

	ds.drop("ana")
	ds.drop("bor")
	if ds.size() != 0 {
		t.Errorf("expected no drawers after drop, got %d", ds.size())
	}
}

func TestCalendarPage(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	if _, err := env.records.CreateMedication(ctx, env.userID, model.MedicationInput{
		Name: "Amoxicillin", DateStop: day("2024-05-15"),
	}); err != nil {
		t.Fatalf("creating medication: %v", err)
	}

	rec := env.request(t, "GET", "/calendar", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "May 2024") || !strings.Contains(body, "Select a date to see items.") {
		t.Error("expected current month with no selection")
	}
	if !strings.Contains(body, expiry.KindMedication.Color()) {
		t.Error("expected a medication marker")
	}

	rec = env.request(t, "GET", "/calendar?date=2024-05-15", nil)
	if !strings.Contains(rec.Body.String(), "Amoxicillin") {
		t.Error("expected medication listed for selected date")
	}

	rec = env.request(t, "GET", "/calendar?date=2024-05-16", nil)
	if !strings.Contains(rec.Body.String(), "No items expire on this date.") {
		t.Error("expected empty message for unmarked date")
	}

	rec = env.request(t, "GET", "/calendar?month=2024-06", nil)
	if !strings.Contains(rec.Body.String(), "June 2024") {
		t.Error("expected June 2024")
	}

	for _, raw := range []string{"15.5.2024", "5/15/2024", "2024-02-30"} {
		rec = env.request(t, "GET", "/calendar?date="+raw, nil)
		body := rec.Body.String()
		if !strings.Contains(body, "Invalid date.") || !strings.Contains(body, "Select a date to see items.") {
			t.Errorf("date=%s: expected invalid date notice and no selection", raw)
		}
	}
}

func TestMonthGrid(t *testing.T) {
	first := civil.Date{Year: 2024, Month: time.May, Day: 1}
	today := civil.Date{Year: 2024, Month: time.May, Day: 10}
	cal := expiry.Calendar{
		today: {{ItemID: "v1", Kind: expiry.KindVitamin, ExpiresOn: today}},
	}

	weeks := monthGrid(first, today, nil, cal)
	if len(weeks) != 5 {
		t.Fatalf("expected 5 weeks for May 2024, got %d", len(weeks))
	}
	// May 1st 2024 is a Wednesday.
	if weeks[0][2].Day != first || weeks[0][1].InMonth {
		t.Errorf("unexpected first week: %+v", weeks[0])
	}
	last := weeks[len(weeks)-1]
	if last[6].Day != (civil.Date{Year: 2024, Month: time.June, Day: 2}) {
		t.Errorf("expected grid to end on June 2nd, got %s", last[6].Day)
	}

	cell := weeks[1][4]
	if cell.Day != today || !cell.Today || len(cell.Markers) != 1 || cell.Markers[0].Kind != expiry.KindVitamin {
		t.Errorf("unexpected cell for today: %+v", cell)
	}
}

func TestMedicationPages(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	rec := env.request(t, "POST", "/medications", url.Values{
		"name": {"Ibuprofen"}, "dose": {"400 mg"}, "frequency": {"twice a day"}, "date_stop": {"2024-05-20"},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/medications" {
		t.Fatalf("expected redirect to list, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	meds, err := env.records.ListMedications(ctx, env.userID)
	if err != nil || len(meds) != 1 {
		t.Fatalf("expected one medication, got %d (%v)", len(meds), err)
	}
	med := meds[0]
	if med.Dose != "400 mg" || med.DateStop == nil || *med.DateStop != *day("2024-05-20") {
		t.Errorf("unexpected medication: %+v", med)
	}

	rec = env.request(t, "GET", "/medications", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Ibuprofen") {
		t.Errorf("expected medication in list, got %d", rec.Code)
	}

	rec = env.request(t, "POST", "/medications", url.Values{"dose": {"1 tablet"}})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Name is required.") {
		t.Errorf("expected missing name error, got %d", rec.Code)
	}

	rec = env.request(t, "GET", "/medications/"+med.ID, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="2024-05-20"`) {
		t.Errorf("expected edit form with stop date, got %d", rec.Code)
	}

	rec = env.request(t, "POST", "/medications/"+med.ID, url.Values{"name": {"Ibuprofen"}, "date_stop": {"someday"}})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid stop date.") {
		t.Errorf("expected invalid date error, got %d", rec.Code)
	}

	rec = env.request(t, "POST", "/medications/"+med.ID, url.Values{"name": {"Ibuprofen forte"}, "dose": {"600 mg"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after update, got %d", rec.Code)
	}
	got, err := env.records.GetMedication(ctx, env.userID, med.ID)
	if err != nil {
		t.Fatalf("getting medication: %v", err)
	}
	if got.Name != "Ibuprofen forte" || got.Dose != "600 mg" || got.DateStop != nil {
		t.Errorf("unexpected medication after update: %+v", got)
	}

	rec = env.request(t, "GET", "/medications/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown medication, got %d", rec.Code)
	}
	rec = env.request(t, "POST", "/medications/missing", url.Values{"name": {"X"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 updating unknown medication, got %d", rec.Code)
	}

	rec = env.request(t, "POST", "/medications/"+med.ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after delete, got %d", rec.Code)
	}
	if _, err := env.records.GetMedication(ctx, env.userID, med.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected medication to be deleted, got %v", err)
	}
	rec = env.request(t, "POST", "/medications/"+med.ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected repeated delete to redirect, got %d", rec.Code)
	}
}

func TestVitaminPages(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	rec := env.request(t, "POST", "/vitamins", url.Values{
		"selected_name": {"Vitamin C"}, "selected_type": {"tablets"}, "quantity": {"60"}, "expiration_date": {"2024-05-11"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	vits, err := env.records.ListVitamins(ctx, env.userID)
	if err != nil || len(vits) != 1 {
		t.Fatalf("expected one vitamin, got %d (%v)", len(vits), err)
	}
	vit := vits[0]
	if vit.Quantity != 60 || vit.ExpirationDate == nil || *vit.ExpirationDate != *day("2024-05-11") {
		t.Errorf("unexpected vitamin: %+v", vit)
	}

	// A vitamin added on the vitamins page shows up in the dashboard drawer.
	rec = env.request(t, "GET", "/", nil)
	if !strings.Contains(rec.Body.String(), "Vitamin C") {
		t.Error("expected new vitamin in drawer")
	}

	for _, quantity := range []string{"-1", "many", "2.5"} {
		rec = env.request(t, "POST", "/vitamins", url.Values{"selected_name": {"Zinc"}, "quantity": {quantity}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("quantity %q: expected 400, got %d", quantity, rec.Code)
		}
	}

	rec = env.request(t, "POST", "/vitamins/"+vit.ID, url.Values{
		"selected_name": {"Vitamin C"}, "quantity": {"30"}, "expiration_date": {"2024-09-01"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after update, got %d", rec.Code)
	}
	got, err := env.records.GetVitamin(ctx, env.userID, vit.ID)
	if err != nil {
		t.Fatalf("getting vitamin: %v", err)
	}
	if got.Quantity != 30 || *got.ExpirationDate != *day("2024-09-01") {
		t.Errorf("unexpected vitamin after update: %+v", got)
	}

	rec = env.request(t, "GET", "/vitamins/"+vit.ID, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="2024-09-01"`) {
		t.Errorf("expected edit form with expiration date, got %d", rec.Code)
	}

	rec = env.request(t, "POST", "/vitamins/"+vit.ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after delete, got %d", rec.Code)
	}
	rec = env.request(t, "GET", "/vitamins", nil)
	if !strings.Contains(rec.Body.String(), "No vitamins yet.") {
		t.Error("expected empty vitamin list")
	}
}

func TestProductPages(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	for _, form := range []url.Values{
		{"category": {"First aid"}, "name": {"Bandages"}, "quantity": {"20"}},
		{"category": {"Devices"}, "name": {"Thermometer"}, "quantity": {"1"}},
	} {
		if rec := env.request(t, "POST", "/health-products", form); rec.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
	}

	rec := env.request(t, "POST", "/health-products", url.Values{"category": {"Devices"}, "name": {"Scale"}, "quantity": {"0"}})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Quantity must be a whole number above zero.") {
		t.Errorf("expected quantity error, got %d", rec.Code)
	}

	rec = env.request(t, "GET", "/health-products?category=Devices", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Thermometer") || strings.Contains(body, "Bandages") {
		t.Error("expected only devices in filtered list")
	}

	products, err := env.records.ListProducts(ctx, env.userID, "First aid")
	if err != nil || len(products) != 1 {
		t.Fatalf("expected one first aid product, got %d (%v)", len(products), err)
	}
	bandages := products[0]

	rec = env.request(t, "POST", "/health-products/"+bandages.ID, url.Values{"category": {"First aid"}, "name": {"Bandages"}, "quantity": {"15"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after update, got %d", rec.Code)
	}
	got, err := env.records.GetProduct(ctx, env.userID, bandages.ID)
	if err != nil || got.Quantity != 15 {
		t.Errorf("expected quantity 15, got %+v (%v)", got, err)
	}

	rec = env.request(t, "POST", "/health-products/"+bandages.ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after delete, got %d", rec.Code)
	}
	if _, err := env.records.GetProduct(ctx, env.userID, bandages.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected product to be deleted, got %v", err)
	}
}

func TestRecordPagesAreOwnerScoped(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	other, err := store.CreateUser(ctx, env.database, "bor@example.com", "Bor", "x")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	med, err := env.records.CreateMedication(ctx, other.ID, model.MedicationInput{Name: "Insulin"})
	if err != nil {
		t.Fatalf("creating medication: %v", err)
	}

	if rec := env.request(t, "GET", "/medications/"+med.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's medication, got %d", rec.Code)
	}
	if rec := env.request(t, "GET", "/medications", nil); strings.Contains(rec.Body.String(), "Insulin") {
		t.Error("another user's medication must not be listed")
	}
	env.request(t, "POST", "/medications/"+med.ID+"/delete", url.Values{})
	if _, err := env.records.GetMedication(ctx, other.ID, med.ID); err != nil {
		t.Errorf("another user's medication must survive a delete: %v", err)
	}
}
