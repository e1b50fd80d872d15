package web

import (
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/lekarna/internal/expiry"
	"github.com/erazemk/lekarna/internal/model"
)

// calendarCell is one day in the month grid.
type calendarCell struct {
	Day      civil.Date
	InMonth  bool
	Today    bool
	Selected bool
	Markers  []expiry.Marker
}

type calendarData struct {
	PageData
	Month     civil.Date // first day of the shown month
	MonthName string
	PrevMonth string
	NextMonth string
	Weeks     [][]calendarCell
	Selected  *civil.Date
	Events    []expiry.Event
}

// monthGrid lays out the weeks (Monday first) covering the month that starts
// on first.
func monthGrid(first civil.Date, today civil.Date, selected *civil.Date, cal expiry.Calendar) [][]calendarCell {
	offset := (int(first.In(time.UTC).Weekday()) + 6) % 7
	day := first.AddDays(-offset)

	var weeks [][]calendarCell
	for {
		week := make([]calendarCell, 7)
		for i := range week {
			week[i] = calendarCell{
				Day:      day,
				InMonth:  day.Year == first.Year && day.Month == first.Month,
				Today:    day == today,
				Selected: selected != nil && day == *selected,
				Markers:  cal.Markers(day),
			}
			day = day.AddDays(1)
		}
		weeks = append(weeks, week)
		if day.Year != first.Year || day.Month != first.Month {
			return weeks
		}
	}
}

func addMonths(first civil.Date, n int) civil.Date {
	return civil.DateOf(first.In(time.UTC).AddDate(0, n, 0))
}

func monthParam(d civil.Date) string {
	return d.In(time.UTC).Format("2006-01")
}

// CalendarPage handles GET /calendar?month=YYYY-MM&date=YYYY-MM-DD.
func (s *Server) CalendarPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	loc := s.Aggregator.Location()
	today := model.DayOf(s.now(), loc)

	data := calendarData{PageData: PageData{Title: "Calendar", User: claims}}

	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil || !d.IsValid() {
			data.Error = "Invalid date."
		} else {
			data.Selected = &d
		}
	}

	first := civil.Date{Year: today.Year, Month: today.Month, Day: 1}
	if data.Selected != nil {
		first = civil.Date{Year: data.Selected.Year, Month: data.Selected.Month, Day: 1}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		t, err := time.Parse("2006-01", raw)
		if err != nil {
			data.Error = "Invalid month."
		} else {
			first = civil.Date{Year: t.Year(), Month: t.Month(), Day: 1}
		}
	}

	cal, err := s.Aggregator.Calendar(r.Context(), claims.UserID)
	if err != nil {
		slog.Warn("failed to build calendar", "user", claims.UserID, "error", err)
		data.Error = "Could not load expiring items."
		cal = expiry.Calendar{}
	}

	data.Month = first
	data.MonthName = first.In(time.UTC).Format("January 2006")
	data.PrevMonth = monthParam(addMonths(first, -1))
	data.NextMonth = monthParam(addMonths(first, 1))
	data.Weeks = monthGrid(first, today, data.Selected, cal)
	if data.Selected != nil {
		data.Events = cal.On(*data.Selected)
	}

	s.Templates.Render(w, "calendar.html", &data)
}
