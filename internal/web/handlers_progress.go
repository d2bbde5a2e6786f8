package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gymtrack/internal/repository"
)

type progressPoint struct {
	Date string `json:"date"`
	Sets int    `json:"sets"`
}

type routineProgress struct {
	Routine string          `json:"routine"`
	Best    int             `json:"best"`
	Points  []progressPoint `json:"points"`
}

// handleProgress aggregates the user's full history into per-routine
// series for the charts page.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)

	logs, err := s.logs.ListByOwner(r.Context(), user, time.Time{}, time.Time{})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	names, err := s.routineNames(r, user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	byRoutine := map[primitive.ObjectID][]progressPoint{}
	for i := len(logs) - 1; i >= 0; i-- { // oldest first for the chart
		l := logs[i]
		byRoutine[l.RoutineId] = append(byRoutine[l.RoutineId], progressPoint{
			Date: l.PerformedAt.Format(dateLayout),
			Sets: l.Sets,
		})
	}

	series := make([]routineProgress, 0, len(byRoutine))
	for id, points := range byRoutine {
		name, ok := names[id]
		if !ok {
			name = "(deleted routine)"
		}
		best, err := s.logs.PersonalBest(r.Context(), user, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		series = append(series, routineProgress{Routine: name, Best: best.Sets, Points: points})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Routine < series[j].Routine })

	chartJSON, err := json.Marshal(series)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.renderPage(w, r, "progress.html", "Progress", map[string]any{
		"Series":    series,
		"ChartData": template.JS(chartJSON),
	})
}
