package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gymtrack/common"
	"gymtrack/internal/repository"
)

const dateLayout = "2006-01-02"

// logRow is one profile-page entry: the log joined to its routine name,
// flagged when it is the personal best for that routine.
type logRow struct {
	Log         common.WorkoutLog
	RoutineName string
	IsBest      bool
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)

	var from, to time.Time
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			s.flashAndBack(w, r, "Invalid from date", "/profile")
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			s.flashAndBack(w, r, "Invalid to date", "/profile")
			return
		}
		// Include the whole end day.
		to = t.Add(24*time.Hour - time.Nanosecond)
	}

	logs, err := s.logs.ListByOwner(r.Context(), user, from, to)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	names, err := s.routineNames(r, user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	// Flag each routine's personal best among the listed logs.
	bestIDs := map[primitive.ObjectID]bool{}
	seen := map[primitive.ObjectID]bool{}
	for _, l := range logs {
		if seen[l.RoutineId] {
			continue
		}
		seen[l.RoutineId] = true
		best, err := s.logs.PersonalBest(r.Context(), user, l.RoutineId)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		bestIDs[best.Id] = true
	}

	rows := make([]logRow, 0, len(logs))
	for _, l := range logs {
		name, ok := names[l.RoutineId]
		if !ok {
			name = "(deleted routine)"
		}
		rows = append(rows, logRow{Log: l, RoutineName: name, IsBest: bestIDs[l.Id]})
	}

	s.renderPage(w, r, "profile.html", "Profile", map[string]any{
		"Username": user,
		"Rows":     rows,
		"From":     q.Get("from"),
		"To":       q.Get("to"),
	})
}

// handleLogForm serves both the new-log form and the edit form.
func (s *Server) handleLogForm(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	routines, err := s.routines.ListVisible(r.Context(), user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	data := map[string]any{
		"Routines": routines,
		"Log":      &common.WorkoutLog{PerformedAt: time.Now()},
		"Action":   "/logs/new",
		"DateVal":  time.Now().Format(dateLayout),
	}
	title := "Log Workout"

	if idHex, ok := mux.Vars(r)["id"]; ok {
		logEntry, status, err := s.ownedLog(r, idHex, user)
		if err != nil {
			s.renderError(w, r, status, err.Error())
			return
		}
		data["Log"] = logEntry
		data["Action"] = "/logs/" + idHex + "/edit"
		data["DateVal"] = logEntry.PerformedAt.Format(dateLayout)
		title = "Edit Workout Log"
	}
	s.renderPage(w, r, "log_form.html", title, data)
}

func (s *Server) handleLogCreate(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	logEntry, err := s.parseLogForm(r, user)
	if err != nil {
		s.flashAndBack(w, r, err.Error(), "/logs/new")
		return
	}
	logEntry.Username = user

	if err := s.logs.Create(r.Context(), logEntry); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.sessions.Flash(w, r, "Workout logged")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleLogUpdate(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	idHex := mux.Vars(r)["id"]
	stored, status, err := s.ownedLog(r, idHex, user)
	if err != nil {
		s.renderError(w, r, status, err.Error())
		return
	}

	form, err := s.parseLogForm(r, user)
	if err != nil {
		s.flashAndBack(w, r, err.Error(), "/logs/"+idHex+"/edit")
		return
	}
	stored.RoutineId = form.RoutineId
	stored.PerformedAt = form.PerformedAt
	stored.Sets = form.Sets
	stored.Notes = form.Notes

	if err := s.logs.Update(r.Context(), stored); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.sessions.Flash(w, r, "Workout log updated")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleLogDelete(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	logEntry, status, err := s.ownedLog(r, mux.Vars(r)["id"], user)
	if err != nil {
		s.renderError(w, r, status, err.Error())
		return
	}
	if err := s.logs.Delete(r.Context(), logEntry.Id); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.sessions.Flash(w, r, "Workout log deleted")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// ownedLog loads a log and enforces the ownership invariant.
func (s *Server) ownedLog(r *http.Request, idHex, user string) (*common.WorkoutLog, int, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, http.StatusNotFound, errors.New("workout log not found")
	}
	logEntry, err := s.logs.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, http.StatusNotFound, errors.New("workout log not found")
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !logEntry.Editable(user) {
		return nil, http.StatusForbidden, errors.New("you do not own this workout log")
	}
	return logEntry, 0, nil
}

// parseLogForm validates the posted log fields. The referenced routine
// must exist and be visible to the user (their own or an admin
// template).
func (s *Server) parseLogForm(r *http.Request, user string) (*common.WorkoutLog, error) {
	routineID, err := primitive.ObjectIDFromHex(r.FormValue("routine_id"))
	if err != nil {
		return nil, errors.New("pick a routine")
	}
	routine, err := s.routines.GetByID(r.Context(), routineID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errors.New("pick a routine")
	}
	if err != nil {
		return nil, err
	}
	if routine.Username != user && !routine.Shared() {
		return nil, errors.New("pick a routine")
	}

	performedAt, err := time.Parse(dateLayout, r.FormValue("date"))
	if err != nil {
		return nil, errors.New("invalid date")
	}
	sets, err := strconv.Atoi(r.FormValue("sets"))
	if err != nil || sets < 1 || sets > 999 {
		return nil, errors.New("sets must be between 1 and 999")
	}

	return &common.WorkoutLog{
		RoutineId:   routineID,
		PerformedAt: performedAt,
		Sets:        sets,
		Notes:       strings.TrimSpace(r.FormValue("notes")),
	}, nil
}

// routineNames maps visible routine ids to names for the one-hop join
// on the profile and progress pages.
func (s *Server) routineNames(r *http.Request, user string) (map[primitive.ObjectID]string, error) {
	routines, err := s.routines.ListVisible(r.Context(), user)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(routines))
	for _, routine := range routines {
		names[routine.Id] = routine.Name
	}
	return names, nil
}
