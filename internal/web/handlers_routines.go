package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gymtrack/common"
	"gymtrack/internal/repository"
)

func (s *Server) handleRoutines(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	routines, err := s.routines.ListVisible(r.Context(), user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.renderPage(w, r, "routines.html", "Routines", map[string]any{
		"Routines": routines,
	})
}

// handleRoutineForm serves both the new-routine form and the edit form.
func (s *Server) handleRoutineForm(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	data := map[string]any{
		"Routine": &common.Routine{},
		"Action":  "/routines/new",
	}
	title := "New Routine"

	if idHex, ok := mux.Vars(r)["id"]; ok {
		routine, status, err := s.ownedRoutine(r, idHex, user)
		if err != nil {
			s.renderError(w, r, status, err.Error())
			return
		}
		data["Routine"] = routine
		data["Action"] = "/routines/" + idHex + "/edit"
		title = "Edit Routine"
	}
	s.renderPage(w, r, "routine_form.html", title, data)
}

func (s *Server) handleRoutineCreate(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	routine, err := parseRoutineForm(r)
	if err != nil {
		s.flashAndBack(w, r, err.Error(), "/routines/new")
		return
	}
	routine.Username = user

	err = s.routines.Create(r.Context(), routine)
	if errors.Is(err, repository.ErrDuplicate) {
		s.flashAndBack(w, r, "A routine with that name already exists", "/routines/new")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.sessions.Flash(w, r, "Routine created")
	http.Redirect(w, r, "/routines", http.StatusSeeOther)
}

func (s *Server) handleRoutineUpdate(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	idHex := mux.Vars(r)["id"]
	stored, status, err := s.ownedRoutine(r, idHex, user)
	if err != nil {
		s.renderError(w, r, status, err.Error())
		return
	}

	form, err := parseRoutineForm(r)
	if err != nil {
		s.flashAndBack(w, r, err.Error(), "/routines/"+idHex+"/edit")
		return
	}
	stored.Name = form.Name
	stored.Exercises = form.Exercises

	err = s.routines.Update(r.Context(), stored)
	if errors.Is(err, repository.ErrDuplicate) {
		s.flashAndBack(w, r, "A routine with that name already exists", "/routines/"+idHex+"/edit")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.sessions.Flash(w, r, "Routine updated")
	http.Redirect(w, r, "/routines", http.StatusSeeOther)
}

func (s *Server) handleRoutineDelete(w http.ResponseWriter, r *http.Request) {
	user := s.sessions.CurrentUser(r)
	idHex := mux.Vars(r)["id"]
	routine, status, err := s.ownedRoutine(r, idHex, user)
	if err != nil {
		s.renderError(w, r, status, err.Error())
		return
	}

	if err := s.routines.Delete(r.Context(), routine.Id); err != nil {
		s.internalError(w, r, err)
		return
	}
	// The owner's logs against the routine go with it.
	n, err := s.logs.DeleteByRoutine(r.Context(), user, routine.Id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	msg := "Routine deleted"
	if n > 0 {
		msg = fmt.Sprintf("Routine and %d workout log(s) deleted", n)
	}
	s.sessions.Flash(w, r, msg)
	http.Redirect(w, r, "/routines", http.StatusSeeOther)
}

// ownedRoutine loads a routine and enforces the ownership invariant:
// only the owner may mutate it, and admin templates are read-only to
// everyone but the admin session.
func (s *Server) ownedRoutine(r *http.Request, idHex, user string) (*common.Routine, int, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, http.StatusNotFound, errors.New("routine not found")
	}
	routine, err := s.routines.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, http.StatusNotFound, errors.New("routine not found")
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !routine.Editable(user) {
		return nil, http.StatusForbidden, errors.New("you do not own this routine")
	}
	return routine, 0, nil
}

func parseRoutineForm(r *http.Request) (*common.Routine, error) {
	routine := &common.Routine{
		Name: strings.TrimSpace(r.FormValue("name")),
	}
	if routine.Name == "" {
		return nil, errors.New("routine name is required")
	}
	for i := 0; i < common.RoutineExercises; i++ {
		slot := strconv.Itoa(i + 1)
		name := strings.TrimSpace(r.FormValue("exercise_" + slot))
		if name == "" {
			return nil, fmt.Errorf("exercise %s name is required", slot)
		}
		reps, err := strconv.Atoi(r.FormValue("reps_" + slot))
		if err != nil || reps < 1 || reps > 999 {
			return nil, fmt.Errorf("exercise %s needs a rep count between 1 and 999", slot)
		}
		routine.Exercises[i] = common.Exercise{Name: name, Reps: reps}
	}
	return routine, nil
}
