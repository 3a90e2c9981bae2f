package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/edukit/classroom-sync/internal/classroom"
	"github.com/edukit/classroom-sync/internal/gradesync"
	"github.com/edukit/classroom-sync/internal/ledger"
	"github.com/edukit/classroom-sync/internal/scoring"
)

// Handlers only — routes remain in main.go

// ClassroomProvider builds the classroom capability for one request. In
// online mode that means a fresh REST client from the caller's bearer
// token; offline mode hands back the shared roster-backed implementation.
type ClassroomProvider func(r *http.Request) classroom.Classroom

// POST /api/submit-to-classroom
func SubmitGradeHandler(svc *gradesync.Service, provider ClassroomProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradesync.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.StudentID) == "" ||
			strings.TrimSpace(req.CourseID) == "" ||
			strings.TrimSpace(req.CourseworkID) == "" {
			http.Error(w, "student_id, course_id and coursework_id required", http.StatusBadRequest)
			return
		}
		outcome, err := svc.SubmitGrade(r.Context(), provider(r), req)
		if err != nil {
			writeWorkflowError(w, err, "submit grade")
			return
		}
		writeJSON(w, outcome)
	}
}

// GET /api/student-attempts?student_id=...&coursework_id=...
func StudentAttemptsHandler(svc *gradesync.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		courseworkID := strings.TrimSpace(r.URL.Query().Get("coursework_id"))
		if studentID == "" || courseworkID == "" {
			http.Error(w, "student_id and coursework_id required", http.StatusBadRequest)
			return
		}
		history, err := svc.Attempts(r.Context(), studentID, courseworkID)
		if err != nil {
			writeWorkflowError(w, err, "attempt history")
			return
		}
		if history.Attempts == nil {
			history.Attempts = []ledger.Attempt{}
		}
		writeJSON(w, history)
	}
}

// POST /api/reset-attempts
func ResetAttemptsHandler(svc *gradesync.Service, provider ClassroomProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradesync.ResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.TeacherID) == "" ||
			strings.TrimSpace(req.StudentID) == "" ||
			strings.TrimSpace(req.CourseID) == "" ||
			strings.TrimSpace(req.CourseworkID) == "" {
			http.Error(w, "teacher_id, student_id, course_id and coursework_id required", http.StatusBadRequest)
			return
		}
		outcome, err := svc.ResetAttempts(r.Context(), provider(r), req)
		if err != nil {
			writeWorkflowError(w, err, "reset attempts")
			return
		}
		writeJSON(w, outcome)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeWorkflowError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, gradesync.ErrNotEnrolled), errors.Is(err, gradesync.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ledger.ErrAttemptLimit):
		http.Error(w, "maximum attempts reached", http.StatusBadRequest)
	case errors.Is(err, scoring.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("api: %s failed: %v", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
