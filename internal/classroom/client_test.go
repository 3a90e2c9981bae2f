package classroom_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edukit/classroom-sync/internal/classroom"
)

// fake platform API covering the endpoints the client touches.
func newFakePlatform(t *testing.T) (*httptest.Server, *platformState) {
	t.Helper()
	st := &platformState{}
	mux := http.NewServeMux()

	mux.HandleFunc("/courses/c-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		st.lastAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "c-1", "name": "Algebra", "ownerId": "owner-1",
		})
	})
	mux.HandleFunc("/courses/c-1/teachers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"teachers": []map[string]string{{"userId": "tea-1"}, {"userId": "tea-2"}},
		})
	})
	mux.HandleFunc("/courses/c-1/students", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"students": []map[string]any{
				{"userId": "stu-1", "profile": map[string]any{
					"name": map[string]string{"fullName": "Student One"}, "emailAddress": "one@school.test",
				}},
			},
		})
	})
	mux.HandleFunc("/courses/c-1/courseWork/cw-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "cw-1", "title": "Quiz 1", "maxPoints": 10.0, "state": "PUBLISHED",
		})
	})
	mux.HandleFunc("/courses/c-1/courseWork/cw-1/studentSubmissions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("userId") != "stu-1" {
			_ = json.NewEncoder(w).Encode(map[string]any{"studentSubmissions": []any{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"studentSubmissions": []map[string]string{{"id": "sub-42"}},
		})
	})
	mux.HandleFunc("/courses/c-1/courseWork/cw-1/studentSubmissions/sub-42", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			http.NotFound(w, r)
			return
		}
		if st.patchStatus != 0 {
			w.WriteHeader(st.patchStatus)
			return
		}
		var body map[string]float64
		_ = json.NewDecoder(r.Body).Decode(&body)
		st.patchedGrade = body["assignedGrade"]
		st.updateMask = r.URL.Query().Get("updateMask")
		_ = json.NewEncoder(w).Encode(map[string]string{"state": "RETURNED"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

type platformState struct {
	lastAuth     string
	patchedGrade float64
	updateMask   string
	patchStatus  int
}

func newTestClient(srv *httptest.Server) *classroom.Client {
	return classroom.NewClient(classroom.ClientConfig{
		BaseURL:     srv.URL,
		AccessToken: "tok-123",
	})
}

func TestClientSendsBearerToken(t *testing.T) {
	srv, st := newFakePlatform(t)
	c := newTestClient(srv)

	if _, err := c.CourseInfo(context.Background(), "c-1"); err != nil {
		t.Fatalf("course info: %v", err)
	}
	if st.lastAuth != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", st.lastAuth)
	}
}

func TestClientIsTeacher(t *testing.T) {
	srv, _ := newFakePlatform(t)
	c := newTestClient(srv)
	ctx := context.Background()

	for _, userID := range []string{"owner-1", "tea-2"} {
		ok, err := c.IsTeacher(ctx, "c-1", userID)
		if err != nil {
			t.Fatalf("is teacher %s: %v", userID, err)
		}
		if !ok {
			t.Fatalf("%s should be a teacher", userID)
		}
	}
	ok, err := c.IsTeacher(ctx, "c-1", "stu-1")
	if err != nil || ok {
		t.Fatalf("stu-1 must not be a teacher (ok=%v err=%v)", ok, err)
	}
}

func TestClientIsStudentEnrolled(t *testing.T) {
	srv, _ := newFakePlatform(t)
	c := newTestClient(srv)
	ctx := context.Background()

	ok, err := c.IsStudentEnrolled(ctx, "c-1", "stu-1")
	if err != nil || !ok {
		t.Fatalf("stu-1 should be enrolled (ok=%v err=%v)", ok, err)
	}
	ok, err = c.IsStudentEnrolled(ctx, "c-1", "stu-9")
	if err != nil || ok {
		t.Fatalf("stu-9 must not be enrolled (ok=%v err=%v)", ok, err)
	}
}

func TestClientCourseworkInfo(t *testing.T) {
	srv, _ := newFakePlatform(t)
	c := newTestClient(srv)

	cw, err := c.CourseworkInfo(context.Background(), "c-1", "cw-1")
	if err != nil {
		t.Fatalf("coursework info: %v", err)
	}
	if cw.MaxPoints == nil || *cw.MaxPoints != 10 {
		t.Fatalf("max points = %v, want 10", cw.MaxPoints)
	}
}

func TestClientSubmitGrade(t *testing.T) {
	srv, st := newFakePlatform(t)
	c := newTestClient(srv)

	res, err := c.SubmitGrade(context.Background(), "c-1", "cw-1", "stu-1", 8.0)
	if err != nil {
		t.Fatalf("submit grade: %v", err)
	}
	if !res.Success || res.SubmissionID != "sub-42" || res.State != "RETURNED" {
		t.Fatalf("result = %+v", res)
	}
	if st.patchedGrade != 8.0 {
		t.Fatalf("patched grade = %v, want 8.0", st.patchedGrade)
	}
	if !strings.Contains(st.updateMask, "assignedGrade") {
		t.Fatalf("updateMask = %q", st.updateMask)
	}
}

func TestClientSubmitGradeNoSubmission(t *testing.T) {
	srv, _ := newFakePlatform(t)
	c := newTestClient(srv)

	res, err := c.SubmitGrade(context.Background(), "c-1", "cw-1", "stu-9", 8.0)
	if err == nil || res.Success {
		t.Fatalf("expected failure without a submission entry, got %+v", res)
	}
}

func TestClientSubmitGradePatchRejected(t *testing.T) {
	srv, st := newFakePlatform(t)
	st.patchStatus = http.StatusForbidden
	c := newTestClient(srv)

	res, err := c.SubmitGrade(context.Background(), "c-1", "cw-1", "stu-1", 8.0)
	if err == nil || res.Success {
		t.Fatalf("expected failure on rejected patch, got %+v", res)
	}
	if res.Error == "" {
		t.Fatal("expected error detail in result")
	}
}
