package classroom_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/edukit/classroom-sync/internal/classroom"
	"github.com/edukit/classroom-sync/internal/db"
)

func openRoster(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "roster.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	seed := []struct {
		q    string
		args []any
	}{
		{`INSERT INTO courses (id, name, owner_id) VALUES ($1,$2,$3)`, []any{"c-1", "Algebra", "owner-1"}},
		{`INSERT INTO course_teachers (course_id, user_id) VALUES ($1,$2)`, []any{"c-1", "tea-1"}},
		{`INSERT INTO course_students (course_id, user_id, name, email) VALUES ($1,$2,$3,$4)`,
			[]any{"c-1", "stu-1", "Student One", "one@school.test"}},
		{`INSERT INTO coursework (id, course_id, title, max_points) VALUES ($1,$2,$3,$4)`,
			[]any{"cw-1", "c-1", "Quiz 1", 10.0}},
		{`INSERT INTO coursework (id, course_id, title, max_points) VALUES ($1,$2,$3,NULL)`,
			[]any{"cw-2", "c-1", "Ungraded"}},
	}
	for _, s := range seed {
		if _, err := dbh.Exec(s.q, s.args...); err != nil {
			t.Fatalf("seed %q: %v", s.q, err)
		}
	}
	return dbh
}

func TestSQLClassroomMembership(t *testing.T) {
	dbh := openRoster(t)
	gc := classroom.NewSQLClassroom(dbh)
	ctx := context.Background()

	for _, userID := range []string{"owner-1", "tea-1"} {
		ok, err := gc.IsTeacher(ctx, "c-1", userID)
		if err != nil || !ok {
			t.Fatalf("%s should be a teacher (ok=%v err=%v)", userID, ok, err)
		}
	}
	if ok, _ := gc.IsTeacher(ctx, "c-1", "stu-1"); ok {
		t.Fatal("stu-1 must not be a teacher")
	}
	if ok, _ := gc.IsTeacher(ctx, "c-404", "owner-1"); ok {
		t.Fatal("unknown course has no teachers")
	}

	if ok, _ := gc.IsStudentEnrolled(ctx, "c-1", "stu-1"); !ok {
		t.Fatal("stu-1 should be enrolled")
	}
	if ok, _ := gc.IsStudentEnrolled(ctx, "c-1", "tea-1"); ok {
		t.Fatal("tea-1 must not be enrolled as student")
	}
}

func TestSQLClassroomCoursework(t *testing.T) {
	dbh := openRoster(t)
	gc := classroom.NewSQLClassroom(dbh)
	ctx := context.Background()

	cw, err := gc.CourseworkInfo(ctx, "c-1", "cw-1")
	if err != nil {
		t.Fatalf("coursework info: %v", err)
	}
	if cw.MaxPoints == nil || *cw.MaxPoints != 10 {
		t.Fatalf("max points = %v, want 10", cw.MaxPoints)
	}

	cw, err = gc.CourseworkInfo(ctx, "c-1", "cw-2")
	if err != nil {
		t.Fatalf("coursework info: %v", err)
	}
	if cw.MaxPoints != nil {
		t.Fatalf("ungraded coursework should have nil max points, got %v", *cw.MaxPoints)
	}

	if _, err := gc.CourseworkInfo(ctx, "c-1", "cw-404"); err == nil {
		t.Fatal("expected error for unknown coursework")
	}
}

func TestSQLClassroomSubmitGrade(t *testing.T) {
	dbh := openRoster(t)
	gc := classroom.NewSQLClassroom(dbh)
	ctx := context.Background()

	res, err := gc.SubmitGrade(ctx, "c-1", "cw-1", "stu-1", 8.0)
	if err != nil || !res.Success {
		t.Fatalf("submit grade: res=%+v err=%v", res, err)
	}

	var grade float64
	if err := dbh.QueryRow(
		`SELECT assigned_grade FROM coursework_grades WHERE coursework_id=$1 AND user_id=$2`,
		"cw-1", "stu-1").Scan(&grade); err != nil {
		t.Fatalf("read grade: %v", err)
	}
	if grade != 8.0 {
		t.Fatalf("stored grade = %v, want 8.0", grade)
	}

	// Resubmission overwrites in place.
	if _, err := gc.SubmitGrade(ctx, "c-1", "cw-1", "stu-1", 9.0); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	_ = dbh.QueryRow(
		`SELECT assigned_grade FROM coursework_grades WHERE coursework_id=$1 AND user_id=$2`,
		"cw-1", "stu-1").Scan(&grade)
	if grade != 9.0 {
		t.Fatalf("updated grade = %v, want 9.0", grade)
	}

	// Students outside the roster have no submission to grade.
	if res, err := gc.SubmitGrade(ctx, "c-1", "cw-1", "stu-9", 5.0); err == nil || res.Success {
		t.Fatalf("expected failure for unenrolled student, got %+v", res)
	}
}
