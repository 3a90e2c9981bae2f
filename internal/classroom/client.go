package classroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Client talks to the classroom platform's REST API on behalf of one
// caller. Build one per request from the caller's bearer token.
type Client struct {
	base string
	http *http.Client
}

type ClientConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	h := oauth2.NewClient(context.Background(), src)
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	} else {
		h.Timeout = 15 * time.Second
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), http: h}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("GET %s: %s", path, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) CourseInfo(ctx context.Context, courseID string) (CourseInfo, error) {
	var raw struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		OwnerID        string `json:"ownerId"`
		EnrollmentCode string `json:"enrollmentCode"`
	}
	if err := c.getJSON(ctx, "/courses/"+url.PathEscape(courseID), nil, &raw); err != nil {
		return CourseInfo{}, err
	}
	return CourseInfo{ID: raw.ID, Name: raw.Name, OwnerID: raw.OwnerID, EnrollmentCode: raw.EnrollmentCode}, nil
}

func (c *Client) CourseworkInfo(ctx context.Context, courseID, courseworkID string) (CourseworkInfo, error) {
	var raw struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		MaxPoints   *float64 `json:"maxPoints"`
		State       string   `json:"state"`
	}
	path := "/courses/" + url.PathEscape(courseID) + "/courseWork/" + url.PathEscape(courseworkID)
	if err := c.getJSON(ctx, path, nil, &raw); err != nil {
		return CourseworkInfo{}, err
	}
	return CourseworkInfo{
		ID: raw.ID, Title: raw.Title, Description: raw.Description,
		MaxPoints: raw.MaxPoints, State: raw.State,
	}, nil
}

func (c *Client) IsTeacher(ctx context.Context, courseID, userID string) (bool, error) {
	course, err := c.CourseInfo(ctx, courseID)
	if err != nil {
		return false, err
	}
	if course.OwnerID == userID {
		return true, nil
	}
	var raw struct {
		Teachers []struct {
			UserID string `json:"userId"`
		} `json:"teachers"`
	}
	if err := c.getJSON(ctx, "/courses/"+url.PathEscape(courseID)+"/teachers", nil, &raw); err != nil {
		return false, err
	}
	for _, t := range raw.Teachers {
		if t.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) IsStudentEnrolled(ctx context.Context, courseID, userID string) (bool, error) {
	students, err := c.ListStudents(ctx, courseID)
	if err != nil {
		return false, err
	}
	for _, s := range students {
		if s.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) ListStudents(ctx context.Context, courseID string) ([]Student, error) {
	var raw struct {
		Students []struct {
			UserID  string `json:"userId"`
			Profile struct {
				Name struct {
					FullName string `json:"fullName"`
				} `json:"name"`
				EmailAddress string `json:"emailAddress"`
			} `json:"profile"`
		} `json:"students"`
	}
	if err := c.getJSON(ctx, "/courses/"+url.PathEscape(courseID)+"/students", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Student, 0, len(raw.Students))
	for _, s := range raw.Students {
		out = append(out, Student{UserID: s.UserID, Name: s.Profile.Name.FullName, Email: s.Profile.EmailAddress})
	}
	return out, nil
}

// SubmitGrade resolves the student's submission entry for the coursework,
// then patches the assigned grade onto it. Transport or platform errors
// come back as a non-nil error; a decoded non-success payload does not
// happen on this API (errors are HTTP-level), so Success mirrors err==nil.
func (c *Client) SubmitGrade(ctx context.Context, courseID, courseworkID, userID string, grade float64) (SubmitResult, error) {
	base := "/courses/" + url.PathEscape(courseID) + "/courseWork/" + url.PathEscape(courseworkID) + "/studentSubmissions"

	var list struct {
		StudentSubmissions []struct {
			ID string `json:"id"`
		} `json:"studentSubmissions"`
	}
	q := url.Values{"userId": {userID}}
	if err := c.getJSON(ctx, base, q, &list); err != nil {
		return SubmitResult{Error: err.Error()}, err
	}
	if len(list.StudentSubmissions) == 0 {
		err := fmt.Errorf("no submission found for student %s", userID)
		return SubmitResult{Error: err.Error()}, err
	}
	subID := list.StudentSubmissions[0].ID

	body, _ := json.Marshal(map[string]any{"assignedGrade": grade, "draftGrade": grade})
	u := c.base + base + "/" + url.PathEscape(subID) + "?updateMask=" + url.QueryEscape("assignedGrade,draftGrade")
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{Error: err.Error()}, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return SubmitResult{Error: err.Error()}, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		err := fmt.Errorf("patch grade: %s", res.Status)
		return SubmitResult{SubmissionID: subID, Error: err.Error()}, err
	}
	var patched struct {
		State string `json:"state"`
	}
	_ = json.NewDecoder(res.Body).Decode(&patched)
	return SubmitResult{
		Success:       true,
		SubmissionID:  subID,
		AssignedGrade: grade,
		State:         patched.State,
	}, nil
}
