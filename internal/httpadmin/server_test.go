package httpadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tabreport/internal/jobstore"
	"tabreport/internal/scheduler"
	"tabreport/internal/trigger"
	logx "tabreport/pkg/logx"
)

// fakeLifecycle is an in-memory Lifecycle for handler tests.
type fakeLifecycle struct {
	jobs    map[string]*scheduler.JobView
	running map[string]bool
}

func newFakeLifecycle() *fakeLifecycle {
	return &fakeLifecycle{jobs: map[string]*scheduler.JobView{}, running: map[string]bool{}}
}

func (f *fakeLifecycle) Create(_ context.Context, req scheduler.CreateRequest) (*scheduler.JobView, error) {
	sched, err := trigger.ParseParams(req.Params)
	if err != nil {
		return nil, err
	}
	if req.Config.Name == "" {
		return nil, &trigger.ConfigError{Field: "name", Reason: "required"}
	}
	v := &scheduler.JobView{
		ID:        "abcd1234",
		Config:    req.Config,
		Schedule:  sched.String(),
		NextRun:   time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	f.jobs[v.ID] = v
	return v, nil
}

func (f *fakeLifecycle) Delete(_ context.Context, id string) error {
	if _, ok := f.jobs[id]; !ok {
		return jobstore.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeLifecycle) RunNow(_ context.Context, id string) error {
	if _, ok := f.jobs[id]; !ok {
		return jobstore.ErrNotFound
	}
	if f.running[id] {
		return scheduler.ErrAlreadyRunning
	}
	f.running[id] = true
	return nil
}

func (f *fakeLifecycle) Get(_ context.Context, id string) (*scheduler.JobView, error) {
	v, ok := f.jobs[id]
	if !ok {
		return nil, jobstore.ErrNotFound
	}
	return v, nil
}

func (f *fakeLifecycle) Jobs(_ context.Context) ([]scheduler.JobView, error) {
	out := make([]scheduler.JobView, 0, len(f.jobs))
	for _, v := range f.jobs {
		out = append(out, *v)
	}
	return out, nil
}

func newTestServer(t *testing.T, token string) (*httptest.Server, *fakeLifecycle) {
	t.Helper()
	lc := newFakeLifecycle()
	srv := httptest.NewServer(New(lc, token, logx.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv, lc
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

const createBody = `{
	"name": "weekly sales",
	"recipient": "ops@example.com",
	"language": "en",
	"include_charts": true,
	"source": "https://example.com/export.csv",
	"schedule": {"frequency": "daily", "hour": 9}
}`

func TestHealthzNeedsNoToken(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, "secret")
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestBearerTokenEnforced(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, "secret")

	if resp := do(t, http.MethodGet, srv.URL+"/api/jobs", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/jobs", "wrong", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/jobs", "secret", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("good token: status = %d", resp.StatusCode)
	}
}

func TestCreateAndFetchJob(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, "")

	resp := do(t, http.MethodPost, srv.URL+"/api/jobs", "", createBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var view scheduler.JobView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID == "" || view.Config.Name != "weekly sales" {
		t.Fatalf("view = %+v", view)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/jobs/"+view.ID, "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/jobs", "", "")
	var list struct {
		Jobs []scheduler.JobView `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Jobs) != 1 {
		t.Fatalf("jobs = %+v", list.Jobs)
	}
}

func TestCreateValidationErrors(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, "")

	cases := []string{
		`{"name":"x","recipient":"a@b.c","source":"s","schedule":{"frequency":"fortnightly"}}`,
		`{"recipient":"a@b.c","source":"s","schedule":{"frequency":"hourly"}}`,
		`not json`,
		`{"unknown_field":true}`,
	}
	for i, body := range cases {
		resp := do(t, http.MethodPost, srv.URL+"/api/jobs", "", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, resp.StatusCode)
		}
	}
}

func TestRunNowStatuses(t *testing.T) {
	t.Parallel()
	srv, lc := newTestServer(t, "")
	do(t, http.MethodPost, srv.URL+"/api/jobs", "", createBody)

	if resp := do(t, http.MethodPost, srv.URL+"/api/jobs/abcd1234/run", "", ""); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("run status = %d", resp.StatusCode)
	}
	// Second trigger while running maps to 409.
	if resp := do(t, http.MethodPost, srv.URL+"/api/jobs/abcd1234/run", "", ""); resp.StatusCode != http.StatusConflict {
		t.Fatalf("overlap status = %d", resp.StatusCode)
	}
	lc.running["abcd1234"] = false

	if resp := do(t, http.MethodPost, srv.URL+"/api/jobs/missing1/run", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing status = %d", resp.StatusCode)
	}
}

func TestDeleteJob(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, "")
	do(t, http.MethodPost, srv.URL+"/api/jobs", "", createBody)

	if resp := do(t, http.MethodDelete, srv.URL+"/api/jobs/abcd1234", "", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, srv.URL+"/api/jobs/abcd1234", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d", resp.StatusCode)
	}
}
