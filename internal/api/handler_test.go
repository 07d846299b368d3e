package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reliefops/volunteer-match/internal/assignment"
	"github.com/reliefops/volunteer-match/internal/auth"
	"github.com/reliefops/volunteer-match/internal/geo"
	"github.com/reliefops/volunteer-match/internal/models"
	"github.com/reliefops/volunteer-match/internal/notify"
	"github.com/reliefops/volunteer-match/internal/ranking"
	"github.com/reliefops/volunteer-match/internal/repository"
)

func f(v float64) *float64 { return &v }

// stubGeocoder returns canned coordinates or a canned failure.
type stubGeocoder struct {
	coords *models.Coordinates
	err    error
}

func (s *stubGeocoder) Geocode(ctx context.Context, city, state, country string) (*models.Coordinates, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coords, nil
}

// mockStore implements repository.Store in memory for handler tests.
type mockStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	volunteers  map[string]*models.Volunteer
	disasters   map[string]*models.Disaster
	tasks       map[string]*models.Task
	assignments map[string]*models.Assignment
	updates     []models.Update

	profileErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       map[string]*models.User{},
		volunteers:  map[string]*models.Volunteer{},
		disasters:   map[string]*models.Disaster{},
		tasks:       map[string]*models.Task{},
		assignments: map[string]*models.Assignment{},
	}
}

func (m *mockStore) AddUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrNotFound
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) TouchLastLogin(ctx context.Context, id string) error { return nil }

func (m *mockStore) AddVolunteer(ctx context.Context, v *models.Volunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volunteers[v.ID] = v
	return nil
}

func (m *mockStore) UpdateVolunteer(ctx context.Context, v *models.Volunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.volunteers[v.ID]; !ok {
		return repository.ErrNotFound
	}
	m.volunteers[v.ID] = v
	return nil
}

func (m *mockStore) GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.volunteers[id]; ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) GetVolunteerByProfile(ctx context.Context, profileID string) (*models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	for _, v := range m.volunteers {
		if v.ProfileID == profileID {
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) ListVolunteers(ctx context.Context, opts repository.VolunteerFilter) ([]models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Volunteer
	for _, v := range m.volunteers {
		if opts.Availability != nil && v.Availability != *opts.Availability {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (m *mockStore) SetAvailability(ctx context.Context, profileID string, a models.Availability) (*models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.volunteers {
		if v.ProfileID == profileID {
			v.Availability = a
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) IncrementAssigned(ctx context.Context, volunteerID string) error { return nil }

func (m *mockStore) RecordCompletion(ctx context.Context, volunteerID string, delta float64) error {
	return nil
}

func (m *mockStore) AddDisaster(ctx context.Context, d *models.Disaster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disasters[d.ID] = d
	return nil
}

func (m *mockStore) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.disasters[id]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) ListDisasters(ctx context.Context, opts repository.DisasterFilter) ([]models.Disaster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Disaster
	for _, d := range m.disasters {
		if opts.Status != nil && d.Status != *opts.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockStore) SetDisasterStatus(ctx context.Context, id, status string) (*models.Disaster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.disasters[id]; ok {
		d.Status = status
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) DeleteDisaster(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.disasters[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.disasters, id)
	return nil
}

func (m *mockStore) AddTask(ctx context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *mockStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) ListTasks(ctx context.Context, opts repository.TaskFilter) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Task
	for _, t := range m.tasks {
		if opts.DisasterID != nil && t.DisasterID != *opts.DisasterID {
			continue
		}
		if opts.Status != nil && t.Status != *opts.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockStore) SetTaskStatus(ctx context.Context, id, status string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Status = status
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) AddAssignments(ctx context.Context, assignments []models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range assignments {
		a := assignments[i]
		m.assignments[a.ID] = &a
	}
	return nil
}

func (m *mockStore) ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Assignment
	for _, a := range m.assignments {
		if a.VolunteerID == volunteerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockStore) SetAssignmentStatus(ctx context.Context, id, volunteerID, status string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok || a.VolunteerID != volunteerID {
		return nil, repository.ErrNotFound
	}
	a.Status = status
	return a, nil
}

func (m *mockStore) AddUpdate(ctx context.Context, u *models.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, *u)
	return nil
}

func (m *mockStore) ListUpdates(ctx context.Context, opts repository.UpdateFilter) ([]models.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Update
	for _, u := range m.updates {
		if opts.Priority != nil && u.Priority != *opts.Priority {
			continue
		}
		if opts.Category != nil && u.Category != *opts.Category {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockStore) DeleteUpdate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.updates {
		if u.ID == id {
			m.updates = append(m.updates[:i], m.updates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type testServer struct {
	router   *gin.Engine
	store    *mockStore
	tokens   *auth.Manager
	geocoder *stubGeocoder
	notifier *notify.Dispatcher
	cancel   context.CancelFunc
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMockStore()
	tokens := auth.NewManager("test-secret", time.Hour)
	geocoder := &stubGeocoder{err: errors.New("geocoder not stubbed")}
	broadcaster := notify.NewBroadcaster()
	notifier := notify.NewDispatcher(store, broadcaster, 1, 8)

	ctx, cancel := context.WithCancel(context.Background())
	notifier.Start(ctx)

	matcher := assignment.NewService(store, ranking.NewRanker(geo.Distance), notifier)

	router := gin.New()
	handler := NewHandler(store, tokens, geocoder, matcher, notifier, broadcaster)
	handler.RegisterRoutes(router)

	t.Cleanup(func() {
		cancel()
		notifier.Stop()
		broadcaster.Close()
	})

	return &testServer{router: router, store: store, tokens: tokens, geocoder: geocoder, notifier: notifier, cancel: cancel}
}

func (ts *testServer) token(t *testing.T, id, role string) string {
	t.Helper()
	token, err := ts.tokens.Issue(&models.User{ID: id, Email: id + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, "POST", "/api/auth/register", "", gin.H{
		"email":     "vol@example.com",
		"password":  "hunter2hunter2",
		"full_name": "Vol Unteer",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var reg struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("parse register response: %v", err)
	}
	if reg.Token == "" {
		t.Error("register did not return a token")
	}
	if reg.User.Role != models.RoleVolunteer {
		t.Errorf("expected default volunteer role, got %s", reg.User.Role)
	}

	// Password hash must never leak.
	if strings.Contains(w.Body.String(), "password") {
		t.Error("register response leaks password material")
	}

	w = ts.do(t, "POST", "/api/auth/login", "", gin.H{
		"email":    "vol@example.com",
		"password": "hunter2hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, "POST", "/api/auth/login", "", gin.H{
		"email":    "vol@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, "GET", "/api/tasks", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = ts.do(t, "GET", "/api/tasks", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with garbage token, got %d", w.Code)
	}
}

func TestAdminGate(t *testing.T) {
	ts := setupTestServer(t)
	volToken := ts.token(t, "u1", models.RoleVolunteer)

	w := ts.do(t, "POST", "/api/disasters", volToken, gin.H{
		"name":          "Flood",
		"disaster_type": "flood",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for volunteer creating a disaster, got %d", w.Code)
	}
}

func TestVolunteerProfileUpsert(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.token(t, "u1", models.RoleVolunteer)

	w := ts.do(t, "POST", "/api/volunteers", token, gin.H{
		"name":   "Vol Unteer",
		"email":  "vol@example.com",
		"skills": []string{"First Aid"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Second save updates in place.
	w = ts.do(t, "POST", "/api/volunteers", token, gin.H{
		"name":         "Vol Unteer",
		"email":        "vol@example.com",
		"skills":       []string{"First Aid", "Driving"},
		"availability": "busy",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(ts.store.volunteers) != 1 {
		t.Errorf("expected a single profile after upsert, got %d", len(ts.store.volunteers))
	}

	w = ts.do(t, "GET", "/api/volunteers/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get own profile: expected 200, got %d", w.Code)
	}
	var resp struct {
		Volunteer models.Volunteer `json:"volunteer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if resp.Volunteer.Availability != models.Busy {
		t.Errorf("expected busy availability, got %s", resp.Volunteer.Availability)
	}
}

func TestVolunteerProfileKeepsCoordinatesWhenGeocodeFails(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.token(t, "u1", models.RoleVolunteer)

	ts.geocoder.err = nil
	ts.geocoder.coords = &models.Coordinates{Latitude: 34.05, Longitude: -118.24}

	w := ts.do(t, "POST", "/api/volunteers", token, gin.H{
		"name":  "Vol Unteer",
		"email": "vol@example.com",
		"city":  "Los Angeles",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Geocoder goes down; re-saving the profile must not erase the position.
	ts.geocoder.coords = nil
	ts.geocoder.err = errors.New("nominatim unreachable")

	w = ts.do(t, "POST", "/api/volunteers", token, gin.H{
		"name":  "Vol Unteer",
		"email": "vol@example.com",
		"city":  "Los Angeles",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Volunteer models.Volunteer `json:"volunteer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if resp.Volunteer.Latitude == nil || *resp.Volunteer.Latitude != 34.05 {
		t.Errorf("expected the previous latitude carried forward, got %v", resp.Volunteer.Latitude)
	}
	if resp.Volunteer.Longitude == nil || *resp.Volunteer.Longitude != -118.24 {
		t.Errorf("expected the previous longitude carried forward, got %v", resp.Volunteer.Longitude)
	}
}

func TestSaveVolunteerProfileStoreFailure(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.token(t, "u1", models.RoleVolunteer)

	ts.store.profileErr = errors.New("disk failure")

	w := ts.do(t, "POST", "/api/volunteers", token, gin.H{
		"name":  "Vol Unteer",
		"email": "vol@example.com",
	})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on a store failure, got %d: %s", w.Code, w.Body.String())
	}
	if len(ts.store.volunteers) != 0 {
		t.Errorf("profile must not be inserted when the lookup fails, got %d", len(ts.store.volunteers))
	}
}

func TestSetAvailability(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.token(t, "u1", models.RoleVolunteer)

	ts.do(t, "POST", "/api/volunteers", token, gin.H{"name": "V", "email": "v@example.com"})

	w := ts.do(t, "PATCH", "/api/volunteers/availability", token, gin.H{"availability": "offline"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, "PATCH", "/api/volunteers/availability", token, gin.H{"availability": "sleeping"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown availability, got %d", w.Code)
	}
}

func TestDisasterLifecycleAndGeoJSON(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.token(t, "a1", models.RoleAdmin)

	w := ts.do(t, "POST", "/api/disasters", admin, gin.H{
		"name":          "River Flood",
		"disaster_type": "flood",
		"urgency":       "critical",
		"latitude":      34.05,
		"longitude":     -118.24,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create disaster: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Disaster models.Disaster `json:"disaster"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse disaster: %v", err)
	}
	if created.Disaster.Status != "active" {
		t.Errorf("new disasters start active, got %s", created.Disaster.Status)
	}

	// A disaster without coordinates is listed but not mapped.
	ts.do(t, "POST", "/api/disasters", admin, gin.H{
		"name":          "Unlocated",
		"disaster_type": "storm",
	})

	w = ts.do(t, "GET", "/api/disasters/geojson", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("geojson: expected 200, got %d", w.Code)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("parse feature collection: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Errorf("expected 1 mapped feature, got %+v", fc)
	}
	if len(fc.Features) == 1 {
		coords := fc.Features[0].Geometry.Coordinates
		if len(coords) != 2 || coords[0] != -118.24 || coords[1] != 34.05 {
			t.Errorf("expected [lng lat] order, got %v", coords)
		}
	}

	w = ts.do(t, "PATCH", "/api/disasters/"+created.Disaster.ID, admin, gin.H{"status": "resolved"})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve disaster: expected 200, got %d", w.Code)
	}

	w = ts.do(t, "PATCH", "/api/disasters/"+created.Disaster.ID, admin, gin.H{"status": "archived"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestCreateDisasterRejectsBadUrgency(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.token(t, "a1", models.RoleAdmin)

	w := ts.do(t, "POST", "/api/disasters", admin, gin.H{
		"name":          "Flood",
		"disaster_type": "flood",
		"urgency":       "catastrophic",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown urgency, got %d", w.Code)
	}
}

func seedMatchScenario(t *testing.T, ts *testServer) (taskID string) {
	t.Helper()
	admin := ts.token(t, "a1", models.RoleAdmin)

	w := ts.do(t, "POST", "/api/disasters", admin, gin.H{
		"name":          "River Flood",
		"disaster_type": "flood",
		"urgency":       "critical",
		"latitude":      34.05,
		"longitude":     -118.24,
	})
	var d struct {
		Disaster models.Disaster `json:"disaster"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("parse disaster: %v", err)
	}

	w = ts.do(t, "POST", "/api/tasks", admin, gin.H{
		"disaster_id":     d.Disaster.ID,
		"title":           "Sandbag crew",
		"priority":        "high",
		"required_skills": []string{"Lifting"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var tk struct {
		Task models.Task `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tk); err != nil {
		t.Fatalf("parse task: %v", err)
	}

	rel := 100.0
	ts.store.volunteers["near"] = &models.Volunteer{
		ID: "near", ProfileID: "p-near", Name: "Near", Email: "near@example.com",
		Skills: []string{"Lifting"}, Availability: models.Available,
		Latitude: f(34.06), Longitude: f(-118.25), ReliabilityScore: &rel,
	}
	ts.store.volunteers["far"] = &models.Volunteer{
		ID: "far", ProfileID: "p-far", Name: "Far", Email: "far@example.com",
		Skills: []string{"Lifting"}, Availability: models.Available,
		Latitude: f(40.71), Longitude: f(-74.00), ReliabilityScore: &rel,
	}

	return tk.Task.ID
}

func TestRankVolunteersEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	taskID := seedMatchScenario(t, ts)
	admin := ts.token(t, "a1", models.RoleAdmin)

	w := ts.do(t, "POST", "/api/match/rank", admin, gin.H{"task_id": taskID})
	if w.Code != http.StatusOK {
		t.Fatalf("rank: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result assignment.RankResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("parse rank result: %v", err)
	}
	if len(result.Ranked) != 2 {
		t.Fatalf("expected 2 ranked volunteers, got %d", len(result.Ranked))
	}
	if result.Ranked[0].VolunteerID != "near" {
		t.Errorf("expected the close volunteer ranked first, got %s", result.Ranked[0].VolunteerID)
	}
	if result.Ranked[0].Scores.Final < result.Ranked[1].Scores.Final {
		t.Error("ranking is not descending by final score")
	}
	// Review only: no assignments persisted.
	if len(ts.store.assignments) != 0 {
		t.Errorf("rank must not persist assignments, found %d", len(ts.store.assignments))
	}
}

func TestAutoAssignEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	taskID := seedMatchScenario(t, ts)
	admin := ts.token(t, "a1", models.RoleAdmin)

	w := ts.do(t, "POST", "/api/match/auto-assign", admin, gin.H{"task_id": taskID, "count": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("auto-assign: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(ts.store.assignments) != 1 {
		t.Fatalf("expected 1 persisted assignment, got %d", len(ts.store.assignments))
	}
	for _, a := range ts.store.assignments {
		if a.VolunteerID != "near" {
			t.Errorf("expected the top-ranked volunteer assigned, got %s", a.VolunteerID)
		}
		if a.Status != models.AssignmentPending {
			t.Errorf("expected pending assignment, got %s", a.Status)
		}
	}
}

func TestAutoAssignNoVolunteers(t *testing.T) {
	ts := setupTestServer(t)
	taskID := seedMatchScenario(t, ts)
	admin := ts.token(t, "a1", models.RoleAdmin)

	for _, v := range ts.store.volunteers {
		v.Availability = models.Offline
	}

	w := ts.do(t, "POST", "/api/match/auto-assign", admin, gin.H{"task_id": taskID})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no available volunteers, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMyTasksAndAssignmentStatus(t *testing.T) {
	ts := setupTestServer(t)
	taskID := seedMatchScenario(t, ts)
	admin := ts.token(t, "a1", models.RoleAdmin)
	nearToken := ts.token(t, "p-near", models.RoleVolunteer)

	w := ts.do(t, "POST", "/api/tasks/"+taskID+"/assign", admin, gin.H{
		"volunteer_ids": []string{"near"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("assign: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var assigned struct {
		Assignments []models.Assignment `json:"assignments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("parse assignments: %v", err)
	}

	w = ts.do(t, "GET", "/api/tasks/my-tasks", nearToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("my-tasks: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var mine struct {
		Tasks []struct {
			Assignment models.Assignment `json:"assignment"`
			Task       models.Task       `json:"task"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatalf("parse my-tasks: %v", err)
	}
	if len(mine.Tasks) != 1 || mine.Tasks[0].Task.ID != taskID {
		t.Fatalf("expected my assigned task, got %+v", mine.Tasks)
	}

	w = ts.do(t, "PATCH", "/api/assignments/"+assigned.Assignments[0].ID, nearToken, gin.H{
		"status": "accepted",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Another volunteer cannot touch this assignment.
	farToken := ts.token(t, "p-far", models.RoleVolunteer)
	w = ts.do(t, "PATCH", "/api/assignments/"+assigned.Assignments[0].ID, farToken, gin.H{
		"status": "accepted",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign assignment, got %d", w.Code)
	}
}

func TestCreateUpdatePublishes(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.token(t, "a1", models.RoleAdmin)

	w := ts.do(t, "POST", "/api/updates", admin, gin.H{
		"title":   "Shelter open",
		"message": "The Main St shelter is accepting arrivals.",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	// Persistence happens off the request path.
	deadline := time.Now().Add(2 * time.Second)
	for {
		ts.store.mu.Lock()
		n := len(ts.store.updates)
		ts.store.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("update was never persisted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w = ts.do(t, "GET", "/api/updates", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list updates: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Shelter open") {
		t.Errorf("listed updates missing the published bulletin: %s", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)
	w := ts.do(t, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
