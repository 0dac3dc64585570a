package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prastiyo12/userhub_api/internal"
	"github.com/prastiyo12/userhub_api/internal/db"
	"github.com/prastiyo12/userhub_api/internal/httpapi"
	"github.com/prastiyo12/userhub_api/internal/users"
)

type testEnv struct {
	baseURL string
	server  *httptest.Server
	db      *db.DB
	users   *users.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	t.Cleanup(pool.Close)

	base := db.NewBase(pool.Pool, 3*time.Second)
	usrRepo := users.NewRepository(base)

	svc := &users.Service{Store: usrRepo}

	app := &httpapi.App{
		Health: &httpapi.HealthHandler{DB: pool.Pool},
		Users:  &httpapi.UsersHandler{Service: svc},
		Actors: &httpapi.HeaderActorResolver{Users: usrRepo},
	}

	srv := httptest.NewServer(httpapi.NewRouter(app))
	t.Cleanup(srv.Close)

	return &testEnv{
		baseURL: srv.URL,
		server:  srv,
		db:      pool,
		users:   usrRepo,
	}
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return res
}

func createUser(t *testing.T, env *testEnv, email, name, role string) users.UserResponse {
	t.Helper()

	payload := map[string]string{
		"email":    email,
		"password": "password123",
		"name":     name,
	}
	if role != "" {
		payload["role"] = role
	}

	res := doJSON(t, http.MethodPost, env.baseURL+"/v1/users", payload)
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create user status: %d", res.StatusCode)
	}

	var resp users.UserResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s+%s@example.com", prefix, internal.RandomHex(6))
}

func listUsers(t *testing.T, env *testEnv, query url.Values) users.Page {
	t.Helper()

	res, err := http.Get(env.baseURL + "/v1/users?" + query.Encode())
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status: %d", res.StatusCode)
	}

	var page users.Page
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return page
}

func resultIDs(page users.Page) map[string]bool {
	ids := make(map[string]bool, len(page.Users))
	for _, row := range page.Users {
		ids[row.ID] = true
	}
	return ids
}

func TestCreateAndLookupUser(t *testing.T) {
	env := newTestEnv(t)

	email := uniqueEmail("alice")
	created := createUser(t, env, email, "Alice Doe", "")

	if created.Email != email {
		t.Fatalf("unexpected email: %s", created.Email)
	}
	if created.Role != users.RoleUser {
		t.Fatalf("unexpected default role: %s", created.Role)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	stored, err := env.users.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if !stored.Active {
		t.Fatal("stored user must be active")
	}
	if stored.PasswordHash == "password123" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)

	email := uniqueEmail("dup")
	createUser(t, env, email, "First", "")

	res := doJSON(t, http.MethodPost, env.baseURL+"/v1/users", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Second",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate create status: %d, want 409", res.StatusCode)
	}
}

func TestListUsersEnvelopeAndPermissions(t *testing.T) {
	env := newTestEnv(t)

	manager := createUser(t, env, uniqueEmail("manager"), "Page Manager", "manager")
	target := createUser(t, env, uniqueEmail("worker"), "Page Worker", "")

	req, err := http.NewRequest(http.MethodGet, env.baseURL+"/v1/users?search=Page+Worker", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(httpapi.ActorHeader, manager.ID)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status: %d", res.StatusCode)
	}

	var page users.Page
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.PerPage != users.PageSize {
		t.Fatalf("per_page = %d, want %d", page.PerPage, users.PageSize)
	}

	found := false
	for _, row := range page.Users {
		if row.ID == target.ID {
			found = true
			if !row.CanEdit {
				t.Fatal("manager must be able to edit a plain user")
			}
		}
	}
	if !found {
		t.Fatalf("target user not in search results: %+v", page.Users)
	}
}

func TestListUsersSearchIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	tok := "zq" + internal.RandomHex(4)
	byName := createUser(t, env, uniqueEmail("named"), "Crew "+strings.ToUpper(tok)+" Lead", "")
	byEmail := createUser(t, env, fmt.Sprintf("%s-inbox@example.com", tok), "Someone Else", "")
	other := createUser(t, env, uniqueEmail("control"), "Control Person", "")

	ids := resultIDs(listUsers(t, env, url.Values{"search": {tok}}))
	if !ids[byName.ID] {
		t.Fatal("lowercase search must match an uppercase name")
	}
	if !ids[byEmail.ID] {
		t.Fatal("search must match the email column")
	}
	if ids[other.ID] {
		t.Fatal("unrelated user must not match the search")
	}

	ids = resultIDs(listUsers(t, env, url.Values{"search": {strings.ToUpper(tok)}}))
	if !ids[byEmail.ID] {
		t.Fatal("uppercase search must match a lowercase email")
	}
}

func TestListUsersSearchEscapesWildcards(t *testing.T) {
	env := newTestEnv(t)

	tok := internal.RandomHex(4)
	percent := createUser(t, env, uniqueEmail("percent"), "Promo 10%"+tok, "")
	percentDecoy := createUser(t, env, uniqueEmail("pdecoy"), "Promo 10x"+tok, "")

	ids := resultIDs(listUsers(t, env, url.Values{"search": {"10%" + tok}}))
	if !ids[percent.ID] {
		t.Fatal("literal % in the search term must match")
	}
	if ids[percentDecoy.ID] {
		t.Fatal("% in the search term must not act as a wildcard")
	}

	under := createUser(t, env, uniqueEmail("under"), "Build v_"+tok, "")
	underDecoy := createUser(t, env, uniqueEmail("udecoy"), "Build vx"+tok, "")

	ids = resultIDs(listUsers(t, env, url.Values{"search": {"v_" + tok}}))
	if !ids[under.ID] {
		t.Fatal("literal _ in the search term must match")
	}
	if ids[underDecoy.ID] {
		t.Fatal("_ in the search term must not act as a wildcard")
	}
}

func TestListUsersInvalidPageRejected(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.baseURL + "/v1/users?page=zero")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestOrdersCountAggregation(t *testing.T) {
	env := newTestEnv(t)

	buyer := createUser(t, env, uniqueEmail("buyer"), "Order Buyer", "")
	idle := createUser(t, env, uniqueEmail("idle"), "Order Idle", "")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := env.db.Pool.Exec(ctx,
			`INSERT INTO orders (id, user_id) VALUES ($1, $2)`,
			"ord_"+internal.RandomHex(12), buyer.ID,
		)
		if err != nil {
			t.Fatalf("insert order: %v", err)
		}
	}

	res, err := http.Get(env.baseURL + "/v1/users?search=Order")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer res.Body.Close()

	var page users.Page
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}

	counts := map[string]int64{}
	for _, row := range page.Users {
		counts[row.ID] = row.OrdersCount
	}
	if counts[buyer.ID] != 2 {
		t.Fatalf("buyer orders_count = %d, want 2", counts[buyer.ID])
	}
	if counts[idle.ID] != 0 {
		t.Fatalf("idle orders_count = %d, want 0", counts[idle.ID])
	}
}
