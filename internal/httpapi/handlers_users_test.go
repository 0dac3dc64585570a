package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prastiyo12/userhub_api/internal/apperrors"
	"github.com/prastiyo12/userhub_api/internal/users"
)

type serviceStub struct {
	createFn func(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
	listFn   func(ctx context.Context, actor *users.User, input users.ListInput) (*users.Page, error)
}

func (s *serviceStub) Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return &users.User{ID: "usr_test", Email: req.Email, Name: req.Name, Role: users.RoleUser, Active: true}, nil
}

func (s *serviceStub) ListActive(ctx context.Context, actor *users.User, input users.ListInput) (*users.Page, error) {
	if s.listFn != nil {
		return s.listFn(ctx, actor, input)
	}
	return &users.Page{Page: 1, PerPage: users.PageSize, Users: []users.UserView{}}, nil
}

type resolverStub struct {
	actor *users.User
}

func (r *resolverStub) Resolve(ctx context.Context, req *http.Request) (*users.User, error) {
	if req.Header.Get(ActorHeader) == "" {
		return nil, nil
	}
	return r.actor, nil
}

func newTestServer(t *testing.T, svc *serviceStub, actor *users.User) *httptest.Server {
	t.Helper()

	app := &App{
		Users:  &UsersHandler{Service: svc},
		Actors: &resolverStub{actor: actor},
	}

	srv := httptest.NewServer(routerWithoutHealth(app))
	t.Cleanup(srv.Close)
	return srv
}

// routerWithoutHealth wires only the user routes; the health handler needs
// a live pool.
func routerWithoutHealth(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/users", http.HandlerFunc(app.Users.Create))
	mux.Handle("GET /v1/users", ActorMiddleware(app.Actors)(http.HandlerFunc(app.Users.List)))
	return mux
}

func TestCreateUserEndpoint(t *testing.T) {
	svc := &serviceStub{}
	srv := newTestServer(t, svc, nil)

	body := `{"email":"alice@example.com","password":"password123","name":"Alice Doe"}`
	res, err := http.Post(srv.URL+"/v1/users", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.StatusCode)
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected email: %v", resp["email"])
	}
	if _, ok := resp["password"]; ok {
		t.Fatal("password must never be serialized")
	}
	if _, ok := resp["password_hash"]; ok {
		t.Fatal("password hash must never be serialized")
	}
}

func TestCreateUserEndpointValidation(t *testing.T) {
	svc := &serviceStub{
		createFn: func(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
			t.Fatal("service must not be reached on invalid payload")
			return nil, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing fields", `{"email":"alice@example.com"}`},
		{"short password", `{"email":"alice@example.com","password":"short","name":"Alice"}`},
		{"bad email", `{"email":"nope","password":"password123","name":"Alice"}`},
		{"bad role", `{"email":"a@b.co","password":"password123","name":"Alice","role":"root"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := http.Post(srv.URL+"/v1/users", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("request error: %v", err)
			}
			res.Body.Close()
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", res.StatusCode)
			}
		})
	}
}

func TestCreateUserEndpointConflict(t *testing.T) {
	svc := &serviceStub{
		createFn: func(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
			return nil, apperrors.New(apperrors.KindConflict, "email already exists")
		},
	}
	srv := newTestServer(t, svc, nil)

	body := `{"email":"dup@example.com","password":"password123","name":"Dup"}`
	res, err := http.Post(srv.URL+"/v1/users", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", res.StatusCode)
	}
}

func TestListUsersEndpointPassesActor(t *testing.T) {
	manager := &users.User{ID: "usr_m", Role: users.RoleManager}

	var gotActor *users.User
	var gotInput users.ListInput
	svc := &serviceStub{
		listFn: func(ctx context.Context, actor *users.User, input users.ListInput) (*users.Page, error) {
			gotActor = actor
			gotInput = input
			return &users.Page{Page: input.Page, PerPage: users.PageSize, Users: []users.UserView{}}, nil
		},
	}
	srv := newTestServer(t, svc, manager)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/users?search=alice&sortBy=name&page=2", nil)
	req.Header.Set(ActorHeader, "usr_m")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	if gotActor == nil || gotActor.ID != "usr_m" || gotActor.Role != users.RoleManager {
		t.Fatalf("unexpected actor: %+v", gotActor)
	}
	if gotInput.Search != "alice" || gotInput.SortBy != "name" || gotInput.Page != 2 {
		t.Fatalf("unexpected input: %+v", gotInput)
	}
}

func TestListUsersEndpointAnonymous(t *testing.T) {
	var gotActor *users.User
	called := false
	svc := &serviceStub{
		listFn: func(ctx context.Context, actor *users.User, input users.ListInput) (*users.Page, error) {
			called = true
			gotActor = actor
			return &users.Page{Page: 1, PerPage: users.PageSize, Users: []users.UserView{}}, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	res, err := http.Get(srv.URL + "/v1/users")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if !called {
		t.Fatal("service not reached")
	}
	if gotActor != nil {
		t.Fatalf("anonymous request must carry a nil actor, got %+v", gotActor)
	}
}

func TestListUsersEndpointRejectsBadPage(t *testing.T) {
	svc := &serviceStub{
		listFn: func(ctx context.Context, actor *users.User, input users.ListInput) (*users.Page, error) {
			t.Fatal("service must not be reached with a malformed page")
			return nil, nil
		},
	}
	srv := newTestServer(t, svc, nil)

	for _, page := range []string{"0", "-1", "abc", "1.5"} {
		res, err := http.Get(srv.URL + "/v1/users?page=" + page)
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("page=%s: status = %d, want 400", page, res.StatusCode)
		}
	}
}
