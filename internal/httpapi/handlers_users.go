package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prastiyo12/userhub_api/internal/apperrors"
	"github.com/prastiyo12/userhub_api/internal/identity"
	"github.com/prastiyo12/userhub_api/internal/telemetry"
	"github.com/prastiyo12/userhub_api/internal/users"
	"go.opentelemetry.io/otel/attribute"
)

type UsersService interface {
	Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
	ListActive(ctx context.Context, actor *users.User, input users.ListInput) (*users.Page, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type UsersHandler struct {
	Service       UsersService
	CreateLimiter RateLimiter
}

// Create User
// @Summary Create user
// @Description Creates a user and queues a welcome mail plus an admin notification.
// @Tags users
// @Accept json
// @Produce json
// @Param body body UserCreateDTO true "user"
// @Success 201 {object} users.UserResponse
// @Failure 400 {string} string
// @Failure 409 {string} string
// @Failure 429 {string} string
// @Failure 500 {string} string
// @Router /users [post]
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.CreateLimiter != nil {
		allowed, retryAfter, err := h.CreateLimiter.Allow(ctx, "users:create:"+clientIP(r))
		if err == nil && !allowed {
			writeAppError(w, apperrors.RateLimit("too many requests", retryAfter))
			return
		}
	}

	var dto UserCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := dto.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createCtx, span := telemetry.StartSpan(ctx, "users.create",
		attribute.String("user.email", strings.ToLower(strings.TrimSpace(dto.Email))),
	)
	u, err := h.Service.Create(createCtx, users.CreateUserRequest{
		Email:    dto.Email,
		Password: dto.Password,
		Name:     dto.Name,
		Role:     dto.Role,
	})
	span.End()
	if err != nil {
		writeAppError(w, err)
		return
	}

	telemetry.LogInfo(ctx, "user created",
		telemetry.LogString("event", "user.created"),
		telemetry.LogString("user.id", u.ID),
		telemetry.LogString("user.email", u.Email),
		telemetry.LogString("user.role", string(u.Role)),
	)

	resp := users.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// List Users
// @Summary List active users
// @Description Search, sort and paginate active users. Rows carry orders_count and the caller-dependent can_edit flag.
// @Tags users
// @Produce json
// @Param search query string false "substring match on name or email"
// @Param sortBy query string false "one of name, email, created_at"
// @Param page query int false "page number, starting at 1"
// @Success 200 {object} users.Page
// @Failure 400 {string} string
// @Failure 500 {string} string
// @Router /users [get]
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			http.Error(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = v
	}

	input := users.ListInput{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		SortBy: strings.TrimSpace(r.URL.Query().Get("sortBy")),
		Page:   page,
	}

	listCtx, span := telemetry.StartSpan(ctx, "users.list",
		attribute.String("list.sort_by", input.SortBy),
		attribute.Int("list.page", page),
	)
	result, err := h.Service.ListActive(listCtx, actorFromContext(ctx), input)
	span.End()
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// actorFromContext rebuilds the caller identity stored by the actor
// middleware. Anonymous requests yield nil.
func actorFromContext(ctx context.Context) *users.User {
	id, ok := identity.UserID(ctx)
	if !ok || strings.TrimSpace(id) == "" {
		return nil
	}
	role, _ := identity.Role(ctx)
	return &users.User{ID: id, Role: users.UserRole(role)}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
