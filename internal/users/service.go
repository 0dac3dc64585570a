package users

import (
	"context"
	"math"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prastiyo12/userhub_api/internal"
	"github.com/prastiyo12/userhub_api/internal/apperrors"
)

const minPasswordLength = 8

// maxPage bounds the page number so that the offset computation cannot
// overflow int.
const maxPage = math.MaxInt / PageSize

type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListActive(ctx context.Context, f ListFilter) ([]*User, error)
	CountActive(ctx context.Context, search string) (int64, error)
	OrdersCountByUser(ctx context.Context, userIDs []string) (map[string]int64, error)
}

// Notifier receives creation events for best-effort delivery. It must not
// block and its failures never reach the caller.
type Notifier interface {
	UserCreated(u *User)
}

type Service struct {
	Store          Store
	Cache          Cache
	CacheTTL       time.Duration
	Notifier       Notifier
	PasswordHasher func(plain string) (string, error)
	IDGenerator    func() string
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "users store not configured")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	password := strings.TrimSpace(req.Password)
	name := strings.TrimSpace(req.Name)

	if email == "" || password == "" || name == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "email, password and name are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "invalid email")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.New(apperrors.KindInvalidInput, "password must be at least 8 characters")
	}

	role := RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := ParseUserRole(strings.TrimSpace(req.Role))
		if err != nil {
			return nil, apperrors.New(apperrors.KindInvalidInput, "invalid role")
		}
		role = parsed
	}

	hasher := s.PasswordHasher
	if hasher == nil {
		hasher = internal.DefaultPasswordHasher
	}

	hash, err := hasher(password)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInternal, "failed to process password")
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "usr_" + internal.RandomHex(12)
		}
	}

	u := &User{
		ID:           idGen(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	if err := s.Store.Create(ctx, u); err != nil {
		if IsUniqueViolationEmail(err) {
			return nil, apperrors.New(apperrors.KindConflict, "email already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindUpstream, "failed to create user", err)
	}

	if s.Notifier != nil {
		s.Notifier.UserCreated(u)
	}

	return u, nil
}

// ListActive returns one page of active users annotated with orders_count
// and the actor-dependent can_edit flag. actor may be nil for anonymous
// callers.
func (s *Service) ListActive(ctx context.Context, actor *User, input ListInput) (*Page, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "users store not configured")
	}

	page := input.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "page must be a positive integer")
	}
	if page > maxPage {
		return nil, apperrors.New(apperrors.KindInvalidInput, "page is out of range")
	}

	filter := ListFilter{
		Search: strings.TrimSpace(input.Search),
		Sort:   ResolveSortField(strings.TrimSpace(input.SortBy)),
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	}

	cached, err := s.loadPage(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(cached.Users))
	for _, u := range cached.Users {
		views = append(views, UserView{
			ID:          u.ID,
			Email:       u.Email,
			Name:        u.Name,
			Role:        u.Role,
			CreatedAt:   u.CreatedAt,
			OrdersCount: cached.Counts[u.ID],
			CanEdit:     CanEdit(actor, u),
		})
	}

	return &Page{
		Page:    page,
		PerPage: PageSize,
		Total:   cached.Total,
		Users:   views,
	}, nil
}

func (s *Service) loadPage(ctx context.Context, filter ListFilter) (*CachedPage, error) {
	cacheKey := pageCacheKey(filter)
	if s.Cache != nil {
		if cached, ok, err := s.Cache.GetPage(ctx, cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	list, err := s.Store.ListActive(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream, "failed to list users", err)
	}

	total, err := s.Store.CountActive(ctx, filter.Search)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream, "failed to count users", err)
	}

	ids := make([]string, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}

	counts, err := s.Store.OrdersCountByUser(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream, "failed to count orders", err)
	}

	page := &CachedPage{Users: list, Counts: counts, Total: total}

	if s.Cache != nil && s.CacheTTL > 0 {
		_ = s.Cache.SetPage(ctx, cacheKey, page, s.CacheTTL)
	}

	return page, nil
}

func pageCacheKey(f ListFilter) string {
	v := url.Values{}
	v.Set("search", f.Search)
	v.Set("sort", string(f.Sort))
	v.Set("offset", strconv.Itoa(f.Offset))
	return v.Encode()
}
