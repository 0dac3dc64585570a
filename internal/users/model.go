package users

import "time"

const PageSize = 15

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserView is a listed row annotated with the per-request derived fields.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        UserRole  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	OrdersCount int64     `json:"orders_count"`
	CanEdit     bool      `json:"can_edit"`
}

// Page is the envelope returned by the listing operation. Total counts all
// matching records before pagination.
type Page struct {
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int64      `json:"total"`
	Users   []UserView `json:"users"`
}

type ListInput struct {
	Search string
	SortBy string
	Page   int
}

// ListFilter is the store-facing query shape after input resolution.
type ListFilter struct {
	Search string
	Sort   SortField
	Limit  int
	Offset int
}
