package models

import "time"

// ── Catalog Types ────────────────────────────────────────

type Category struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
}

type Role struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	OrderIndex  int       `json:"order_index"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Contest is the public listing view of a quiz within the catalog hierarchy.
type Contest struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Year         *int    `json:"year,omitempty"`
	RoleSlug     string  `json:"role_slug"`
	CategorySlug string  `json:"category_slug"`
}

// ── Admin Requests ───────────────────────────────────────

type CategoryRequest struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsFeatured  bool    `json:"is_featured"`
}

type RoleRequest struct {
	CategoryID  string  `json:"category_id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	OrderIndex  int     `json:"order_index"`
	Description *string `json:"description"`
}
