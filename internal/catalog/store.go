package catalog

import (
	"database/sql"
	"fmt"

	"github.com/idoneo/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Public Reads ─────────────────────────────────────────

func (s *Store) ListCategories() ([]models.Category, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, description, is_featured, created_at
		 FROM categories ORDER BY title`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.IsFeatured, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategoryBySlug(slug string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRow(
		`SELECT id, slug, title, description, is_featured, created_at
		 FROM categories WHERE slug = $1`,
		slug,
	).Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.IsFeatured, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (s *Store) ListRolesByCategory(categorySlug string) ([]models.Role, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.category_id, r.slug, r.title, r.order_index, r.description, r.created_at
		 FROM roles r
		 JOIN categories c ON c.id = r.category_id
		 WHERE c.slug = $1
		 ORDER BY r.order_index, r.title`,
		categorySlug,
	)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.Slug, &r.Title, &r.OrderIndex, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *Store) ListContestsByRole(roleSlug string) ([]models.Contest, error) {
	rows, err := s.db.Query(
		`SELECT q.id, COALESCE(q.slug, q.id::text), q.title, q.description, q.year, r.slug, c.slug
		 FROM quizzes q
		 JOIN roles r ON r.id = q.role_id
		 JOIN categories c ON c.id = r.category_id
		 WHERE r.slug = $1 AND q.is_archived = FALSE
		 ORDER BY q.year DESC NULLS LAST, q.title`,
		roleSlug,
	)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	defer rows.Close()

	var contests []models.Contest
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.Year, &c.RoleSlug, &c.CategorySlug); err != nil {
			return nil, fmt.Errorf("scan contest: %w", err)
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

func (s *Store) GetContestBySlug(slug string) (*models.Contest, error) {
	var c models.Contest
	err := s.db.QueryRow(
		`SELECT q.id, COALESCE(q.slug, q.id::text), q.title, q.description, q.year,
		        COALESCE(r.slug, ''), COALESCE(cat.slug, '')
		 FROM quizzes q
		 LEFT JOIN roles r ON r.id = q.role_id
		 LEFT JOIN categories cat ON cat.id = r.category_id
		 WHERE q.slug = $1 AND q.is_archived = FALSE`,
		slug,
	).Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.Year, &c.RoleSlug, &c.CategorySlug)
	if err != nil {
		return nil, fmt.Errorf("get contest: %w", err)
	}
	return &c, nil
}

// ── Admin Writes ─────────────────────────────────────────

func (s *Store) CreateCategory(req models.CategoryRequest) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRow(
		`INSERT INTO categories (slug, title, description, is_featured)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, slug, title, description, is_featured, created_at`,
		req.Slug, req.Title, req.Description, req.IsFeatured,
	).Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.IsFeatured, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(id string, req models.CategoryRequest) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRow(
		`UPDATE categories SET slug = $1, title = $2, description = $3, is_featured = $4
		 WHERE id = $5
		 RETURNING id, slug, title, description, is_featured, created_at`,
		req.Slug, req.Title, req.Description, req.IsFeatured, id,
	).Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.IsFeatured, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

func (s *Store) DeleteCategory(id string) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *Store) CreateRole(req models.RoleRequest) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRow(
		`INSERT INTO roles (category_id, slug, title, order_index, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, category_id, slug, title, order_index, description, created_at`,
		req.CategoryID, req.Slug, req.Title, req.OrderIndex, req.Description,
	).Scan(&r.ID, &r.CategoryID, &r.Slug, &r.Title, &r.OrderIndex, &r.Description, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return &r, nil
}

func (s *Store) UpdateRole(id string, req models.RoleRequest) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRow(
		`UPDATE roles SET category_id = $1, slug = $2, title = $3, order_index = $4, description = $5
		 WHERE id = $6
		 RETURNING id, category_id, slug, title, order_index, description, created_at`,
		req.CategoryID, req.Slug, req.Title, req.OrderIndex, req.Description, id,
	).Scan(&r.ID, &r.CategoryID, &r.Slug, &r.Title, &r.OrderIndex, &r.Description, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return &r, nil
}

func (s *Store) DeleteRole(id string) error {
	_, err := s.db.Exec(`DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}
