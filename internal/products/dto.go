package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// CategoryDTO is the public category shape.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

// MediaDTO is one ordered media attachment on a variant.
type MediaDTO struct {
	URL      string          `json:"url"`
	Kind     enums.MediaKind `json:"kind"`
	Position int             `json:"position"`
}

// VariantDTO is a sellable configuration with its media.
type VariantDTO struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Price    int64      `json:"price"`
	Notes    string     `json:"notes,omitempty"`
	IsActive bool       `json:"is_active"`
	Media    []MediaDTO `json:"media"`
}

// ProductDTO is the storefront product shape.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	CategoryID  uuid.UUID    `json:"category_id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description,omitempty"`
	IsActive    bool         `json:"is_active"`
	Variants    []VariantDTO `json:"variants"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CreateCategoryRequest creates a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
	Slug string `json:"slug" validate:"required,min=1,max=120"`
}

// CreateProductRequest creates a product with optional initial variants.
type CreateProductRequest struct {
	CategoryID  uuid.UUID              `json:"category_id" validate:"required"`
	Name        string                 `json:"name" validate:"required,min=1,max=200"`
	Slug        string                 `json:"slug" validate:"required,min=1,max=200"`
	Description string                 `json:"description" validate:"max=4000"`
	Variants    []CreateVariantRequest `json:"variants" validate:"dive"`
}

// CreateVariantRequest adds a sellable configuration. Notes may carry a legacy
// [MEDIA:...] tag, which is split into media rows on ingest.
type CreateVariantRequest struct {
	Name  string   `json:"name" validate:"required,min=1,max=200"`
	Price int64    `json:"price" validate:"required,gt=0"`
	Notes string   `json:"notes" validate:"max=4000"`
	Media []string `json:"media" validate:"dive,url"`
}

// UpdateVariantRequest edits price, notes or active flag.
type UpdateVariantRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Price    *int64  `json:"price" validate:"omitempty,gt=0"`
	Notes    *string `json:"notes" validate:"omitempty,max=4000"`
	IsActive *bool   `json:"is_active"`
}

func categoryFromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, IsActive: c.IsActive}
}

func variantFromModel(v *models.ProductVariant) VariantDTO {
	media := make([]MediaDTO, 0, len(v.Media))
	for _, m := range v.Media {
		media = append(media, MediaDTO{URL: m.URL, Kind: m.Kind, Position: m.Position})
	}
	return VariantDTO{
		ID:       v.ID,
		Name:     v.Name,
		Price:    v.Price,
		Notes:    v.Notes,
		IsActive: v.IsActive,
		Media:    media,
	}
}

func productFromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	variants := make([]VariantDTO, 0, len(p.Variants))
	for i := range p.Variants {
		variants = append(variants, variantFromModel(&p.Variants[i]))
	}
	return &ProductDTO{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		IsActive:    p.IsActive,
		Variants:    variants,
		CreatedAt:   p.CreatedAt,
	}
}
