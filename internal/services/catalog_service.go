package services

import (
	"database/sql"
	"errors"
	"fmt"

	"snackstack/internal/domain"
	"snackstack/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Packs *repos.PackRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, packs *repos.PackRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Packs: packs}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("load product %s: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) Search(q, category string, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 24
	}
	offset := (page - 1) * pageSize
	return s.Prods.Search(q, category, pageSize, offset)
}

// AllProducts and VarietyPacks back the engine's catalog view.
func (s *CatalogService) AllProducts() ([]domain.Product, error) { return s.Prods.All() }

func (s *CatalogService) VarietyPacks() ([]domain.VarietyPack, error) { return s.Packs.All() }

// engineCatalog adapts CatalogService to nudge.Catalog.
type engineCatalog struct{ s *CatalogService }

func (c engineCatalog) Products() ([]domain.Product, error)     { return c.s.AllProducts() }
func (c engineCatalog) Packs() ([]domain.VarietyPack, error) { return c.s.VarietyPacks() }
