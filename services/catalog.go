package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
)

type CatalogService struct {
	repo repository.CatalogRepository
	log  *config.Logger
}

func NewCatalogService(repo repository.CatalogRepository, log *config.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

// ListServices returns active services, optionally restricted to one menu tier
func (s *CatalogService) ListServices(ctx context.Context, menuType string) ([]models.Service, error) {
	all, err := s.repo.ListServices(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	menuType = strings.ToUpper(strings.TrimSpace(menuType))
	if menuType == "" {
		return all, nil
	}
	out := make([]models.Service, 0, len(all))
	for _, svc := range all {
		if svc.MenuType() == menuType {
			out = append(out, svc)
		}
	}
	return out, nil
}

// ListCategories returns categories; with a menu tier, only those holding
// at least one active service of that tier.
func (s *CatalogService) ListCategories(ctx context.Context, menuType string) ([]models.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if strings.TrimSpace(menuType) == "" {
		return cats, nil
	}
	svcs, err := s.ListServices(ctx, menuType)
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(svcs))
	for _, svc := range svcs {
		used[svc.CategoryID] = true
	}
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if used[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// ActiveService resolves one orderable service
func (s *CatalogService) ActiveService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &LineNotFoundError{Missing: []string{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if !svc.IsActive {
		return nil, &LineNotFoundError{Missing: []string{id}}
	}
	return svc, nil
}

func (s *CatalogService) SaveService(ctx context.Context, svc *models.Service) error {
	svc.ID = strings.TrimSpace(svc.ID)
	if svc.ID == "" {
		return invalid("id", "is required")
	}
	if missing := svc.Name.Missing(); len(missing) > 0 {
		return invalid("name", "missing translations: "+strings.Join(missing, ", "))
	}
	if svc.PriceVND < 0 || svc.PriceUSD < 0 {
		return invalid("price", "must not be negative")
	}
	if svc.PriceVND > models.MaxPrice || svc.PriceUSD > models.MaxPrice {
		return invalid("price", "is too large")
	}
	if svc.Duration <= 0 {
		return invalid("duration", "must be positive")
	}
	for area := range svc.Areas {
		if !area.Valid() {
			return invalid("areas", "unknown area "+string(area))
		}
	}
	if err := s.repo.SaveService(ctx, svc); err != nil {
		return fmt.Errorf("save service: %w", err)
	}
	s.log.Info("service saved", "service_id", svc.ID, "active", svc.IsActive)
	return nil
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return svc, err
}

func (s *CatalogService) SaveCategory(ctx context.Context, c *models.Category) error {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return invalid("id", "is required")
	}
	if missing := c.Name.Missing(); len(missing) > 0 {
		return invalid("name", "missing translations: "+strings.Join(missing, ", "))
	}
	if err := s.repo.SaveCategory(ctx, c); err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}
