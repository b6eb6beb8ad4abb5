package services

import (
	"context"

	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// DistrictService exposes the read-only district catalog.
type DistrictService struct {
	districts store.Districts
}

func NewDistrictService(districts store.Districts) *DistrictService {
	return &DistrictService{districts: districts}
}

func (s *DistrictService) List(ctx context.Context) ([]*model.District, error) {
	return s.districts.List(ctx)
}

func (s *DistrictService) Get(ctx context.Context, value string) (*model.District, error) {
	return s.districts.GetByValue(ctx, value)
}
