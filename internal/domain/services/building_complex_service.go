package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/infrastructure/config"
)

// InterfaceBuildingComplexService covers the buildingComplex.* procedures.
type InterfaceBuildingComplexService interface {
	Create(ctx context.Context, user *models.User, input BuildingComplexInput) (*models.BuildingComplex, error)
	GetByID(ctx context.Context, id uint) (*models.BuildingComplex, error)
	ListByOrganisation(ctx context.Context, organisationID uint) ([]models.BuildingComplex, error)
}

type BuildingComplexInput struct {
	Name             string `json:"name" binding:"required,min=1,max=120"`
	Type             string `json:"type" binding:"required,oneof=residential commercial mixed"`
	TotalOccupancies int    `json:"totalOccupancies" binding:"min=0"`
	AddressInput
}

type BuildingComplexService struct {
	DB     *gorm.DB
	Config *config.Config
	logger *zap.Logger
}

func NewBuildingComplexService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) InterfaceBuildingComplexService {
	return &BuildingComplexService{
		DB:     db,
		Config: cfg,
		logger: logger,
	}
}

// Create adds a building complex to the user's organisation.
func (s *BuildingComplexService) Create(ctx context.Context, user *models.User, input BuildingComplexInput) (*models.BuildingComplex, error) {
	if user == nil || user.OrganisationID == nil {
		return nil, ErrOrganisationRequired
	}
	if !models.ValidBuildingComplexType(input.Type) {
		return nil, ErrInvalidBuildingComplexType
	}

	bc := &models.BuildingComplex{
		Name:             strings.TrimSpace(input.Name),
		Type:             input.Type,
		TotalOccupancies: input.TotalOccupancies,
		Address:          input.AddressInput.toModel(),
		OrganisationID:   *user.OrganisationID,
	}
	if err := s.DB.WithContext(ctx).Create(bc).Error; err != nil {
		return nil, fmt.Errorf("create building complex: %w", err)
	}

	s.logger.Info("building complex created",
		zap.Uint("building_complex_id", bc.ID),
		zap.Uint("organisation_id", bc.OrganisationID))
	return bc, nil
}

func (s *BuildingComplexService) GetByID(ctx context.Context, id uint) (*models.BuildingComplex, error) {
	var bc models.BuildingComplex
	if err := s.DB.WithContext(ctx).First(&bc, id).Error; err != nil {
		return nil, notFound(err, ErrBuildingComplexNotFound)
	}
	return &bc, nil
}

// ListByOrganisation returns the organisation's complexes, newest first.
func (s *BuildingComplexService) ListByOrganisation(ctx context.Context, organisationID uint) ([]models.BuildingComplex, error) {
	complexes := []models.BuildingComplex{}
	err := s.DB.WithContext(ctx).
		Where("organisation_id = ?", organisationID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&complexes).Error
	if err != nil {
		return nil, fmt.Errorf("list building complexes: %w", err)
	}
	return complexes, nil
}
