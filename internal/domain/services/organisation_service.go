package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/infrastructure/config"
)

// InterfaceOrganisationService covers the organisation.* procedures.
type InterfaceOrganisationService interface {
	Create(ctx context.Context, userID uint, input OrganisationInput) (*models.Organisation, error)
	GetByID(ctx context.Context, id uint) (*models.Organisation, error)
	Update(ctx context.Context, id uint, input OrganisationInput) (*models.Organisation, error)
	GetBilling(ctx context.Context, organisationID uint) (*models.Billing, error)
}

// AddressInput is shared by every form that collects a postal address.
type AddressInput struct {
	AddressLine1 string `json:"addressLine1" binding:"max=200"`
	AddressLine2 string `json:"addressLine2" binding:"max=200"`
	City         string `json:"city" binding:"max=100"`
	State        string `json:"state" binding:"max=100"`
	PostalCode   string `json:"postalCode" binding:"max=20"`
	Country      string `json:"country" binding:"max=100"`
}

func (a AddressInput) toModel() models.Address {
	return models.Address{
		AddressLine1: strings.TrimSpace(a.AddressLine1),
		AddressLine2: strings.TrimSpace(a.AddressLine2),
		City:         strings.TrimSpace(a.City),
		State:        strings.TrimSpace(a.State),
		PostalCode:   strings.TrimSpace(a.PostalCode),
		Country:      strings.TrimSpace(a.Country),
	}
}

type OrganisationInput struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
	AddressInput
}

type OrganisationService struct {
	DB     *gorm.DB
	Config *config.Config
	logger *zap.Logger
}

func NewOrganisationService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) InterfaceOrganisationService {
	return &OrganisationService{
		DB:     db,
		Config: cfg,
		logger: logger,
	}
}

// Create registers a new organisation and makes userID its first member.
func (s *OrganisationService) Create(ctx context.Context, userID uint, input OrganisationInput) (*models.Organisation, error) {
	org := &models.Organisation{
		Name:    strings.TrimSpace(input.Name),
		Address: input.AddressInput.toModel(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("create organisation: %w", err)
		}
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("organisation_id", org.ID)
		if result.Error != nil {
			return fmt.Errorf("attach user to organisation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("organisation created", zap.Uint("organisation_id", org.ID), zap.Uint("user_id", userID))
	return org, nil
}

func (s *OrganisationService) GetByID(ctx context.Context, id uint) (*models.Organisation, error) {
	var org models.Organisation
	if err := s.DB.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, notFound(err, ErrOrganisationNotFound)
	}
	return &org, nil
}

func (s *OrganisationService) Update(ctx context.Context, id uint, input OrganisationInput) (*models.Organisation, error) {
	org, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	org.Name = strings.TrimSpace(input.Name)
	org.Address = input.AddressInput.toModel()
	if err := s.DB.WithContext(ctx).Save(org).Error; err != nil {
		return nil, fmt.Errorf("update organisation %d: %w", id, err)
	}
	return org, nil
}

// GetBilling returns nil without error when the organisation has not saved billing details yet.
func (s *OrganisationService) GetBilling(ctx context.Context, organisationID uint) (*models.Billing, error) {
	var billing models.Billing
	err := s.DB.WithContext(ctx).
		Where("organisation_id = ?", organisationID).
		First(&billing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &billing, nil
}
