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

// InterfaceBillingService covers billing.create and billing.update.
type InterfaceBillingService interface {
	Create(ctx context.Context, organisationID uint, input BillingInput) (*models.Billing, error)
	Update(ctx context.Context, organisationID, id uint, input BillingInput) (*models.Billing, error)
	Save(ctx context.Context, organisationID uint, input BillingSaveInput) (*models.Billing, error)
}

type BillingInput struct {
	ContactName string `json:"contactName" binding:"required,max=120"`
	Email       string `json:"email" binding:"required,email,max=191"`
	Phone       string `json:"phone" binding:"max=30"`
	AddressInput
}

// BillingSaveInput is what the settings form submits: with an id it updates, without one it creates.
type BillingSaveInput struct {
	ID *uint `json:"id" binding:"omitempty,min=1"`
	BillingInput
}

type BillingService struct {
	DB     *gorm.DB
	Config *config.Config
	logger *zap.Logger
}

func NewBillingService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) InterfaceBillingService {
	return &BillingService{
		DB:     db,
		Config: cfg,
		logger: logger,
	}
}

func (s *BillingService) Create(ctx context.Context, organisationID uint, input BillingInput) (*models.Billing, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Billing{}).
		Where("organisation_id = ?", organisationID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrBillingAlreadyExists
	}

	billing := &models.Billing{OrganisationID: organisationID}
	input.apply(billing)
	if err := s.DB.WithContext(ctx).Create(billing).Error; err != nil {
		return nil, fmt.Errorf("create billing: %w", err)
	}
	return billing, nil
}

// Update changes the billing record id, which must belong to organisationID.
func (s *BillingService) Update(ctx context.Context, organisationID, id uint, input BillingInput) (*models.Billing, error) {
	var billing models.Billing
	if err := s.DB.WithContext(ctx).First(&billing, id).Error; err != nil {
		return nil, notFound(err, ErrBillingNotFound)
	}
	if billing.OrganisationID != organisationID {
		return nil, ErrForbidden
	}

	input.apply(&billing)
	if err := s.DB.WithContext(ctx).Save(&billing).Error; err != nil {
		return nil, fmt.Errorf("update billing %d: %w", id, err)
	}
	return &billing, nil
}

func (s *BillingService) Save(ctx context.Context, organisationID uint, input BillingSaveInput) (*models.Billing, error) {
	if input.ID != nil {
		return s.Update(ctx, organisationID, *input.ID, input.BillingInput)
	}
	return s.Create(ctx, organisationID, input.BillingInput)
}

func (in BillingInput) apply(b *models.Billing) {
	b.ContactName = strings.TrimSpace(in.ContactName)
	b.Email = NormalizeEmail(in.Email)
	b.Phone = strings.TrimSpace(in.Phone)
	b.Address = in.AddressInput.toModel()
}
