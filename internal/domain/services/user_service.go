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

// InterfaceUserService covers the user.* procedures and the lookups sign-in needs.
type InterfaceUserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error)
	ListEmailsByOrganisation(ctx context.Context, organisationID uint) ([]string, error)
}

// UpdateUserInput carries the profile fields a user may change; nil fields are left alone.
type UpdateUserInput struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	Image             *string `json:"image" binding:"omitempty,url,max=500"`
	OrganisationID    *uint   `json:"organisationId" binding:"omitempty,min=1"`
	BuildingComplexID *uint   `json:"buildingComplexId" binding:"omitempty,min=1"`
}

type UserService struct {
	DB     *gorm.DB
	Config *config.Config
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
		logger: logger,
	}
}

// 1 GetByID loads a user with its organisation.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// 2 GetByEmail matches email case-insensitively.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// 3 Create inserts a new user.
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// 4 UpdateUser applies the non-nil fields of input.
func (s *UserService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if input.OrganisationID != nil {
		updates["organisation_id"] = *input.OrganisationID
	}
	if input.BuildingComplexID != nil {
		updates["building_complex_id"] = *input.BuildingComplexID
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return s.GetByID(ctx, id)
}

// 5 ListEmailsByOrganisation returns the addresses notice emails are sent to.
func (s *UserService) ListEmailsByOrganisation(ctx context.Context, organisationID uint) ([]string, error) {
	var emails []string
	err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("organisation_id = ?", organisationID).
		Order("id").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("list organisation emails: %w", err)
	}
	return emails, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// notFound turns gorm's not-found error into the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// CheckOrganisationAccess reports whether user may act on data owned by organisationID.
func CheckOrganisationAccess(user *models.User, organisationID uint) error {
	if user == nil || user.OrganisationID == nil {
		return ErrOrganisationRequired
	}
	if *user.OrganisationID != organisationID {
		return ErrForbidden
	}
	return nil
}
