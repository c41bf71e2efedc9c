package services

import "errors"

var (
	ErrNoticeNotFound             = errors.New("notice not found")
	ErrBuildingComplexNotFound    = errors.New("building complex not found")
	ErrOrganisationNotFound       = errors.New("organisation not found")
	ErrUserNotFound               = errors.New("user not found")
	ErrBillingNotFound            = errors.New("billing not found")
	ErrBillingAlreadyExists       = errors.New("billing already exists for organisation")
	ErrInvalidCursor              = errors.New("cursor does not reference a notice")
	ErrInvalidDateRange           = errors.New("start date is after end date")
	ErrInvalidNoticeFile          = errors.New("notice file must be an uploaded PDF")
	ErrInvalidBuildingComplexType = errors.New("invalid building complex type")
	ErrForbidden                  = errors.New("resource belongs to another organisation")
	ErrOrganisationRequired       = errors.New("user has no organisation")
	ErrPasswordIncorrect          = errors.New("incorrect email or password")
	ErrInvalidToken               = errors.New("invalid session token")
)
