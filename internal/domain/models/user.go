package models

// User is created on first sign-in; OrganisationID stays nil until onboarding completes.
type User struct {
	BaseModel
	Name              string `gorm:"type:varchar(100)" json:"name"`
	Email             string `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password          string `gorm:"type:varchar(100)" json:"-"`
	Image             string `gorm:"type:varchar(500)" json:"image"`
	OrganisationID    *uint  `gorm:"index" json:"organisationId"`
	BuildingComplexID *uint  `json:"buildingComplexId"`

	Organisation *Organisation `gorm:"foreignKey:OrganisationID" json:"organisation,omitempty"`
}
