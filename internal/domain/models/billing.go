package models

// Billing holds one organisation's billing contact; created lazily on first save.
type Billing struct {
	BaseModel
	OrganisationID uint   `gorm:"uniqueIndex;not null" json:"organisationId"`
	ContactName    string `gorm:"type:varchar(120)" json:"contactName"`
	Email          string `gorm:"type:varchar(191)" json:"email"`
	Phone          string `gorm:"type:varchar(30)" json:"phone"`
	Address
}
