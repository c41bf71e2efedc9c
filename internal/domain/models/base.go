package models

import "time"

type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address is embedded by every entity that carries a postal address.
type Address struct {
	AddressLine1 string `gorm:"type:varchar(200)" json:"addressLine1"`
	AddressLine2 string `gorm:"type:varchar(200)" json:"addressLine2"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	State        string `gorm:"type:varchar(100)" json:"state"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postalCode"`
	Country      string `gorm:"type:varchar(100)" json:"country"`
}
