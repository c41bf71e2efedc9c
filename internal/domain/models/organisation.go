package models

// Organisation is the tenant that owns building complexes and users.
type Organisation struct {
	BaseModel
	Name string `gorm:"type:varchar(120);not null" json:"name"`
	Address

	Users             []User            `gorm:"foreignKey:OrganisationID" json:"users,omitempty"`
	BuildingComplexes []BuildingComplex `gorm:"foreignKey:OrganisationID" json:"buildingComplexes,omitempty"`
	Billing           *Billing          `gorm:"foreignKey:OrganisationID" json:"billing,omitempty"`
}
