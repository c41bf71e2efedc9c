package models

const (
	BuildingComplexResidential = "residential"
	BuildingComplexCommercial  = "commercial"
	BuildingComplexMixed       = "mixed"
)

// BuildingComplex is a managed site; it owns the notices shown to its occupants.
// Address fields are not changed after creation.
type BuildingComplex struct {
	BaseModel
	Name             string `gorm:"type:varchar(120);not null" json:"name"`
	Type             string `gorm:"type:varchar(20);not null;default:'residential'" json:"type"`
	TotalOccupancies int    `gorm:"not null;default:0" json:"totalOccupancies"`
	Address
	OrganisationID uint `gorm:"index;not null" json:"organisationId"`

	Organisation *Organisation `gorm:"foreignKey:OrganisationID;constraint:OnDelete:CASCADE" json:"organisation,omitempty"`
	Notices      []Notice      `gorm:"foreignKey:BuildingComplexID" json:"notices,omitempty"`
}

// ValidBuildingComplexType reports whether t is one of the supported complex types.
func ValidBuildingComplexType(t string) bool {
	switch t {
	case BuildingComplexResidential, BuildingComplexCommercial, BuildingComplexMixed:
		return true
	}
	return false
}
