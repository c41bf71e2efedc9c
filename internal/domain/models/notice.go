package models

import "time"

// Notice is a PDF document published to the occupants of one building complex.
type Notice struct {
	BaseModel
	Title    string `gorm:"type:varchar(200);not null" json:"title"`
	FileName string `gorm:"type:varchar(255);not null" json:"fileName"`
	FileKey  string `gorm:"type:varchar(255);not null;index" json:"-"`
	FileSize int64  `json:"fileSize"`
	FileType string `gorm:"type:varchar(100)" json:"fileType"`

	// UploadURL is a signed download URL computed on every read.
	UploadURL string `gorm:"-" json:"uploadUrl"`

	StartDate *time.Time   `json:"startDate"`
	EndDate   *time.Time   `json:"endDate"`
	Status    NoticeStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	AuthorID          uint `gorm:"index;not null" json:"authorId"`
	BuildingComplexID uint `gorm:"index;not null" json:"buildingComplexId"`

	Author          *User            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	BuildingComplex *BuildingComplex `gorm:"foreignKey:BuildingComplexID;constraint:OnDelete:CASCADE" json:"buildingComplex,omitempty"`
}
