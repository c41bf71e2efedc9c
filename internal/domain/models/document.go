package models

// Document is an organisation-level file that is not shown on a noticeboard.
type Document struct {
	BaseModel
	Title          string `gorm:"type:varchar(200);not null" json:"title"`
	FileName       string `gorm:"type:varchar(255)" json:"fileName"`
	FileKey        string `gorm:"type:varchar(255);not null" json:"fileKey"`
	FileType       string `gorm:"type:varchar(100)" json:"fileType"`
	FileSize       int64  `json:"fileSize"`
	OrganisationID uint   `gorm:"index;not null" json:"organisationId"`
	UploaderID     uint   `gorm:"index" json:"uploaderId"`
}
