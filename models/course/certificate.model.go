package course

import "time"

// Certificate is one minted certificate token. Holder is the address it was minted to and
// never changes; Owner follows transfers.
type Certificate struct {
	TokenID          uint64    `gorm:"primaryKey;autoIncrement:false" json:"tokenId"`
	Holder           string    `gorm:"type:varchar(42);not null;index:idx_cert_holder_course" json:"holder"`
	ExternalCourseID string    `gorm:"type:varchar(100);not null;index:idx_cert_holder_course" json:"web2CourseId"`
	Owner            string    `gorm:"type:varchar(42);not null;index" json:"owner"`
	MetadataURI      string    `gorm:"type:text" json:"metadataUri"`
	MintedBy         string    `gorm:"type:varchar(42)" json:"mintedBy"`
	IssuedAt         time.Time `gorm:"not null" json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
