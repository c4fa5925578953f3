package course

import "time"

// Course is a catalog entry. ID is allocated sequentially from 1 and ExternalID is write-once.
type Course struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ExternalID  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"web2CourseId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       uint64    `gorm:"not null" json:"price"`
	Creator     string    `gorm:"type:varchar(42);not null" json:"creator"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Course) TableName() string {
	return "courses"
}
