package course

import "time"

const (
	PurchaseStatusPurchased = "PURCHASED"
	PurchaseStatusCompleted = "COMPLETED"
)

// Purchase tracks a holder's progress through one course: PURCHASED, then COMPLETED.
type Purchase struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Holder           string     `gorm:"type:varchar(42);not null;uniqueIndex:idx_holder_course" json:"holder"`
	ExternalCourseID string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_holder_course" json:"web2CourseId"`
	CourseID         uint       `gorm:"index;not null" json:"courseId"`
	Status           string     `gorm:"type:varchar(20);default:'PURCHASED'" json:"status"`
	PricePaid        uint64     `gorm:"not null" json:"pricePaid"`
	Completions      int        `gorm:"default:0" json:"completions"`
	PurchasedAt      time.Time  `gorm:"not null" json:"purchasedAt"`
	CompletedAt      *time.Time `json:"completedAt"`
}

func (Purchase) TableName() string {
	return "course_purchases"
}
