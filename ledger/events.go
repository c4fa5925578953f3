package ledger

import (
	"context"

	"yideng/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Event names. Indexers match on these and on the payload field names below.
const (
	EventTokensPurchased     = "TokensPurchased"
	EventTokensSold          = "TokensSold"
	EventInitialDistribution = "InitialDistribution"
	EventTransfer            = "Transfer"
	EventApproval            = "Approval"
	EventCertificateMinted   = "CertificateMinted"
	EventCourseAdded         = "CourseAdded"
	EventCoursePurchased     = "CoursePurchased"
	EventCourseCompleted     = "CourseCompleted"
	EventRoleGranted         = "RoleGranted"
	EventRoleRevoked         = "RoleRevoked"
	EventNativeDeposited     = "NativeDeposited"
	EventNativeWithdrawn     = "NativeWithdrawn"
)

type TokensPurchased struct {
	Buyer       Address         `json:"buyer"`
	EthAmount   decimal.Decimal `json:"ethAmount"`
	TokenAmount uint64          `json:"tokenAmount"`
}

type TokensSold struct {
	Seller      Address         `json:"seller"`
	TokenAmount uint64          `json:"tokenAmount"`
	EthAmount   decimal.Decimal `json:"ethAmount"`
}

type InitialDistribution struct {
	Team      Address `json:"team"`
	Marketing Address `json:"marketing"`
	Community Address `json:"community"`
}

type TokenTransfer struct {
	From  Address `json:"from"`
	To    Address `json:"to"`
	Value uint64  `json:"value"`
}

type TokenApproval struct {
	Owner   Address `json:"owner"`
	Spender Address `json:"spender"`
	Value   uint64  `json:"value"`
}

type CertificateTransfer struct {
	From    Address `json:"from"`
	To      Address `json:"to"`
	TokenID uint64  `json:"tokenId"`
}

type CertificateMinted struct {
	TokenID      uint64  `json:"tokenId"`
	Web2CourseID string  `json:"web2CourseId"`
	Student      Address `json:"student"`
}

type CourseAdded struct {
	CourseID     uint   `json:"courseId"`
	Web2CourseID string `json:"web2CourseId"`
	Name         string `json:"name"`
}

type CoursePurchased struct {
	Buyer        Address `json:"buyer"`
	CourseID     uint    `json:"courseId"`
	Web2CourseID string  `json:"web2CourseId"`
}

type CourseCompleted struct {
	Student       Address `json:"student"`
	Web2CourseID  string  `json:"web2CourseId"`
	CertificateID uint64  `json:"certificateId"`
}

type RoleChanged struct {
	Scope   Scope   `json:"scope"`
	Role    Role    `json:"role"`
	Account Address `json:"account"`
	Sender  Address `json:"sender"`
}

type NativeMovement struct {
	Account Address         `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// EventFilter narrows an event log query. Zero values match everything.
type EventFilter struct {
	Name     string
	Contract Address
	AfterSeq uint64
	Limit    int
	Offset   int
}

// EventLog reads committed events.
type EventLog struct {
	db *gorm.DB
}

// List returns matching events ordered by sequence, plus the total match count.
func (l *EventLog) List(ctx context.Context, f EventFilter) ([]models.LedgerEvent, int64, error) {
	query := l.db.WithContext(ctx).Model(&models.LedgerEvent{})
	if f.Name != "" {
		query = query.Where("name = ?", f.Name)
	}
	if f.Contract != "" {
		query = query.Where("contract = ?", string(f.Contract))
	}
	if f.AfterSeq > 0 {
		query = query.Where("seq > ?", f.AfterSeq)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var events []models.LedgerEvent
	err := query.Order("seq ASC").Offset(f.Offset).Limit(limit).Find(&events).Error
	return events, total, err
}
