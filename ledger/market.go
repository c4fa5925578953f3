package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"yideng/models/course"

	"gorm.io/gorm"
)

// CompletionOracle is an outside system that knows whether a holder finished a course.
type CompletionOracle interface {
	Completed(ctx context.Context, holder Address, externalCourseID string) (bool, error)
}

// MarketOptions tune the completion pipeline.
type MarketOptions struct {
	// AllowReissue lets a completed course be verified again, minting another
	// certificate each time. When false the second verification fails.
	AllowReissue    bool
	MetadataBaseURL string
}

// CourseMarketplace sells courses for tokens and turns verified completions into
// certificates, minting with its own minter capability.
type CourseMarketplace struct {
	address  Address
	runner   *Runner
	caps     *Capabilities
	token    *TokenEconomy
	registry *CertificateRegistry
	oracle   CompletionOracle
	opts     MarketOptions
}

// VerifyResult is the outcome of one holder in a batch verification.
type VerifyResult struct {
	Holder        Address
	CertificateID uint64
	Err           error
}

func (m *CourseMarketplace) Address() Address {
	return m.address
}

// Column widths of the course tables.
const (
	maxCourseIDLen   = 100
	maxCourseNameLen = 255
)

// courseKey is the stored form of an external course id. Every lookup goes through it.
func courseKey(externalID string) string {
	return strings.TrimSpace(externalID)
}

func validCourseKey(key string) bool {
	return key != "" && utf8.RuneCountInString(key) <= maxCourseIDLen
}

// AddCourse registers a course under a new sequential id.
func (m *CourseMarketplace) AddCourse(ctx context.Context, caller Address, externalID, name string, price uint64) (*course.Course, error) {
	var created course.Course
	err := m.runner.Run(ctx, func(tx *Tx) error {
		if err := m.caps.require(tx, ScopeMarket, RoleAdmin, caller); err != nil {
			return err
		}
		externalID = courseKey(externalID)
		name = strings.TrimSpace(name)
		if !validCourseKey(externalID) || name == "" || utf8.RuneCountInString(name) > maxCourseNameLen {
			return ErrInvalidCourse
		}
		if price > UnlimitedAllowance {
			return ErrInvalidAmount
		}

		var count int64
		if err := tx.db.Model(&course.Course{}).Where("external_id = ?", externalID).Count(&count).Error; err != nil {
			return fmt.Errorf("look up course: %w", err)
		}
		if count > 0 {
			return ErrCourseExists
		}

		var last uint
		if err := tx.db.Model(&course.Course{}).Select("COALESCE(MAX(id), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("read course sequence: %w", err)
		}

		created = course.Course{
			ID:         last + 1,
			ExternalID: externalID,
			Name:       name,
			Price:      price,
			Creator:    string(caller),
			IsActive:   true,
			CreatedAt:  time.Now(),
		}
		if err := tx.db.Create(&created).Error; err != nil {
			return fmt.Errorf("store course: %w", err)
		}

		return tx.Emit(m.address, EventCourseAdded, CourseAdded{
			CourseID: created.ID, Web2CourseID: externalID, Name: name,
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// PurchaseCourse charges the course price to holder through the allowance holder gave
// the marketplace and records the purchase. Tokens go to the course creator.
func (m *CourseMarketplace) PurchaseCourse(ctx context.Context, holder Address, externalID string) (*course.Purchase, error) {
	if holder.IsZero() {
		return nil, ErrInvalidHolder
	}

	var purchase course.Purchase
	err := m.runner.Run(ctx, func(tx *Tx) error {
		c, err := activeCourse(tx.db, externalID)
		if err != nil {
			return err
		}

		_, err = findPurchase(tx.db, holder, c.ExternalID)
		if err == nil {
			return ErrAlreadyPurchased
		}
		if !errors.Is(err, ErrNotPurchased) {
			return err
		}

		if c.Price > 0 {
			if err := m.token.transferFrom(tx, m.address, holder, Address(c.Creator), c.Price, c.ExternalID); err != nil {
				return err
			}
		}

		purchase = course.Purchase{
			Holder:           string(holder),
			ExternalCourseID: c.ExternalID,
			CourseID:         c.ID,
			Status:           course.PurchaseStatusPurchased,
			PricePaid:        c.Price,
			PurchasedAt:      time.Now(),
		}
		if err := tx.db.Create(&purchase).Error; err != nil {
			return fmt.Errorf("store purchase: %w", err)
		}

		return tx.Emit(m.address, EventCoursePurchased, CoursePurchased{
			Buyer: holder, CourseID: c.ID, Web2CourseID: c.ExternalID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// VerifyCompletion marks the holder's purchased course completed and mints the
// certificate. Callers need ADMIN or ORACLE in the market scope.
func (m *CourseMarketplace) VerifyCompletion(ctx context.Context, caller, holder Address, externalID string) (uint64, error) {
	var tokenID uint64
	err := m.runner.Run(ctx, func(tx *Tx) error {
		if err := m.caps.requireAny(tx, ScopeMarket, caller, RoleAdmin, RoleOracle); err != nil {
			return err
		}
		id, err := m.complete(tx, holder, externalID)
		tokenID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// BatchVerifyCompletion verifies each holder independently. A failing holder does not
// stop the others; every holder gets a result in input order. Only an authorization
// failure aborts the batch, before any holder is processed.
func (m *CourseMarketplace) BatchVerifyCompletion(ctx context.Context, caller Address, holders []Address, externalID string) ([]VerifyResult, error) {
	if len(holders) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := m.authorizeVerifier(ctx, caller); err != nil {
		return nil, err
	}

	results := make([]VerifyResult, 0, len(holders))
	for _, holder := range holders {
		id, err := m.VerifyCompletion(ctx, caller, holder, externalID)
		results = append(results, VerifyResult{Holder: holder, CertificateID: id, Err: err})
	}
	return results, nil
}

// VerifyWithOracle lets a holder claim completion. The marketplace asks the oracle and
// verifies on its own authority when the oracle confirms.
func (m *CourseMarketplace) VerifyWithOracle(ctx context.Context, holder Address, externalID string) (uint64, error) {
	if m.oracle == nil {
		return 0, ErrOracleUnavailable
	}
	if holder.IsZero() {
		return 0, ErrInvalidHolder
	}

	// no ledger lock is held while the oracle is consulted
	ok, err := m.oracle.Completed(ctx, holder, courseKey(externalID))
	if err != nil {
		return 0, fmt.Errorf("completion oracle: %w", err)
	}
	if !ok {
		return 0, ErrNotConfirmed
	}

	var tokenID uint64
	err = m.runner.Run(ctx, func(tx *Tx) error {
		id, err := m.complete(tx, holder, externalID)
		tokenID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

func (m *CourseMarketplace) complete(tx *Tx, holder Address, externalID string) (uint64, error) {
	purchase, err := findPurchase(tx.db, holder, externalID)
	if err != nil {
		return 0, err
	}
	if purchase.Status == course.PurchaseStatusCompleted && !m.opts.AllowReissue {
		return 0, ErrAlreadyCompleted
	}

	tokenID, err := m.registry.mint(tx, m.address, holder, purchase.ExternalCourseID, m.metadataURI(holder, purchase.ExternalCourseID))
	if err != nil {
		return 0, err
	}

	now := time.Now()
	purchase.Status = course.PurchaseStatusCompleted
	purchase.Completions++
	purchase.CompletedAt = &now
	if err := tx.db.Save(purchase).Error; err != nil {
		return 0, fmt.Errorf("store completion: %w", err)
	}

	if err := tx.Emit(m.address, EventCourseCompleted, CourseCompleted{
		Student: holder, Web2CourseID: purchase.ExternalCourseID, CertificateID: tokenID,
	}); err != nil {
		return 0, err
	}
	return tokenID, nil
}

func (m *CourseMarketplace) authorizeVerifier(ctx context.Context, caller Address) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	for _, role := range []Role{RoleAdmin, RoleOracle} {
		ok, err := m.caps.Has(ctx, ScopeMarket, role, caller)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrUnauthorized
}

func (m *CourseMarketplace) metadataURI(holder Address, externalID string) string {
	base := strings.TrimRight(m.opts.MetadataBaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, url.PathEscape(externalID), holder)
}

// Course returns the course with the given sequential id.
func (m *CourseMarketplace) Course(ctx context.Context, id uint) (*course.Course, error) {
	var c course.Course
	err := m.runner.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *CourseMarketplace) CourseByExternalID(ctx context.Context, externalID string) (*course.Course, error) {
	return activeCourse(m.runner.db.WithContext(ctx), externalID)
}

// Courses lists the catalog in id order.
func (m *CourseMarketplace) Courses(ctx context.Context, offset, limit int) ([]course.Course, int64, error) {
	query := m.runner.db.WithContext(ctx).Model(&course.Course{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}

	var courses []course.Course
	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

// HasCourse reports whether holder bought the course.
func (m *CourseMarketplace) HasCourse(ctx context.Context, holder Address, externalID string) (bool, error) {
	_, err := findPurchase(m.runner.db.WithContext(ctx), holder, externalID)
	if errors.Is(err, ErrNotPurchased) {
		return false, nil
	}
	return err == nil, err
}

func (m *CourseMarketplace) Purchase(ctx context.Context, holder Address, externalID string) (*course.Purchase, error) {
	return findPurchase(m.runner.db.WithContext(ctx), holder, externalID)
}

func activeCourse(db *gorm.DB, externalID string) (*course.Course, error) {
	var c course.Course
	err := db.Where("external_id = ? AND is_active = ?", courseKey(externalID), true).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read course: %w", err)
	}
	return &c, nil
}

func findPurchase(db *gorm.DB, holder Address, externalID string) (*course.Purchase, error) {
	var p course.Purchase
	err := db.Where("holder = ? AND external_course_id = ?", string(holder), courseKey(externalID)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotPurchased
	}
	if err != nil {
		return nil, fmt.Errorf("read purchase: %w", err)
	}
	return &p, nil
}
