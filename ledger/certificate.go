package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yideng/models/course"

	"gorm.io/gorm"
)

const (
	CertificateName   = "YiDeng Course Certificate"
	CertificateSymbol = "YDCC"
)

// CertificateRegistry is the non-fungible certificate ledger. Only holders of the
// MINTER capability in the certificate scope can mint.
type CertificateRegistry struct {
	address Address
	runner  *Runner
	caps    *Capabilities
}

func (r *CertificateRegistry) Address() Address {
	return r.address
}

// GrantMinter gives account the minter capability. Granting twice is a no-op.
func (r *CertificateRegistry) GrantMinter(ctx context.Context, caller, account Address) error {
	return r.caps.Grant(ctx, caller, ScopeCertificate, RoleMinter, account)
}

func (r *CertificateRegistry) RevokeMinter(ctx context.Context, caller, account Address) error {
	return r.caps.Revoke(ctx, caller, ScopeCertificate, RoleMinter, account)
}

func (r *CertificateRegistry) IsMinter(ctx context.Context, account Address) (bool, error) {
	return r.caps.Has(ctx, ScopeCertificate, RoleMinter, account)
}

// Mint issues the next certificate to holder for the given course.
func (r *CertificateRegistry) Mint(ctx context.Context, caller, holder Address, externalCourseID, metadataURI string) (uint64, error) {
	var tokenID uint64
	err := r.runner.Run(ctx, func(tx *Tx) error {
		id, err := r.mint(tx, caller, holder, externalCourseID, metadataURI)
		tokenID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

func (r *CertificateRegistry) mint(tx *Tx, caller, holder Address, externalCourseID, metadataURI string) (uint64, error) {
	if err := r.caps.require(tx, ScopeCertificate, RoleMinter, caller); err != nil {
		return 0, err
	}
	if holder.IsZero() {
		return 0, ErrInvalidHolder
	}
	externalCourseID = courseKey(externalCourseID)
	if !validCourseKey(externalCourseID) {
		return 0, ErrInvalidCourse
	}

	var last uint64
	if err := tx.db.Model(&course.Certificate{}).Select("COALESCE(MAX(token_id), 0)").Scan(&last).Error; err != nil {
		return 0, fmt.Errorf("read certificate sequence: %w", err)
	}
	tokenID, err := addU64(last, 1)
	if err != nil {
		return 0, err
	}

	cert := course.Certificate{
		TokenID:          tokenID,
		Holder:           string(holder),
		ExternalCourseID: externalCourseID,
		Owner:            string(holder),
		MetadataURI:      metadataURI,
		MintedBy:         string(caller),
		IssuedAt:         time.Now(),
	}
	if err := tx.db.Create(&cert).Error; err != nil {
		return 0, fmt.Errorf("store certificate: %w", err)
	}

	if err := tx.Emit(r.address, EventTransfer, CertificateTransfer{From: ZeroAddress, To: holder, TokenID: tokenID}); err != nil {
		return 0, err
	}
	if err := tx.Emit(r.address, EventCertificateMinted, CertificateMinted{
		TokenID: tokenID, Web2CourseID: externalCourseID, Student: holder,
	}); err != nil {
		return 0, err
	}
	return tokenID, nil
}

// Transfer moves a certificate to a new owner. Only the current owner may transfer it.
// The per-course record stays with the holder it was minted to.
func (r *CertificateRegistry) Transfer(ctx context.Context, caller, to Address, tokenID uint64) error {
	return r.runner.Run(ctx, func(tx *Tx) error {
		if to.IsZero() {
			return ErrInvalidHolder
		}
		cert, err := certificate(tx.db, tokenID)
		if err != nil {
			return err
		}
		if Address(cert.Owner) != caller {
			return ErrNotTokenOwner
		}

		from := Address(cert.Owner)
		if err := tx.db.Model(&course.Certificate{}).Where("token_id = ?", tokenID).Update("owner", string(to)).Error; err != nil {
			return fmt.Errorf("transfer certificate: %w", err)
		}
		return tx.Emit(r.address, EventTransfer, CertificateTransfer{From: from, To: to, TokenID: tokenID})
	})
}

// HasCertificate reports whether any certificate was minted to holder for the course.
func (r *CertificateRegistry) HasCertificate(ctx context.Context, holder Address, externalCourseID string) (bool, error) {
	var count int64
	err := r.runner.db.WithContext(ctx).Model(&course.Certificate{}).
		Where("holder = ? AND external_course_id = ?", string(holder), courseKey(externalCourseID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CertificatesFor lists the token ids minted to holder for the course in mint order.
func (r *CertificateRegistry) CertificatesFor(ctx context.Context, holder Address, externalCourseID string) ([]uint64, error) {
	ids := []uint64{}
	err := r.runner.db.WithContext(ctx).Model(&course.Certificate{}).
		Where("holder = ? AND external_course_id = ?", string(holder), courseKey(externalCourseID)).
		Order("token_id ASC").
		Pluck("token_id", &ids).Error
	return ids, err
}

// Certificate returns the full record for tokenID.
func (r *CertificateRegistry) Certificate(ctx context.Context, tokenID uint64) (*course.Certificate, error) {
	return certificate(r.runner.db.WithContext(ctx), tokenID)
}

func (r *CertificateRegistry) MetadataOf(ctx context.Context, tokenID uint64) (string, error) {
	cert, err := r.Certificate(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return cert.MetadataURI, nil
}

func (r *CertificateRegistry) OwnerOf(ctx context.Context, tokenID uint64) (Address, error) {
	cert, err := r.Certificate(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return Address(cert.Owner), nil
}

// BalanceOf counts the certificates currently owned by owner.
func (r *CertificateRegistry) BalanceOf(ctx context.Context, owner Address) (int64, error) {
	var count int64
	err := r.runner.db.WithContext(ctx).Model(&course.Certificate{}).Where("owner = ?", string(owner)).Count(&count).Error
	return count, err
}

func certificate(db *gorm.DB, tokenID uint64) (*course.Certificate, error) {
	var cert course.Certificate
	err := db.Where("token_id = ?", tokenID).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	return &cert, nil
}
