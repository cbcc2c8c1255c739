// Package gormstore implements the invoice store on a relational document
// collection. It backs the remote variant's server side.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	"github.com/neeraj3071/InvoicePro/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store persists invoices through GORM. All reads and writes are scoped by
// owner; a foreign-owned record is reported as not found.
type Store struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Invoice]

	now func() time.Time
}

// New returns a Store over the given database handle.
func New(db *gorm.DB, log *zap.Logger, genID *snowflake.Node) *Store {
	return &Store{
		db:    db,
		log:   log.Named("invoice.gormstore"),
		genID: genID,
		repo:  repository.ProvideStore[domain.Invoice](db),
		now:   time.Now,
	}
}

// Migrate creates the invoice tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&domain.Invoice{}, &domain.InvoiceItem{})
}

func (s *Store) ListByOwner(ctx context.Context, ownerID snowflake.ID, filter domain.ListFilter) ([]domain.Invoice, error) {
	query := &domain.Invoice{OwnerID: ownerID}
	if filter.Status != nil {
		query.Status = *filter.Status
	}

	rows, err := s.repo.Find(ctx, query,
		repository.OrderBy("id ASC"),
		repository.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }),
	)
	if err != nil {
		return nil, backendErr(err)
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		invoices = append(invoices, *row)
	}
	return invoices, nil
}

func (s *Store) GetOne(ctx context.Context, ownerID snowflake.ID, invoiceID string) (*domain.Invoice, error) {
	return s.findOne(ctx, s.db, ownerID, domain.Ref{InvoiceID: invoiceID})
}

func (s *Store) Create(ctx context.Context, ownerID snowflake.ID, draft domain.Invoice) (*domain.Invoice, error) {
	if err := domain.NormalizeNew(&draft, ownerID, s.genID.Generate(), s.now()); err != nil {
		return nil, err
	}

	var taken int64
	err := s.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("invoice_id = ?", draft.InvoiceID).
		Count(&taken).Error
	if err != nil {
		return nil, backendErr(err)
	}
	if taken > 0 {
		return nil, domain.DuplicateInvoiceID(draft.InvoiceID)
	}

	if err := s.repo.Create(ctx, &draft); err != nil {
		if isDuplicateKey(err) {
			return nil, domain.DuplicateInvoiceID(draft.InvoiceID)
		}
		return nil, backendErr(err)
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", draft.InvoiceID),
		zap.String("owner_id", ownerID.String()),
	)
	return &draft, nil
}

func (s *Store) Update(ctx context.Context, ownerID snowflake.ID, ref domain.Ref, patch domain.Patch) (*domain.Invoice, error) {
	var updated *domain.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := s.findOne(ctx, tx, ownerID, ref)
		if err != nil {
			return err
		}

		itemsChanged := patch.Items != nil
		if err := domain.ApplyPatch(inv, patch, s.now()); err != nil {
			return err
		}

		if itemsChanged {
			if err := tx.Where("invoice_key = ?", inv.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
				return backendErr(err)
			}
			if len(inv.Items) > 0 {
				if err := tx.Create(&inv.Items).Error; err != nil {
					return backendErr(err)
				}
			}
		}

		if err := tx.Omit("Items").Save(inv).Error; err != nil {
			return backendErr(err)
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, ownerID snowflake.ID, ref domain.Ref) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := s.findOne(ctx, tx, ownerID, ref)
		if err != nil {
			return err
		}

		if err := tx.Where("invoice_key = ?", inv.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return backendErr(err)
		}
		res := tx.Where("id = ? AND owner_id = ?", inv.ID, ownerID).Delete(&domain.Invoice{})
		if res.Error != nil {
			return backendErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		s.log.Info("invoice deleted",
			zap.String("invoice_id", inv.InvoiceID),
			zap.String("owner_id", ownerID.String()),
		)
		return nil
	})
}

func (s *Store) SetStatus(ctx context.Context, ownerID snowflake.ID, ref domain.Ref, status domain.Status) (*domain.Invoice, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return s.Update(ctx, ownerID, ref, domain.Patch{Status: &status})
}

// Close is a no-op; the database handle is owned by the fx lifecycle.
func (s *Store) Close() error { return nil }

func (s *Store) findOne(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, ref domain.Ref) (*domain.Invoice, error) {
	stmt := tx.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })

	switch {
	case ref.Key != 0:
		stmt = stmt.Where("id = ?", ref.Key)
	case ref.InvoiceID != "":
		stmt = stmt.Where("invoice_id = ?", ref.InvoiceID)
	default:
		return nil, domain.ErrNotFound
	}

	var inv domain.Invoice
	if err := stmt.First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, backendErr(err)
	}
	return &inv, nil
}

func backendErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}

// isDuplicateKey recognizes unique index violations across the supported
// dialects; gorm only translates them to ErrDuplicatedKey on some drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key value")
}
