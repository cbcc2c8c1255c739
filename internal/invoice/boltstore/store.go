// Package boltstore implements the invoice store on an embedded BoltDB
// file. It is the local persistence variant: one bucket holds the whole
// serialized collection and every read loads and filters it by owner.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/bwmarrin/snowflake"
	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	"go.uber.org/zap"
)

var bucketName = []byte("invoices")

// Store wraps a BoltDB database. Records are keyed by their big-endian
// record key so bucket iteration yields insertion order.
type Store struct {
	db    *bolt.DB
	log   *zap.Logger
	genID *snowflake.Node

	now func() time.Time
}

// Open opens (or creates) the database file and ensures the bucket exists.
func Open(path string, log *zap.Logger, genID *snowflake.Node) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	return &Store{
		db:    db,
		log:   log.Named("invoice.boltstore"),
		genID: genID,
		now:   time.Now,
	}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListByOwner(ctx context.Context, ownerID snowflake.ID, filter domain.ListFilter) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			var inv domain.Invoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return err
			}
			if inv.OwnerID != ownerID {
				return nil
			}
			if filter.Status != nil && inv.Status != *filter.Status {
				return nil
			}
			invoices = append(invoices, inv)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return invoices, nil
}

func (s *Store) GetOne(ctx context.Context, ownerID snowflake.ID, invoiceID string) (*domain.Invoice, error) {
	var found *domain.Invoice

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			var inv domain.Invoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return err
			}
			if inv.InvoiceID == invoiceID && inv.OwnerID == ownerID {
				found = &inv
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (s *Store) Create(ctx context.Context, ownerID snowflake.ID, draft domain.Invoice) (*domain.Invoice, error) {
	key := s.genID.Generate()
	if err := domain.NormalizeNew(&draft, ownerID, key, s.now()); err != nil {
		return nil, err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := ensureUniqueInvoiceID(b, draft.InvoiceID); err != nil {
			return err
		}
		data, err := json.Marshal(&draft)
		if err != nil {
			return err
		}
		return b.Put(keyBytes(key), data)
	})
	if err != nil {
		return nil, wrapBackendErr(err)
	}

	s.log.Debug("invoice created",
		zap.String("invoice_id", draft.InvoiceID),
		zap.String("owner_id", ownerID.String()),
	)
	return &draft, nil
}

func (s *Store) Update(ctx context.Context, ownerID snowflake.ID, ref domain.Ref, patch domain.Patch) (*domain.Invoice, error) {
	var updated *domain.Invoice

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		k, inv, err := s.lookup(b, ownerID, ref)
		if err != nil {
			return err
		}

		if err := domain.ApplyPatch(inv, patch, s.now()); err != nil {
			return err
		}

		data, err := json.Marshal(inv)
		if err != nil {
			return err
		}
		if err := b.Put(k, data); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, wrapBackendErr(err)
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, ownerID snowflake.ID, ref domain.Ref) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		k, inv, err := s.lookup(b, ownerID, ref)
		if err != nil {
			return err
		}
		if err := b.Delete(k); err != nil {
			return err
		}
		s.log.Debug("invoice deleted",
			zap.String("invoice_id", inv.InvoiceID),
			zap.String("owner_id", ownerID.String()),
		)
		return nil
	})
	return wrapBackendErr(err)
}

func (s *Store) SetStatus(ctx context.Context, ownerID snowflake.ID, ref domain.Ref, status domain.Status) (*domain.Invoice, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return s.Update(ctx, ownerID, ref, domain.Patch{Status: &status})
}

// lookup finds a record by reference and enforces ownership. A foreign-owned
// record is reported exactly like a missing one.
func (s *Store) lookup(b *bolt.Bucket, ownerID snowflake.ID, ref domain.Ref) ([]byte, *domain.Invoice, error) {
	if ref.Key != 0 {
		k := keyBytes(ref.Key)
		v := b.Get(k)
		if v == nil {
			return nil, nil, domain.ErrNotFound
		}
		var inv domain.Invoice
		if err := json.Unmarshal(v, &inv); err != nil {
			return nil, nil, err
		}
		if inv.OwnerID != ownerID {
			return nil, nil, domain.ErrNotFound
		}
		return k, &inv, nil
	}

	if ref.InvoiceID != "" {
		var foundKey []byte
		var found *domain.Invoice
		err := b.ForEach(func(k, v []byte) error {
			var inv domain.Invoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return err
			}
			if inv.InvoiceID == ref.InvoiceID && inv.OwnerID == ownerID {
				foundKey = append([]byte(nil), k...)
				found = &inv
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		if found == nil {
			return nil, nil, domain.ErrNotFound
		}
		return foundKey, found, nil
	}

	return nil, nil, domain.ErrNotFound
}

// ensureUniqueInvoiceID rejects a public identifier already held by any
// record, regardless of owner.
func ensureUniqueInvoiceID(b *bolt.Bucket, invoiceID string) error {
	return b.ForEach(func(k, v []byte) error {
		var inv domain.Invoice
		if err := json.Unmarshal(v, &inv); err != nil {
			return err
		}
		if inv.InvoiceID == invoiceID {
			return domain.DuplicateInvoiceID(invoiceID)
		}
		return nil
	})
}

func keyBytes(id snowflake.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id.Int64()))
	return buf
}

// wrapBackendErr wraps storage failures while letting domain errors through
// untouched.
func wrapBackendErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || domain.AsValidationErrors(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}
