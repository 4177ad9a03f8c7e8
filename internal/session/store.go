package session

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/pkg"
)

// Record is the persisted form of a Session. The cookie value is never
// stored; ID holds its BLAKE2b-256 digest.
type Record struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:64;index"`
	Email     string    `gorm:"size:255"`
	FirstName string    `gorm:"size:100"`
	LastName  string    `gorm:"size:100"`
	Role      string    `gorm:"size:32"`
	Token     string    `gorm:"type:text"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Record) TableName() string { return "sessions" }

// Store persists sessions with GORM.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the sessions table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return mapError(err)
	}
	return nil
}

// Save inserts or replaces the record for sess.
func (s *Store) Save(ctx context.Context, sess Session) error {
	rec, err := newRecord(sess)
	if err != nil {
		return err
	}
	return mapError(upsert(s.db.WithContext(ctx), &rec))
}

// Replace saves sess and deletes the record of cookie value old in one
// transaction. An empty old only saves.
func (s *Store) Replace(ctx context.Context, old string, sess Session) error {
	rec, err := newRecord(sess)
	if err != nil {
		return err
	}
	err = pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if old != "" && old != sess.ID() {
			if err := tx.Delete(&Record{}, "id = ?", hashID(old)).Error; err != nil {
				return err
			}
		}
		return upsert(tx, &rec)
	})
	return mapError(err)
}

func newRecord(sess Session) (Record, error) {
	u, ok := sess.User()
	if !ok || sess.ID() == "" {
		return Record{}, domain.NewAppError(domain.CodeValidation, "cannot persist an unauthenticated session", nil)
	}
	return Record{
		ID:        hashID(sess.ID()),
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		Token:     sess.Token(),
		ExpiresAt: sess.ExpiresAt().UTC(),
	}, nil
}

func upsert(db *gorm.DB, rec *Record) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error
}

// Get loads the session with cookie value id.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, domain.ErrNotFound
	}
	var rec Record
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", hashID(id)).Error; err != nil {
		return Session{}, mapError(err)
	}
	u := domain.User{
		ID:        rec.UserID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Role:      domain.Role(rec.Role),
	}
	return Authenticated(id, u, rec.Token, rec.ExpiresAt), nil
}

// Delete removes the session with cookie value id. Deleting a missing
// session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return mapError(s.db.WithContext(ctx).Delete(&Record{}, "id = ?", hashID(id)).Error)
}

// DeleteExpired removes every session that expired before now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&Record{})
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

func hashID(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "session store error", err)
}

// isDuplicateKeyError detects unique constraint violations the pure-Go
// SQLite driver does not translate to gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
