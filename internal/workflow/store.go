package workflow

import (
	"context"

	"plan-review/internal/models"
	"plan-review/internal/ordering"
	"plan-review/internal/topics"
)

// Reader is the read side shared by the store and its transactions.
// Lookups return nil, nil when nothing matches.
type Reader interface {
	FindUnit(ctx context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error)
	GetUnit(ctx context.Context, id uint) (*models.ReviewableUnit, error)
	ListUnits(ctx context.Context, applicationID string) ([]models.ReviewableUnit, error)
	ListChildren(ctx context.Context, ownerID uint) ([]models.Child, error)
	GetChild(ctx context.Context, id uint) (*models.Child, error)
	GetRecord(ctx context.Context, id uint) (*models.ReviewRecord, error)
	CurrentRecord(ctx context.Context, ownerID uint, kind models.ReviewKind) (*models.ReviewRecord, error)
	ListRecords(ctx context.Context, ownerID uint, kind models.ReviewKind) ([]models.ReviewRecord, error)
}

// Tx is a unit of work. All writes of one coordinator call go through one Tx.
type Tx interface {
	Reader
	ordering.Store

	// EnsureUnit returns the locked unit for (applicationID, topic), creating it if needed
	EnsureUnit(ctx context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error)
	// LockUnit locks an existing unit for the rest of the transaction
	LockUnit(ctx context.Context, id uint) (*models.ReviewableUnit, error)
	UpdateUnit(ctx context.Context, unit *models.ReviewableUnit) error
	UpdateChild(ctx context.Context, child *models.Child) error
	InsertRecord(ctx context.Context, rec *models.ReviewRecord) error
	// CloseRecord stores the verdict fields of an open record
	CloseRecord(ctx context.Context, rec *models.ReviewRecord) error
	// ResubmitRecord stores the submission fields of an open record
	ResubmitRecord(ctx context.Context, rec *models.ReviewRecord) error
	// SupersedeRecord clears is_current on a record
	SupersedeRecord(ctx context.Context, id uint) error
}

// Store runs transactions and serves reads outside of them
type Store interface {
	Reader
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Catalog resolves the content rules of a topic
type Catalog interface {
	Rules(topic models.Topic) (topics.Rules, error)
	Topics() []models.Topic
}

// CommentSealer protects rejection comments at rest
type CommentSealer interface {
	Seal(ctx context.Context, plaintext string) (string, error)
	Unseal(ctx context.Context, ciphertext string) (string, error)
}
