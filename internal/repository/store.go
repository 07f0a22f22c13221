package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrTxConflict is returned when a transaction keeps losing against
// concurrent writers after the bounded retries are spent. Callers may
// safely retry the whole operation.
var ErrTxConflict = errors.New("transaction conflict")

// txRetries bounds the internal retry loop for serialization failures.
const txRetries = 3

// Store bundles all repositories behind a single transactional boundary.
// InTx hands the callback a Store bound to one serializable transaction, so
// every read a validation makes and the writes that follow see the same
// snapshot and commit or fail together.
type Store interface {
	Users() IUserRepository
	Parties() IPartyRepository
	Participants() IParticipantRepository
	Dishes() IDishRepository
	PartyDishes() IPartyDishRepository
	Contributions() IContributionRepository
	Invitations() IInvitationRepository
	Categories() ICategoryRepository
	Notifications() INotificationRepository

	// InTx runs fn inside one serializable transaction. Serialization
	// failures are retried up to txRetries times before surfacing as
	// ErrTxConflict. fn must use the Store it is handed, not the outer one.
	InTx(ctx context.Context, fn func(s Store) error) error
}

// GormStore implements Store on top of a gorm connection (or an open
// transaction, when created through InTx).
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() IUserRepository                 { return &UserRepository{db: s.db} }
func (s *GormStore) Parties() IPartyRepository              { return &PartyRepository{db: s.db} }
func (s *GormStore) Participants() IParticipantRepository   { return &ParticipantRepository{db: s.db} }
func (s *GormStore) Dishes() IDishRepository                { return &DishRepository{db: s.db} }
func (s *GormStore) PartyDishes() IPartyDishRepository      { return &PartyDishRepository{db: s.db} }
func (s *GormStore) Contributions() IContributionRepository { return &ContributionRepository{db: s.db} }
func (s *GormStore) Invitations() IInvitationRepository     { return &InvitationRepository{db: s.db} }
func (s *GormStore) Categories() ICategoryRepository        { return &CategoryRepository{db: s.db} }
func (s *GormStore) Notifications() INotificationRepository { return &NotificationRepository{db: s.db} }

// InTx runs fn in a serializable transaction with bounded conflict retry.
func (s *GormStore) InTx(ctx context.Context, fn func(s Store) error) error {
	var err error
	for attempt := 0; attempt < txRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&GormStore{db: tx})
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrTxConflict, err)
}

// isSerializationFailure matches postgres serialization_failure (40001) and
// deadlock_detected (40P01), both of which are safe to retry.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
