package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	phonebookdomain "github.com/ozmsg/gateway/internal/phonebook_service/domain"
	"github.com/ozmsg/gateway/internal/phonenumber"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// ErrOwnerNotFound indicates that a destination number matched no local
// user or contact. Messages with no resolvable owner are rejected, never
// persisted with a guessed owner.
var ErrOwnerNotFound = errors.New("no owner for destination number")

// OwnerResolver maps a destination phone number to the local user account
// responsible for it. Users' personal mobiles are checked before contact
// numbers; a contact match attributes the message to the contact's owner.
type OwnerResolver struct {
	userRepo    userdomain.UserRepository
	contactRepo phonebookdomain.ContactRepository
	norm        *phonenumber.Normalizer
	logger      *slog.Logger
}

// NewOwnerResolver creates an OwnerResolver.
func NewOwnerResolver(userRepo userdomain.UserRepository, contactRepo phonebookdomain.ContactRepository, norm *phonenumber.Normalizer, logger *slog.Logger) *OwnerResolver {
	return &OwnerResolver{
		userRepo:    userRepo,
		contactRepo: contactRepo,
		norm:        norm,
		logger:      logger.With("component", "owner_resolver"),
	}
}

// Resolve returns the owning user id for a destination number, or
// ErrOwnerNotFound. Lookups hit the store fresh on every call; callers that
// page through a batch may memoize results for the duration of one pass.
func (r *OwnerResolver) Resolve(ctx context.Context, toNumber string) (uuid.UUID, error) {
	tail := r.norm.TailKey(toNumber)
	if tail == "" {
		return uuid.Nil, ErrOwnerNotFound
	}

	users, err := r.userRepo.FindByMobileTail(ctx, tail)
	if err != nil {
		return uuid.Nil, err
	}
	if len(users) > 0 {
		return users[0].ID, nil
	}

	contacts, err := r.contactRepo.FindByNumberTail(ctx, tail)
	if err != nil {
		return uuid.Nil, err
	}
	if len(contacts) > 0 {
		return contacts[0].UserID, nil
	}

	r.logger.DebugContext(ctx, "Destination number matched no user or contact", "to", toNumber)
	return uuid.Nil, ErrOwnerNotFound
}
