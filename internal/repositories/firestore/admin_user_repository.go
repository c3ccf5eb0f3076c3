package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/anvi-leather/api/internal/domain"
	pfirestore "github.com/anvi-leather/api/internal/platform/firestore"
	"github.com/anvi-leather/api/internal/repositories"
)

const (
	adminUsersCollection  = "adminUsers"
	adminEmailsCollection = "adminEmails"
)

// AdminUserRepository persists back-office accounts. Email uniqueness is
// enforced with index documents keyed by the lower-cased address, claimed in
// the same transaction as the account write.
type AdminUserRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[domain.AdminUser]
}

// NewAdminUserRepository constructs a Firestore-backed admin account repository.
func NewAdminUserRepository(provider *pfirestore.Provider) (*AdminUserRepository, error) {
	if provider == nil {
		return nil, errors.New("admin user repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.AdminUser) (any, error) {
		return encodeAdminUserDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.AdminUser, error) {
		var doc adminUserDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.AdminUser{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeAdminUserDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.AdminUser](provider, adminUsersCollection, encoder, decoder)
	return &AdminUserRepository{provider: provider, base: base}, nil
}

// Insert stores a new account and claims its e-mail address atomically.
func (r *AdminUserRepository) Insert(ctx context.Context, user domain.AdminUser) error {
	if r == nil || r.base == nil {
		return errors.New("admin user repository not initialised")
	}
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return errors.New("admin user repository: id is required")
	}
	user.Email = normaliseEmail(user.Email)

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(adminUsersCollection).Doc(user.ID)
	emailRef := client.Collection(adminEmailsCollection).Doc(user.Email)
	payload := encodeAdminUserDocument(user)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(emailRef, slugIndexDocument{OwnerID: user.ID, CreatedAt: user.CreatedAt.UTC()}); err != nil {
			return err
		}
		return tx.Create(docRef, payload)
	})
	if err != nil {
		return pfirestore.WrapError("admin_users.insert", err)
	}
	return nil
}

// Update replaces the account document and moves the e-mail claim when it changed.
func (r *AdminUserRepository) Update(ctx context.Context, user domain.AdminUser) error {
	if r == nil || r.base == nil {
		return errors.New("admin user repository not initialised")
	}
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return errors.New("admin user repository: id is required")
	}
	user.Email = normaliseEmail(user.Email)

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(adminUsersCollection).Doc(user.ID)
	payload := encodeAdminUserDocument(user)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		previousEmail, _ := snap.DataAt("email")
		oldEmail, _ := previousEmail.(string)
		if oldEmail != user.Email {
			if oldEmail != "" {
				if err := tx.Delete(client.Collection(adminEmailsCollection).Doc(oldEmail)); err != nil {
					return err
				}
			}
			newEmailRef := client.Collection(adminEmailsCollection).Doc(user.Email)
			if err := tx.Create(newEmailRef, slugIndexDocument{OwnerID: user.ID, CreatedAt: user.UpdatedAt.UTC()}); err != nil {
				return err
			}
		}
		return tx.Set(docRef, payload)
	})
	if err != nil {
		return pfirestore.WrapError("admin_users.update", err)
	}
	return nil
}

// Delete removes the account and releases its e-mail claim.
func (r *AdminUserRepository) Delete(ctx context.Context, userID string) error {
	if r == nil || r.base == nil {
		return errors.New("admin user repository not initialised")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("admin user repository: id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	docRef := client.Collection(adminUsersCollection).Doc(userID)

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		emailValue, _ := snap.DataAt("email")
		if email, _ := emailValue.(string); email != "" {
			if err := tx.Delete(client.Collection(adminEmailsCollection).Doc(email)); err != nil {
				return err
			}
		}
		return tx.Delete(docRef)
	})
	if err != nil {
		return pfirestore.WrapError("admin_users.delete", err)
	}
	return nil
}

// FindByID loads an account by its identifier.
func (r *AdminUserRepository) FindByID(ctx context.Context, userID string) (domain.AdminUser, error) {
	if r == nil || r.base == nil {
		return domain.AdminUser{}, errors.New("admin user repository not initialised")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.AdminUser{}, errors.New("admin user repository: id is required")
	}
	doc, err := r.base.Get(ctx, userID)
	if err != nil {
		return domain.AdminUser{}, err
	}
	return doc.Data, nil
}

// FindByEmail loads an account by its unique e-mail address.
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	if r == nil || r.base == nil {
		return domain.AdminUser{}, errors.New("admin user repository not initialised")
	}
	email = normaliseEmail(email)
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("email", "==", email).Limit(1)
	})
	if err != nil {
		return domain.AdminUser{}, err
	}
	if len(docs) == 0 {
		return domain.AdminUser{}, pfirestore.WrapError("admin_users.find_by_email", status.Error(codes.NotFound, "admin user not found"))
	}
	return docs[0].Data, nil
}

// List returns the filtered page of accounts, newest first.
func (r *AdminUserRepository) List(ctx context.Context, filter repositories.AdminUserFilter) (domain.Page[domain.AdminUser], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.AdminUser]{}, errors.New("admin user repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if len(filter.Role) == 1 {
			q = q.Where("role", "==", string(filter.Role[0]))
		}
		return q
	})
	if err != nil {
		return domain.Page[domain.AdminUser]{}, err
	}

	items := make([]domain.AdminUser, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Data)
	}
	items = filterAdminUsers(items, filter)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	page, total := pageWindow(items, filter.Pagination)
	return domain.Page[domain.AdminUser]{Items: page, Total: total}, nil
}

func encodeAdminUserDocument(user domain.AdminUser) adminUserDocument {
	return adminUserDocument{
		Email:        normaliseEmail(user.Email),
		PasswordHash: user.PasswordHash,
		FirstName:    strings.TrimSpace(user.FirstName),
		LastName:     strings.TrimSpace(user.LastName),
		Role:         string(user.Role),
		Active:       user.Active,
		LastLoginAt:  cloneTime(user.LastLoginAt),
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func decodeAdminUserDocument(doc adminUserDocument) domain.AdminUser {
	return domain.AdminUser{
		ID:           doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		Role:         domain.AdminRole(doc.Role),
		Active:       doc.Active,
		LastLoginAt:  cloneTime(doc.LastLoginAt),
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
}

type adminUserDocument struct {
	ID           string     `firestore:"-"`
	Email        string     `firestore:"email"`
	PasswordHash string     `firestore:"passwordHash"`
	FirstName    string     `firestore:"firstName"`
	LastName     string     `firestore:"lastName"`
	Role         string     `firestore:"role"`
	Active       bool       `firestore:"active"`
	LastLoginAt  *time.Time `firestore:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt"`
	UpdatedAt    time.Time  `firestore:"updatedAt"`
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := value.UTC()
	return &cloned
}

var _ repositories.AdminUserRepository = (*AdminUserRepository)(nil)
