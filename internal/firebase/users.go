package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// userDoc to postać użytkownika w Firestore
type userDoc struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	EmailKey  string    `firestore:"email_key"`
	Role      string    `firestore:"role"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func fromUserDoc(id string, d *userDoc) (*models.User, error) {
	return &models.User{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		Role:      models.UserRole(d.Role),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// CreateUser tworzy użytkownika; podane ID (np. UID z Firebase Auth) jest zachowywane
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleReader
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	var ref *firestore.DocumentRef
	if user.ID == "" {
		ref = s.fs.Collection(usersCollection).NewDoc()
	} else {
		var err error
		if ref, err = s.ref(usersCollection, user.ID); err != nil {
			return fmt.Errorf("nieprawidłowe ID użytkownika %q", user.ID)
		}
	}

	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := txTaken(tx, s.fs.Collection(usersCollection).Where("email_key", "==", key(user.Email)), "")
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}
		return tx.Create(ref, userDoc{
			Name:      user.Name,
			Email:     user.Email,
			EmailKey:  key(user.Email),
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		})
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania użytkownika: %w", err)
	}

	user.ID = ref.ID
	return nil
}

// GetUser pobiera użytkownika po ID
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	ref, err := s.ref(usersCollection, id)
	if err != nil {
		return nil, err
	}
	d, err := getDoc[userDoc](ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromUserDoc(id, d)
}

// GetUserByEmail wyszukuje użytkownika po adresie email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne(ctx, s.fs.Collection(usersCollection).Where("email_key", "==", key(email)), fromUserDoc)
}
