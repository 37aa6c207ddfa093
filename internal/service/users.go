package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/metrics"
	"afrizone/internal/models"
	"afrizone/internal/store"
)

var (
	errUserNotFound    = apperr.NotFound("Utilisateur non trouvé")
	errProductNotFound = apperr.NotFound("Produit non trouvé")
	errSelfDelete      = apperr.Forbidden("Vous ne pouvez pas supprimer votre propre compte")
)

// AuthResult is returned by login and registration.
type AuthResult struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
	Token     string             `json:"token"`
}

// ProfileView is the projection returned after a profile or admin update.
type ProfileView struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	Address   *models.Address    `json:"address,omitempty"`
	Role      string             `json:"role"`
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ProfilePatch holds a self-service update. Empty fields keep their current
// value; Address is merged field by field.
type ProfilePatch struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Address   *models.Address
}

// UserPatch is an admin update. Empty fields keep their current value.
type UserPatch struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
}

type Users struct {
	users    store.UserStore
	products store.ProductStore
	tokens   TokenIssuer
	hasher   PasswordHasher
	log      *logrus.Entry
	now      Clock
}

func NewUsers(users store.UserStore, products store.ProductStore, tokens TokenIssuer, hasher PasswordHasher, logger logrus.FieldLogger) *Users {
	return &Users{
		users:    users,
		products: products,
		tokens:   tokens,
		hasher:   hasher,
		log:      logging.Area(logger, logging.AreaUser),
		now:      defaultClock,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Users) authResult(user models.User) (AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, apperr.Internal("issue token", err)
	}
	return AuthResult{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		Token:     token,
	}, nil
}

// Login checks the credentials without revealing which one was wrong.
func (s *Users) Login(ctx context.Context, email, password string) (AuthResult, error) {
	log := s.log.WithField("email", normalizeEmail(email))

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		log.Info("login refused: unknown email")
		metrics.RecordAuthFailure(metrics.ReasonBadLogin)
		return AuthResult{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, apperr.Internal("find user by email", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Info("login refused: wrong password")
		metrics.RecordAuthFailure(metrics.ReasonBadLogin)
		return AuthResult{}, apperr.ErrInvalidCredentials
	}

	log.WithField("userId", user.ID.Hex()).Debug("login succeeded")
	return s.authResult(user)
}

func (s *Users) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := normalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return AuthResult{}, apperr.ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, apperr.Internal("find user by email", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, apperr.Internal("hash password", err)
	}

	now := s.now()
	user := models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: digest,
		Role:         models.RoleCustomer,
		Favorites:    []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return AuthResult{}, apperr.ErrDuplicateEmail
		}
		return AuthResult{}, apperr.Internal("create user", err)
	}

	s.log.WithField("userId", user.ID.Hex()).Info("user registered")
	return s.authResult(user)
}

func (s *Users) load(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, errUserNotFound
	}
	if err != nil {
		return models.User{}, apperr.Internal("find user", err)
	}
	return user, nil
}

func (s *Users) save(ctx context.Context, user models.User) error {
	user.UpdatedAt = s.now()
	err := s.users.Update(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicateKey):
		return apperr.ErrDuplicateEmail
	case errors.Is(err, store.ErrNotFound):
		return errUserNotFound
	default:
		return apperr.Internal("update user", err)
	}
}

func (s *Users) Profile(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	return s.load(ctx, userID)
}

func (s *Users) UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch ProfilePatch) (ProfileView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}

	user.FirstName = keep(user.FirstName, patch.FirstName)
	user.LastName = keep(user.LastName, patch.LastName)
	user.Email = keep(user.Email, normalizeEmail(patch.Email))
	user.Phone = keep(user.Phone, patch.Phone)
	if patch.Address != nil {
		user.Address = user.Address.Merge(*patch.Address)
	}
	if patch.Password != "" {
		digest, err := s.hasher.Hash(patch.Password)
		if err != nil {
			return ProfileView{}, apperr.Internal("hash password", err)
		}
		user.PasswordHash = digest
	}

	if err := s.save(ctx, user); err != nil {
		return ProfileView{}, err
	}

	address := user.Address
	return ProfileView{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   &address,
		Role:      user.Role,
	}, nil
}

// Favorites returns the favorite products in the order they were added.
// Products deleted since are skipped.
func (s *Users) Favorites(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	found, err := s.products.FindByIDs(ctx, user.Favorites, false)
	if err != nil {
		return nil, apperr.Internal("find favorite products", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]models.Product, 0, len(found))
	for _, id := range user.Favorites {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// AddFavorite is idempotent: adding a product twice keeps a single entry.
func (s *Users) AddFavorite(ctx context.Context, userID, productID primitive.ObjectID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errProductNotFound
		}
		return apperr.Internal("find product", err)
	}

	if err := s.users.AddFavorite(ctx, userID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errUserNotFound
		}
		return apperr.Internal("add favorite", err)
	}
	return nil
}

// RemoveFavorite succeeds even when the product is not a favorite.
func (s *Users) RemoveFavorite(ctx context.Context, userID, productID primitive.ObjectID) error {
	if err := s.users.RemoveFavorite(ctx, userID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errUserNotFound
		}
		return apperr.Internal("remove favorite", err)
	}
	return nil
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return users, nil
}

func (s *Users) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.load(ctx, id)
}

func (s *Users) Update(ctx context.Context, id primitive.ObjectID, patch UserPatch) (ProfileView, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return ProfileView{}, err
	}
	if patch.Role != "" && !models.ValidRole(patch.Role) {
		return ProfileView{}, apperr.Validation("Rôle invalide", "role must be one of customer admin")
	}

	user.FirstName = keep(user.FirstName, patch.FirstName)
	user.LastName = keep(user.LastName, patch.LastName)
	user.Email = keep(user.Email, normalizeEmail(patch.Email))
	user.Phone = keep(user.Phone, patch.Phone)
	user.Role = keep(user.Role, patch.Role)

	if err := s.save(ctx, user); err != nil {
		return ProfileView{}, err
	}

	s.log.WithFields(logrus.Fields{"userId": id.Hex(), "role": user.Role}).Info("user updated by admin")
	return ProfileView{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
	}, nil
}

// Delete removes the account id. actorID is the admin performing it, who
// cannot remove their own account.
func (s *Users) Delete(ctx context.Context, actorID, id primitive.ObjectID) error {
	if actorID == id {
		return errSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errUserNotFound
		}
		return apperr.Internal("delete user", err)
	}
	s.log.WithField("userId", id.Hex()).Info("user deleted")
	return nil
}

func keep(current, next string) string {
	if strings.TrimSpace(next) == "" {
		return current
	}
	return next
}
