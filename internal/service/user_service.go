package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/auth"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/repository"
	"github.com/yasinhessnawi1/taskmanager/internal/storage"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// Transactor runs fn inside one database transaction
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// TokenIssuer signs new session tokens
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// dummyPassword is hashed once so logins for unknown emails still pay for one verification
const dummyPassword = "not-a-real-account-credential"

// UserService handles user-related operations
type UserService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	taskRepo  repository.TaskRepository
	tx        Transactor
	hasher    *auth.PasswordHasher
	issuer    TokenIssuer
	blobs     storage.BlobStorage
	notifier  EmailNotifier

	dummyOnce sync.Once
	dummyHash string
	dummySalt string
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	taskRepo repository.TaskRepository,
	tx Transactor,
	hasher *auth.PasswordHasher,
	issuer TokenIssuer,
	blobs storage.BlobStorage,
	notifier EmailNotifier,
) *UserService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		taskRepo:  taskRepo,
		tx:        tx,
		hasher:    hasher,
		issuer:    issuer,
		blobs:     blobs,
		notifier:  notifier,
	}
}

// Register validates a signup, hashes the password and stores the new user.
//
// Parameters:
//   - ctx: Request context
//   - signup: The signup payload, trimmed in place before validation
//
// Returns:
//   - The stored user
//   - A validation error for bad input or an email that is already in use
func (s *UserService) Register(ctx context.Context, signup *models.UserSignup) (*models.User, error) {
	signup.Normalize()
	if err := utils.ValidateStruct(signup); err != nil {
		return nil, err
	}

	hash, salt, err := s.hasher.HashPassword(signup.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(signup.Name, signup.Email, signup.Age)
	user.PasswordHash = hash
	user.Salt = salt

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SignUp registers a user, issues the first session token and sends the
// welcome email in the background.
func (s *UserService) SignUp(ctx context.Context, signup *models.UserSignup) (*models.AuthResponse, error) {
	user, err := s.Register(ctx, signup)
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	email, name := user.Email, user.Name
	notifyAsync("welcome", func(ctx context.Context) error {
		return s.notifier.SendWelcome(ctx, email, name)
	})

	utils.LogAuth("signup", user.ID, user.Email, true, "")

	return &models.AuthResponse{User: user, Token: token}, nil
}

// FindByCredentials returns the user matching email and password.
// An unknown email and a wrong password fail with the same AuthError, and
// both run one password verification.
func (s *UserService) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.verifyDummy(password)
			return nil, utils.NewAuthError()
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyPassword(password, user.PasswordHash, user.Salt)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	if !ok {
		return nil, utils.NewAuthError()
	}

	return user, nil
}

func (s *UserService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, salt, err := s.hasher.HashPassword(dummyPassword)
		if err != nil {
			log.Error().Err(err).Msg("Failed to prepare dummy password hash")
			return
		}
		s.dummyHash, s.dummySalt = hash, salt
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.VerifyPassword(password, s.dummyHash, s.dummySalt)
	}
}

// IssueToken signs a token for userID and appends it to the user's token set
func (s *UserService) IssueToken(ctx context.Context, userID string) (string, error) {
	token, _, err := s.issuer.Issue(userID)
	if err != nil {
		return "", utils.NewInternalServerError(err)
	}

	if err := s.tokenRepo.Add(ctx, models.NewUserToken(userID, token)); err != nil {
		return "", err
	}

	return token, nil
}

// Login checks the credentials and issues a new token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	req.Normalize()

	user, err := s.FindByCredentials(ctx, req.Email, req.Password)
	if err != nil {
		utils.LogAuth("login", "", req.Email, false, err.Error())
		return nil, err
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	utils.LogAuth("login", user.ID, user.Email, true, "")

	return &models.AuthResponse{User: user, Token: token}, nil
}

// Logout revokes the token the principal authenticated with
func (s *UserService) Logout(ctx context.Context, principal *auth.Principal) error {
	if err := s.tokenRepo.Delete(ctx, principal.UserID(), principal.Token); err != nil {
		return err
	}
	utils.LogAuth("logout", principal.UserID(), principal.User.Email, true, "")
	return nil
}

// LogoutAll revokes every token of the principal's user
func (s *UserService) LogoutAll(ctx context.Context, principal *auth.Principal) error {
	count, err := s.tokenRepo.DeleteAllForUser(ctx, principal.UserID())
	if err != nil {
		return err
	}
	log.Info().
		Str(constants.LogFieldUserID, principal.UserID()).
		Int64("revoked", count).
		Msg("All sessions revoked")
	return nil
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// GetByID returns one user. A malformed or unknown id is NotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies a partial update to the profile of userID.
//
// Only name, email, password and age may be updated. Any other key rejects
// the whole update before anything is read. The provided values pass the
// same rules as at signup, and a new password is hashed again.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, updates map[string]json.RawMessage) (*models.User, error) {
	if bad := utils.DisallowedKeys(updates, constants.UserUpdateFields); len(bad) > 0 {
		return nil, utils.NewValidationError("updates", constants.MsgInvalidUpdates)
	}

	update, err := decodeUserUpdate(updates)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Age != nil {
		user.Age = *update.Age
	}
	if update.Password != nil {
		hash, salt, err := s.hasher.HashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
		user.Salt = salt
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// decodeUserUpdate decodes and validates the raw values of a profile update
func decodeUserUpdate(updates map[string]json.RawMessage) (*models.UserUpdate, error) {
	update := &models.UserUpdate{}

	if raw, ok := updates["name"]; ok {
		name, err := decodeString("name", raw)
		if err != nil {
			return nil, err
		}
		if err := utils.ValidateVar("name", name, "required,notblank"); err != nil {
			return nil, err
		}
		update.Name = &name
	}

	if raw, ok := updates["email"]; ok {
		email, err := decodeString("email", raw)
		if err != nil {
			return nil, err
		}
		if err := utils.ValidateVar("email", email, "required,email"); err != nil {
			return nil, err
		}
		update.Email = &email
	}

	if raw, ok := updates["password"]; ok {
		password, err := decodeString("password", raw)
		if err != nil {
			return nil, err
		}
		if err := utils.ValidatePassword(password); err != nil {
			return nil, err
		}
		update.Password = &password
	}

	if raw, ok := updates["age"]; ok {
		var age int
		if err := json.Unmarshal(raw, &age); err != nil {
			return nil, utils.NewValidationError("age", "Must be a number")
		}
		if err := utils.ValidateVar("age", age, "min=0"); err != nil {
			return nil, err
		}
		update.Age = &age
	}

	return update, nil
}

// decodeString decodes a JSON string value and trims it
func decodeString(field string, raw json.RawMessage) (string, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", utils.NewValidationError(field, "Must be a string")
	}
	return strings.TrimSpace(value), nil
}

// DeleteAccount removes the principal's user together with all of its tasks
// and tokens in one transaction, then removes the avatar blob and sends the
// cancellation email in the background.
//
// Returns:
//   - The deleted user
//   - An error if any step of the transaction failed, in which case nothing was removed
func (s *UserService) DeleteAccount(ctx context.Context, principal *auth.Principal) (*models.User, error) {
	user := principal.User
	var removedTasks, removedTokens int64

	err := s.tx.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		if removedTasks, err = s.taskRepo.DeleteAllByOwnerTx(ctx, tx, user.ID); err != nil {
			return err
		}
		if removedTokens, err = s.tokenRepo.DeleteAllForUserTx(ctx, tx, user.ID); err != nil {
			return err
		}
		return s.userRepo.DeleteTx(ctx, tx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	if user.HasAvatar() {
		if err := s.blobs.Delete(ctx, *user.Avatar); err != nil {
			log.Warn().Err(err).Str(constants.LogFieldUserID, user.ID).Msg("Failed to delete avatar of removed account")
		}
	}

	log.Info().
		Str("category", constants.LogCategoryUser).
		Str(constants.LogFieldUserID, user.ID).
		Int64("tasks", removedTasks).
		Int64("tokens", removedTokens).
		Msg("Account deleted")

	email, name := user.Email, user.Name
	notifyAsync("cancellation", func(ctx context.Context) error {
		return s.notifier.SendCancellation(ctx, email, name)
	})

	return user, nil
}

// UploadAvatar stores a new avatar for userID and replaces the old one.
//
// Parameters:
//   - ctx: Request context
//   - userID: The owner of the avatar
//   - filename: The client file name, used for the extension
//   - size: The size in bytes as declared by the upload
//   - data: The image content
//
// Returns:
//   - A 400 AppError if the file breaks the avatar policy
//   - An error matching ErrStorageUnavailable if the backend failed
func (s *UserService) UploadAvatar(ctx context.Context, userID, filename string, size int64, data io.Reader) error {
	if err := storage.AvatarPolicy.Check(filename, size); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	locator, err := s.blobs.Store(ctx, data, filename, storage.AvatarName(user.ID))
	if err != nil {
		return newStorageError(err)
	}

	if err := s.userRepo.UpdateAvatar(ctx, user.ID, &locator); err != nil {
		return err
	}

	if user.HasAvatar() && *user.Avatar != locator {
		if err := s.blobs.Delete(ctx, *user.Avatar); err != nil {
			log.Warn().Err(err).Str("locator", *user.Avatar).Msg("Failed to delete previous avatar")
		}
	}

	log.Info().
		Str("category", constants.LogCategoryStorage).
		Str(constants.LogFieldUserID, user.ID).
		Str("locator", locator).
		Msg("Avatar uploaded")

	return nil
}

// DeleteAvatar removes the avatar of userID
func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasAvatar() {
		return newNoAvatarError()
	}

	if err := s.blobs.Delete(ctx, *user.Avatar); err != nil {
		return newStorageError(err)
	}

	return s.userRepo.UpdateAvatar(ctx, user.ID, nil)
}

// OpenAvatar returns the avatar content of userID and its content type.
// The caller closes the reader.
func (s *UserService) OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.HasAvatar() {
		return nil, "", newNoAvatarError()
	}

	rc, err := s.blobs.Open(ctx, *user.Avatar)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, "", newNoAvatarError()
		}
		return nil, "", newStorageError(err)
	}

	return rc, storage.ContentTypeFor(*user.Avatar), nil
}
