package aggregator

import (
	"context"
	"strings"

	"github.com/rpupo63/blogroll/database"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// ProfileUpdate carries the profile fields a user may refresh. Empty fields
// keep their current value.
type ProfileUpdate struct {
	AvatarURL string
	Github    string
	Twitter   string
}

// Login checks a returning user's credentials against the local account.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errs.NewMissingRequiredFieldError("email")
	}
	if password == "" {
		return nil, errs.NewMissingRequiredFieldError("password")
	}

	user, err := s.db.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewUnknownAccountError(email)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.NewAuthFailedError(err)
	}
	if !user.IsActive {
		return nil, errs.NewAccountDisabledError()
	}

	s.logger.Info().Int64("userId", user.ID).Msg("User logged in")
	return user, nil
}

// Register creates a local account for someone the identity service knows.
// An email that already has an account is refused before the identity
// service is contacted.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errs.NewMissingRequiredFieldError("email")
	}
	if password == "" {
		return nil, errs.NewMissingRequiredFieldError("password")
	}

	exists, err := s.db.UserRepo().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if exists {
		return nil, errs.NewAlreadyRegisteredError(email)
	}

	identity, err := s.identity.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("hash password", err)
	}

	now := s.now()
	user := &models.User{
		ID:           identity.HSID,
		Username:     identity.FirstName + identity.LastName,
		Email:        email,
		FirstName:    identity.FirstName,
		LastName:     identity.LastName,
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   now,
	}
	profile := &models.Profile{
		UserID:    identity.HSID,
		AvatarURL: identity.Image,
		Github:    identity.Github,
		Twitter:   identity.Twitter,
		Identity:  datatypes.JSON(identity.Raw),
		UpdatedAt: now,
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.UserRepo().Add(ctx, user); err != nil {
			return err
		}
		return tx.ProfileRepo().Add(ctx, profile)
	})
	if errs.IsDuplicateKey(err) {
		return nil, errs.NewAlreadyRegisteredError(email)
	}
	if err != nil {
		return nil, errs.NewDatabaseError("create", "user", err)
	}

	s.logger.Info().Int64("userId", user.ID).Str("username", user.Username).Msg("Account created")
	return user, nil
}

// User loads the account behind a session. It returns a not-found error for
// ids that no longer exist.
func (s *Service) User(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.db.UserRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFoundError("user")
	}
	return user, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (models.ProfileView, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return models.ProfileView{}, err
	}

	view := models.ProfileView{User: *user}

	profile, err := s.db.ProfileRepo().FindByUserID(ctx, userID)
	if err != nil {
		return models.ProfileView{}, errs.NewDatabaseError("find", "profile", err)
	}
	if profile != nil {
		view.Profile = *profile
	} else {
		view.Profile = models.Profile{UserID: userID}
	}

	blogs, err := s.db.BlogRepo().FindByUser(ctx, userID)
	if err != nil {
		return models.ProfileView{}, errs.NewDatabaseError("list", "blogs", err)
	}
	view.Blogs = blogs

	return view, nil
}

// UpdateProfile refreshes the avatar and social handles of userID. Only the
// owner may do this.
func (s *Service) UpdateProfile(ctx context.Context, actorID, userID int64, update ProfileUpdate) (models.ProfileView, error) {
	if actorID != userID {
		return models.ProfileView{}, errs.NewForbiddenError("You can only edit your own profile.")
	}
	if _, err := s.User(ctx, userID); err != nil {
		return models.ProfileView{}, err
	}

	profile, err := s.db.ProfileRepo().FindByUserID(ctx, userID)
	if err != nil {
		return models.ProfileView{}, errs.NewDatabaseError("find", "profile", err)
	}
	isNew := profile == nil
	if isNew {
		profile = &models.Profile{UserID: userID}
	}

	if v := strings.TrimSpace(update.AvatarURL); v != "" {
		profile.AvatarURL = v
	}
	if v := strings.TrimSpace(update.Github); v != "" {
		profile.Github = v
	}
	if v := strings.TrimSpace(update.Twitter); v != "" {
		profile.Twitter = v
	}
	profile.UpdatedAt = s.now()

	if isNew {
		err = s.db.ProfileRepo().Add(ctx, profile)
	} else {
		err = s.db.ProfileRepo().UpdateLinks(ctx, profile)
	}
	if err != nil {
		return models.ProfileView{}, errs.NewDatabaseError("update", "profile", err)
	}

	s.logger.Info().Int64("userId", userID).Msg("Profile updated")
	return s.Profile(ctx, userID)
}
