package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// UserService manages Users. It also contains the part of the auth system
// that handles password hashing and credential checks; http/auth.go
// dealing with requests, tokens and middleware is the "frontend" to it.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
	fs domain.FollowService
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, fs domain.FollowService, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
				fs: fs,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted email address and password for existence
// and correctness. A wrong email and a wrong password produce the same
// error, so the response doesn't reveal which accounts exist.
func (uv *userValidator) Authenticate(email, password string) (*domain.User, error) {
	found, err := uv.userGorm.byEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Invalid email or password.")
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Invalid email or password.")
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameIsAvail,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

func (uv *userValidator) usernameNormalize(user *domain.User) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	return nil
}

func (uv *userValidator) usernameRequired(user *domain.User) error {
	if user.Username == "" {
		return errs.Errorf(errs.EINVALID, "Username is required.")
	}
	return nil
}

func (uv *userValidator) usernameIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.byUsername(user.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != user.ID {
		return errs.Errorf(errs.ECONFLICT, "That username is already taken.")
	}
	return nil
}

func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return nil
}

func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "Email address is required.")
	}
	return nil
}

func (uv *userValidator) emailFormat(user *domain.User) error {
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "Email address is not valid.")
	}
	return nil
}

func (uv *userValidator) emailIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.byEmail(user.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != user.ID {
		return errs.Errorf(errs.ECONFLICT, "That email address is already taken.")
	}
	return nil
}

func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "Password is required.")
	}
	return nil
}

func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "Password must be at least 8 characters long.")
	}
	return nil
}

// passwordBcrypt hashes the plaintext password with the pepper appended
// and clears the plaintext afterwards.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password+uv.pepper), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	user.Password = ""
	return nil
}

func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "Password hash is required.")
	}
	return nil
}

// ByID retrieves a single User by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByIDWithFollowInfo retrieves a single User by ID and sets the
// FollowsYou / Following flags relative to the viewer. Both follow
// lookups run concurrently.
func (ug *userGorm) ByIDWithFollowInfo(ctx context.Context, viewerID, id int) (*domain.User, error) {
	user, err := ug.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID == id {
		return user, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user.FollowsYou, err = ug.fs.IsFollowing(gctx, id, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		user.Following, err = ug.fs.IsFollowing(gctx, viewerID, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return user, nil
}

// SearchByUsername returns a cursor page of users whose username contains
// the search term, most recently registered first.
func (ug *userGorm) SearchByUsername(ctx context.Context, viewerID int, term string, page domain.CursorPage) ([]domain.User, error) {
	q := ug.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username LIKE ?", "%"+strings.ToLower(strings.TrimSpace(term))+"%")

	users, err := findPage[domain.User](q, "users", page)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == viewerID {
			continue
		}
		u := &users[i]
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			u.FollowsYou, err = ug.fs.IsFollowing(gctx, u.ID, viewerID)
			return err
		})
		g.Go(func() error {
			var err error
			u.Following, err = ug.fs.IsFollowing(gctx, viewerID, u.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Create(user).Error
}

// UpdatePrivacy flips the account's privacy flag.
func (ug *userGorm) UpdatePrivacy(ctx context.Context, id int, isPrivate bool) error {
	res := ug.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_private", isPrivate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return nil
}

// Delete soft-deletes a user record.
func (ug *userGorm) Delete(ctx context.Context, id int) error {
	res := ug.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return nil
}

func (ug *userGorm) byEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := ug.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ug *userGorm) byUsername(username string) (*domain.User, error) {
	var user domain.User
	if err := ug.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
