package crud

import (
	"fmt"

	"gorm.io/gorm"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db         *gorm.DB
	User       *UserService
	Post       *PostService
	Follow     *FollowService
	Reaction   *ReactionService
	Message    *MessageService
	Visibility *VisibilityService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it
// creates. Configs run in order, so services that depend on another one
// (visibility on follow, post on visibility, ...) must come after it.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithFollow wraps the constructor of FollowService, NewFollowService.
func WithFollow() ServicesConfig {
	return func(s *Services) error {
		s.Follow = NewFollowService(s.db)
		return nil
	}
}

// WithVisibility wraps the constructor of VisibilityService. It requires
// the follow service to be configured first.
func WithVisibility() ServicesConfig {
	return func(s *Services) error {
		if s.Follow == nil {
			return fmt.Errorf("visibility service requires the follow service")
		}
		s.Visibility = NewVisibilityService(s.db, s.Follow)
		return nil
	}
}

// WithUser wraps the constructor of UserService, NewUserService. It
// requires the follow service to be configured first.
func WithUser(pepper string) ServicesConfig {
	return func(s *Services) error {
		if s.Follow == nil {
			return fmt.Errorf("user service requires the follow service")
		}
		s.User = NewUserService(s.db, s.Follow, pepper)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService. It
// requires the visibility service to be configured first.
func WithPost() ServicesConfig {
	return func(s *Services) error {
		if s.Visibility == nil {
			return fmt.Errorf("post service requires the visibility service")
		}
		s.Post = NewPostService(s.db, s.Visibility)
		return nil
	}
}

// WithReaction wraps the constructor of ReactionService, NewReactionService.
// It requires the visibility service to be configured first.
func WithReaction() ServicesConfig {
	return func(s *Services) error {
		if s.Visibility == nil {
			return fmt.Errorf("reaction service requires the visibility service")
		}
		s.Reaction = NewReactionService(s.db, s.Visibility)
		return nil
	}
}

// WithMessage wraps the constructor of MessageService, NewMessageService.
// It requires the visibility service to be configured first.
func WithMessage() ServicesConfig {
	return func(s *Services) error {
		if s.Visibility == nil {
			return fmt.Errorf("message service requires the visibility service")
		}
		s.Message = NewMessageService(s.db, s.Visibility)
		return nil
	}
}
