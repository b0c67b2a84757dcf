package repository

import (
	"errors"
	"regexp"
	"tsubame/internal/apperror"
	"tsubame/internal/models"

	"gorm.io/gorm"
)

// nameFormat is the canonical username rule: alphanumeric plus underscore.
var nameFormat = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create registers a new user. The password must already be hashed.
func (r *UserRepository) Create(name, email, passwordHash string) (*models.User, error) {
	if name == "" || email == "" || passwordHash == "" {
		return nil, apperror.Validation("", "name, email and password are required")
	}
	if !nameFormat.MatchString(name) {
		return nil, apperror.Validation("name", "name may only contain letters, numbers and underscores")
	}

	var existing models.User
	if err := r.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperror.Validation("email", "this email is already registered")
	}
	if err := r.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, apperror.Validation("name", "this name is already taken")
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: passwordHash,
	}
	if err := r.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration on the same name or email.
			return nil, apperror.Validation("", "name or email is already registered")
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", 0)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByName(name string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", 0)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes name and/or email. Empty values are left untouched.
// Values already held by another user are rejected.
func (r *UserRepository) UpdateProfile(id uint, name, email string) (*models.User, error) {
	user, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" && name != user.Name {
		if !nameFormat.MatchString(name) {
			return nil, apperror.Validation("name", "name may only contain letters, numbers and underscores")
		}
		var existing models.User
		if err := r.db.Where("name = ? AND id != ?", name, id).First(&existing).Error; err == nil {
			return nil, apperror.Validation("name", "this name is already taken")
		}
		updates["name"] = name
	}
	if email != "" && email != user.Email {
		var existing models.User
		if err := r.db.Where("email = ? AND id != ?", email, id).First(&existing).Error; err == nil {
			return nil, apperror.Validation("email", "this email is already registered")
		}
		updates["email"] = email
	}

	if len(updates) == 0 {
		return user, nil
	}
	if err := r.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Validation("", "name or email is already registered")
		}
		return nil, err
	}
	return user, nil
}

// UpdatePassword replaces the stored hash. Verifying the current password
// is the caller's responsibility.
func (r *UserRepository) UpdatePassword(id uint, passwordHash string) error {
	user, err := r.FindByID(id)
	if err != nil {
		return err
	}
	return r.db.Model(user).Update("password", passwordHash).Error
}
