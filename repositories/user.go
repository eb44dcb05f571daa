package repositories

import (
	"github.com/taskdesk/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(id string) (models.User, error) {
	var user models.User
	result := r.db.First(&user, "id = ?", id)
	return user, result.Error
}

// FindByEmail retrieves a user by email address
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	result := r.db.First(&user, "email = ?", email)
	return user, result.Error
}

// FindByIDs retrieves the users with the given IDs
func (r *UserRepository) FindByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	result := r.db.Where("id IN ?", ids).Find(&users)
	return users, result.Error
}

// FindByRole retrieves every user holding role
func (r *UserRepository) FindByRole(role models.Role) ([]models.User, error) {
	var users []models.User
	result := r.db.Where("role = ?", role).Find(&users)
	return users, result.Error
}

// ExistsByEmail checks whether an account with email exists
func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	result := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	return count > 0, result.Error
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}
