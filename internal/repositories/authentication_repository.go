package repositories

import (
	"time"

	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/utils"

	"gorm.io/gorm"
)

type AuthenticationRepository struct {
	db *gorm.DB
}

func NewAuthenticationRepository(db *gorm.DB) *AuthenticationRepository {
	return &AuthenticationRepository{
		db: db,
	}
}

func (ar *AuthenticationRepository) CreateUser(user *models.User) (*models.User, []error) {
	var errors []error
	result := ar.db.Create(user)
	if result.Error != nil {
		errors = append(errors, result.Error)
		return nil, errors
	}
	if result.RowsAffected == 0 {
		errors = append(errors, errs.ErrUserNotFound)
		return nil, errors
	}
	return user, nil
}

func (ar *AuthenticationRepository) CheckIfUserExists(email string) *models.User {
	var user models.User
	result := ar.db.Where("email = ?", email).First(&user)
	if result.Error == nil && result.RowsAffected > 0 {
		return &user
	}
	return nil
}

// UserExists reports whether a user id resolves to an account. Both the
// websocket send path and the REST send path go through this one lookup.
func (ar *AuthenticationRepository) UserExists(userId uint) (bool, error) {
	var count int64
	if err := ar.db.Model(&models.User{}).Where("id = ?", userId).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *AuthenticationRepository) Login(login *models.LoginRequestBody) (*models.User, []error) {
	var errors []error
	user := ar.CheckIfUserExists(login.Email)
	if user == nil {
		errors = append(errors, errs.ErrUserNotFound)
		return nil, errors
	}
	if err := utils.CompareHashAndPassword(user.PasswordHash, login.Password); err != nil {
		errors = append(errors, errs.ErrWrongPassword)
		return nil, errors
	}
	return user, nil
}

// SetUserOnlineStatus records the online flag and, when going offline, the
// last-seen timestamp. Returns the stored values.
func (ar *AuthenticationRepository) SetUserOnlineStatus(userId uint, online bool) (bool, *time.Time, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"is_online": online,
		"last_seen": now,
	}
	if err := ar.db.Model(&models.User{}).Where("id = ?", userId).Updates(updates).Error; err != nil {
		return false, nil, err
	}
	return online, &now, nil
}

func (ar *AuthenticationRepository) GetAllUsersWithPagination(page, size int) (*models.GetUsersResponse, []error) {
	var errors []error
	var users []models.User
	var total int64

	transactionErr := ar.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Scopes(utils.Paginate(page, size)).
			Order("id ASC").
			Find(&users).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}
		return nil
	})
	if transactionErr != nil {
		errors = append(errors, transactionErr)
		return nil, errors
	}

	userResponses := make([]*models.UserResponse, 0, len(users))
	for i := range users {
		userResponses = append(userResponses, users[i].ToUserResponse())
	}

	return &models.GetUsersResponse{
		Users: userResponses,
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}
