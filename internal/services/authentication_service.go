package services

import (
	"time"

	"github.com/Qarib2004/reddit-sub000/configs"
	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/repositories"
	"github.com/Qarib2004/reddit-sub000/internal/utils"
	"github.com/Qarib2004/reddit-sub000/internal/validators"
)

type AuthenticationService struct {
	authRepo *repositories.AuthenticationRepository
	config   *configs.Config
}

func NewAuthenticationService(
	authRepo *repositories.AuthenticationRepository,
	config *configs.Config,
) *AuthenticationService {
	return &AuthenticationService{
		authRepo: authRepo,
		config:   config,
	}
}

func (as *AuthenticationService) Register(user *models.User) (*models.User, []error) {
	var errors []error
	if as.authRepo.CheckIfUserExists(user.Email) != nil {
		errors = append(errors, errs.ErrUserAlreadyExists)
		return nil, errors
	}
	validationErrs := validators.ValidateUser(user)
	if len(validationErrs) > 0 {
		errors = append(errors, validationErrs...)
		return nil, errors
	}
	password, err := utils.HashPassword(user.Password)
	if err != nil {
		errors = append(errors, err)
		return nil, errors
	}
	user.PasswordHash = password
	return as.authRepo.CreateUser(user)
}

func (as *AuthenticationService) Login(loginData *models.LoginRequestBody) (*models.LoginResponse, []error) {
	var errors []error

	user, loginErrs := as.authRepo.Login(loginData)
	if len(loginErrs) > 0 {
		errors = append(errors, loginErrs...)
		return nil, errors
	}

	expiration := time.Now().Add(time.Duration(as.config.Viper.GetInt("jwt.expiration_time")) * time.Second)
	token, jwtErr := utils.CreateJwtToken(
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		as.JwtKey(),
		expiration,
	)
	if jwtErr != nil {
		errors = append(errors, jwtErr)
		return nil, errors
	}

	return &models.LoginResponse{
		User:  *user,
		Token: token,
	}, nil
}

func (as *AuthenticationService) JwtKey() []byte {
	return []byte(as.config.Viper.GetString("jwt.secret"))
}

func (as *AuthenticationService) VerifyToken(token string) (*models.Claims, error) {
	return utils.VerifyToken(token, as.JwtKey())
}

// UserExists satisfies the resolver capability shared by the websocket and
// REST send paths.
func (as *AuthenticationService) UserExists(userId uint) (bool, error) {
	return as.authRepo.UserExists(userId)
}

func (as *AuthenticationService) SetUserOnlineStatus(userId uint, online bool) (bool, *time.Time, error) {
	return as.authRepo.SetUserOnlineStatus(userId, online)
}

func (as *AuthenticationService) GetAllUsersWithPagination(page, size int) (*models.GetUsersResponse, []error) {
	if page <= 0 || size <= 0 {
		return nil, []error{errs.ErrInvalidPageOrSize}
	}
	return as.authRepo.GetAllUsersWithPagination(page, size)
}
