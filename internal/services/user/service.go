package user

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shopstack/config"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
	"shopstack/internal/response"
)

type Service struct {
	db         *gorm.DB
	cfg        *config.Config
	users      *database.Repository[models.User]
	passwords  *database.Repository[models.UserPassword]
	privileges *database.Repository[models.UserPrivilege]
	sessions   *database.Repository[models.LoginSession]
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:         db,
		cfg:        cfg,
		users:      database.NewRepository[models.User](db),
		passwords:  database.NewRepository[models.UserPassword](db),
		privileges: database.NewRepository[models.UserPrivilege](db, "User"),
		sessions:   database.NewRepository[models.LoginSession](db),
	}
}

type CreateUserInput struct {
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name" binding:"required"`
	MiddleName       string `json:"middle_name"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"required"`
	PhoneCountryCode string `json:"phone_country_code"`
	Gender           string `json:"gender"`
	Role             string `json:"role"`
}

// CreateUser registers a staff account with the shared default password.
// The account stays pending until the owner rotates that password.
func (s *Service) CreateUser(actor *models.User, input CreateUserInput) (*models.User, *response.ServiceError) {
	if input.Role != "" && !models.ValidRole(input.Role) {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidValue("role"))
	}
	if input.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin {
		return nil, response.NewError(http.StatusForbidden, response.InvalidPermission)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.DefaultPassword), s.cfg.Auth.BcryptRounds)
	if err != nil {
		return nil, response.Internal(err)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	newUser := &models.User{
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		MiddleName:         input.MiddleName,
		Email:              email,
		Phone:              input.Phone,
		PhoneCountryCode:   input.PhoneCountryCode,
		Gender:             input.Gender,
		Status:             models.UserStatusPending,
		RequireNewPassword: true,
		IsAdmin:            input.Role == models.RoleAdmin || input.Role == models.RoleSuperAdmin,
		IsSuperAdmin:       input.Role == models.RoleSuperAdmin,
		CreatedBy:          actor.ID,
	}
	if _, err := s.users.Save(newUser, tx); err != nil {
		tx.Rollback()
		return nil, &response.ServiceError{Status: http.StatusBadRequest, Msg: response.UnableToSave, Err: err}
	}

	_, err = s.passwords.Save(&models.UserPassword{
		Password: string(hash),
		Email:    email,
		UserID:   newUser.ID,
		Status:   models.PasswordStatusActive,
	}, tx)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if input.Role != "" {
		_, err = s.privileges.Save(&models.UserPrivilege{
			UserID:    newUser.ID,
			Role:      input.Role,
			Status:    models.ItemStatusActive,
			CreatedBy: actor.ID,
		}, tx)
		if err != nil {
			tx.Rollback()
			return nil, response.Internal(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}
	return newUser, nil
}

type AssignPrivilegeInput struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// AssignPrivilege grants a role to a user. A user holds each role at most
// once; granting an admin role also flips the user's admin flags.
func (s *Service) AssignPrivilege(actor *models.User, input AssignPrivilegeInput) (*models.UserPrivilege, *response.ServiceError) {
	if !models.ValidRole(input.Role) {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidValue("role"))
	}
	if input.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin {
		return nil, response.NewError(http.StatusForbidden, response.InvalidPermission)
	}

	target, err := s.users.FindByID(input.UserID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if target == nil || target.Status == models.UserStatusDeleted {
		return nil, response.NewError(http.StatusBadRequest, response.ResourceNotFound("User"))
	}

	existing, err := s.privileges.FindOne(
		database.NewQuery().
			Eq("user_id", input.UserID).
			Eq("role", input.Role).
			Eq("status", models.ItemStatusActive),
		nil,
	)
	if err != nil {
		return nil, response.Internal(err)
	}
	if existing != nil {
		return nil, response.NewError(http.StatusBadRequest, response.DuplicateUserRole)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	privilege := &models.UserPrivilege{
		UserID:    input.UserID,
		Role:      input.Role,
		Status:    models.ItemStatusActive,
		CreatedBy: actor.ID,
	}
	if _, err := s.privileges.Save(privilege, tx); err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if input.Role == models.RoleAdmin || input.Role == models.RoleSuperAdmin {
		update := map[string]interface{}{"is_admin": true, "updated_by": actor.ID}
		if input.Role == models.RoleSuperAdmin {
			update["is_super_admin"] = true
		}
		if _, err := s.users.UpdateByID(input.UserID, update, tx); err != nil {
			tx.Rollback()
			return nil, response.Internal(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}
	return privilege, nil
}

// RevokePrivilege deactivates a privilege grant.
func (s *Service) RevokePrivilege(actor *models.User, privilegeID string) *response.ServiceError {
	privilege, err := s.privileges.FindByID(privilegeID, nil)
	if err != nil {
		return response.Internal(err)
	}
	if privilege == nil {
		return response.NewError(http.StatusBadRequest, response.ResourceNotFound("Privilege"))
	}
	if privilege.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin {
		return response.NewError(http.StatusForbidden, response.InvalidPermission)
	}

	_, err = s.privileges.UpdateByID(privilegeID, map[string]interface{}{
		"status":     models.ItemStatusDeactivated,
		"updated_by": actor.ID,
	}, nil)
	if err != nil {
		return response.Internal(err)
	}
	return nil
}

// HasRole reports whether the user holds any of the given roles through an
// active privilege grant. Super admins pass every role check.
func (s *Service) HasRole(user *models.User, roles ...string) (bool, *response.ServiceError) {
	if user.IsSuperAdmin {
		return true, nil
	}
	count, err := s.privileges.Count(
		database.NewQuery().
			Eq("user_id", user.ID).
			In("role", roles).
			Eq("status", models.ItemStatusActive),
		nil,
	)
	if err != nil {
		return false, response.Internal(err)
	}
	return count > 0, nil
}

type ListUsersParams struct {
	Size   int    `form:"size"`
	Page   int    `form:"page"`
	Sort   string `form:"sort"`
	Search string `form:"search"`
	Status string `form:"status"`
}

func (s *Service) ListUsers(params ListUsersParams) (*database.Page[models.User], *response.ServiceError) {
	q := database.NewQuery().Sort(params.Sort)
	if params.Status != "" {
		q.Eq("status", params.Status)
	}
	if params.Search != "" {
		q.Search(params.Search, "first_name", "last_name", "email", "phone")
	}

	page, err := s.users.Paginate(q, params.Size, params.Page, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return page, nil
}

func (s *Service) ListPrivileges(userID string) ([]models.UserPrivilege, *response.ServiceError) {
	q := database.NewQuery().Eq("status", models.ItemStatusActive)
	if userID != "" {
		q.Eq("user_id", userID)
	}
	privileges, err := s.privileges.FindAndPopulate(q, 0, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	return privileges, nil
}

// DeleteUser soft-deletes the account and closes any open session.
func (s *Service) DeleteUser(actor *models.User, userID string) *response.ServiceError {
	target, err := s.users.FindByID(userID, nil)
	if err != nil {
		return response.Internal(err)
	}
	if target == nil || target.Status == models.UserStatusDeleted {
		return response.NewError(http.StatusBadRequest, response.ResourceNotFound("User"))
	}
	if target.IsSuperAdmin && !actor.IsSuperAdmin {
		return response.NewError(http.StatusForbidden, response.InvalidPermission)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return response.Internal(tx.Error)
	}

	_, err = s.users.UpdateByID(userID, map[string]interface{}{
		"status":     models.UserStatusDeleted,
		"deleted_by": actor.ID,
	}, tx)
	if err != nil {
		tx.Rollback()
		return response.Internal(err)
	}

	_, err = s.sessions.UpdateMany(
		database.NewQuery().Eq("user_id", userID).Eq("status", models.BitOn),
		map[string]interface{}{"status": models.BitOff, "logged_out": true},
		tx,
	)
	if err != nil {
		tx.Rollback()
		return response.Internal(err)
	}

	_, err = s.passwords.UpdateMany(
		database.NewQuery().Eq("user_id", userID).Eq("status", models.PasswordStatusActive),
		map[string]interface{}{"status": models.PasswordStatusDeactivated},
		tx,
	)
	if err != nil {
		tx.Rollback()
		return response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return response.Internal(err)
	}
	return nil
}
