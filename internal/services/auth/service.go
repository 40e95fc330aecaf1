package auth

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shopstack/config"
	"shopstack/internal/api/requestctx"
	"shopstack/internal/database"
	"shopstack/internal/database/models"
	"shopstack/internal/response"
	"shopstack/internal/utils"
)

type Service struct {
	db        *gorm.DB
	cfg       *config.Config
	users     *database.Repository[models.User]
	sessions  *database.Repository[models.LoginSession]
	passwords *database.Repository[models.UserPassword]
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		users:     database.NewRepository[models.User](db),
		sessions:  database.NewRepository[models.LoginSession](db),
		passwords: database.NewRepository[models.UserPassword](db, "User"),
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OS       string `json:"os"`
	Version  string `json:"version"`
	Device   string `json:"device"`
}

type LoginResult struct {
	User               *models.User `json:"user"`
	Token              string       `json:"token"`
	ExpiresAt          time.Time    `json:"expires_at"`
	RequireNewPassword bool         `json:"require_new_password"`
}

// Login verifies the credentials, terminates any session the user still has
// open elsewhere and issues a fresh session with its bearer token.
func (s *Service) Login(input LoginInput) (*LoginResult, *response.ServiceError) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	password, err := s.passwords.FindOneAndPopulate(
		database.NewQuery().Eq("email", email).Eq("status", models.PasswordStatusActive),
		nil,
	)
	if err != nil {
		return nil, response.Internal(err)
	}
	if password == nil || password.User == nil {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidLogin)
	}

	user := password.User
	if svcErr := loginStatusGate(user); svcErr != nil {
		return nil, svcErr
	}

	if bcrypt.CompareHashAndPassword([]byte(password.Password), []byte(input.Password)) != nil {
		return nil, response.NewError(http.StatusBadRequest, response.InvalidLogin)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	session, svcErr := s.openSession(tx, user, input.OS, input.Version, input.Device)
	if svcErr != nil {
		tx.Rollback()
		return nil, svcErr
	}

	token, exp, err := utils.GenerateToken(
		[]byte(s.cfg.Auth.JWTSecret), user.ID, session.ID,
		time.Duration(s.cfg.Auth.SessionHours)*time.Hour,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	return &LoginResult{
		User:               user,
		Token:              token,
		ExpiresAt:          exp,
		RequireNewPassword: user.RequireNewPassword,
	}, nil
}

// openSession deactivates any session still marked on for the user and
// creates the replacement inside the caller's transaction.
func (s *Service) openSession(tx *gorm.DB, user *models.User, os, version, device string) (*models.LoginSession, *response.ServiceError) {
	_, err := s.sessions.UpdateMany(
		database.NewQuery().Eq("user_id", user.ID).Eq("status", models.BitOn),
		map[string]interface{}{"status": models.BitOff, "logged_out": true},
		tx,
	)
	if err != nil {
		return nil, response.Internal(err)
	}

	session := &models.LoginSession{
		UserID:          user.ID,
		Status:          models.BitOn,
		ValidityEndDate: time.Now().Add(time.Duration(s.cfg.Auth.SessionHours) * time.Hour),
		OS:              os,
		Version:         version,
		Device:          device,
	}
	if _, err := s.sessions.Save(session, tx); err != nil {
		return nil, response.Internal(err)
	}
	return session, nil
}

func loginStatusGate(user *models.User) *response.ServiceError {
	switch user.Status {
	case models.UserStatusDeleted, models.UserStatusHidden:
		return response.NewError(http.StatusBadRequest, response.InvalidLogin)
	case models.UserStatusSuspended, models.UserStatusDeactivated:
		return response.NewError(http.StatusForbidden, response.AccountBlocked)
	case models.UserStatusSelfDeactivated:
		return response.NewError(http.StatusForbidden, response.ActivationRequired)
	}
	return nil
}

// Authenticate resolves a bearer token to its user and session, rejecting
// with a distinct cause for expired, invalid and unknown sessions.
func (s *Service) Authenticate(token string) (*requestctx.State, *response.ServiceError) {
	claims, err := utils.ParseToken([]byte(s.cfg.Auth.JWTSecret), token)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, response.NewError(http.StatusUnauthorized, response.SessionExpired)
		}
		return nil, response.NewError(http.StatusUnauthorized, response.InvalidToken)
	}

	session, err := s.sessions.FindByID(claims.SessionID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if session == nil {
		return nil, response.NewError(http.StatusUnauthorized, response.InvalidToken)
	}
	if session.UserID != claims.UserID {
		return nil, response.NewError(http.StatusUnauthorized, response.InvalidSessionUser)
	}
	if session.Status != models.BitOn {
		return nil, response.NewError(http.StatusUnauthorized, response.SessionExpired)
	}
	if time.Now().After(session.ValidityEndDate) {
		_, _ = s.sessions.UpdateByID(session.ID, map[string]interface{}{
			"status":  models.BitOff,
			"expired": true,
		}, nil)
		return nil, response.NewError(http.StatusUnauthorized, response.SessionExpired)
	}

	user, err := s.users.FindByID(session.UserID, nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if user == nil {
		return nil, response.NewError(http.StatusUnauthorized, response.InvalidSessionUser)
	}

	return &requestctx.State{User: user, LoginSession: session}, nil
}

// GateStatus applies the account-status gate that runs after session
// validation. allowRecovery is set on the password-update and logout routes;
// it only waives the new-password requirement and the pending status so a
// user can still rotate their password or sign out. Blocked statuses are
// rejected on every route.
func (s *Service) GateStatus(user *models.User, allowRecovery bool) *response.ServiceError {
	if user.RequireNewPassword && !allowRecovery {
		return response.NewError(http.StatusForbidden, response.PasswordUpdateRequired)
	}
	switch user.Status {
	case models.UserStatusActive:
		return nil
	case models.UserStatusPending:
		if allowRecovery {
			return nil
		}
		return response.NewError(http.StatusForbidden, response.PasswordUpdateRequired)
	case models.UserStatusInReview:
		return response.NewError(http.StatusForbidden, response.AccountInReview)
	case models.UserStatusSelfDeactivated:
		return response.NewError(http.StatusForbidden, response.ActivationRequired)
	case models.UserStatusSuspended, models.UserStatusDeactivated:
		return response.NewError(http.StatusForbidden, response.AccountBlocked)
	}
	return response.NewError(http.StatusForbidden, response.ContactAdmin)
}

// Logout closes the presented session.
func (s *Service) Logout(session *models.LoginSession) *response.ServiceError {
	_, err := s.sessions.UpdateByID(session.ID, map[string]interface{}{
		"status":     models.BitOff,
		"logged_out": true,
	}, nil)
	if err != nil {
		return response.Internal(err)
	}
	return nil
}

type UpdatePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdatePassword rotates the caller's password. The previous password and
// any open session are deactivated and a fresh session is issued, so the
// returned token replaces the one the request came in with.
func (s *Service) UpdatePassword(state *requestctx.State, input UpdatePasswordInput) (*LoginResult, *response.ServiceError) {
	user := state.User

	current, err := s.passwords.FindOne(
		database.NewQuery().Eq("user_id", user.ID).Eq("status", models.PasswordStatusActive),
		nil,
	)
	if err != nil {
		return nil, response.Internal(err)
	}
	if current == nil {
		return nil, response.NewError(http.StatusBadRequest, response.ContactAdmin)
	}
	if bcrypt.CompareHashAndPassword([]byte(current.Password), []byte(input.OldPassword)) != nil {
		return nil, response.NewError(http.StatusBadRequest, response.PasswordMismatch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cfg.Auth.BcryptRounds)
	if err != nil {
		return nil, response.Internal(err)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	_, err = s.passwords.UpdateMany(
		database.NewQuery().Eq("user_id", user.ID).Eq("status", models.PasswordStatusActive),
		map[string]interface{}{"status": models.PasswordStatusDeactivated},
		tx,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	_, err = s.passwords.Save(&models.UserPassword{
		Password: string(hash),
		Email:    user.Email,
		UserID:   user.ID,
		Status:   models.PasswordStatusActive,
	}, tx)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	userUpdate := map[string]interface{}{"require_new_password": false}
	if user.Status == models.UserStatusPending {
		userUpdate["status"] = models.UserStatusActive
	}
	updated, err := s.users.UpdateByID(user.ID, userUpdate, tx)
	if err != nil || updated == nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	session, svcErr := s.openSession(tx, updated, state.LoginSession.OS, state.LoginSession.Version, state.LoginSession.Device)
	if svcErr != nil {
		tx.Rollback()
		return nil, svcErr
	}

	token, exp, err := utils.GenerateToken(
		[]byte(s.cfg.Auth.JWTSecret), updated.ID, session.ID,
		time.Duration(s.cfg.Auth.SessionHours)*time.Hour,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	return &LoginResult{User: updated, Token: token, ExpiresAt: exp}, nil
}

type ResetPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordResult struct {
	TempPassword string `json:"temp_password"`
}

// ResetPassword replaces the account's password with a generated temporary
// one and forces a rotation on next login. Open sessions are closed.
func (s *Service) ResetPassword(input ResetPasswordInput) (*ResetPasswordResult, *response.ServiceError) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.FindOne(database.NewQuery().Eq("email", email), nil)
	if err != nil {
		return nil, response.Internal(err)
	}
	if user == nil {
		return nil, response.NewError(http.StatusBadRequest, response.ResourceNotFound("User"))
	}
	if svcErr := loginStatusGate(user); svcErr != nil {
		return nil, svcErr
	}

	temp, err := utils.RandomCode(10)
	if err != nil {
		return nil, response.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), s.cfg.Auth.BcryptRounds)
	if err != nil {
		return nil, response.Internal(err)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, response.Internal(tx.Error)
	}

	_, err = s.passwords.UpdateMany(
		database.NewQuery().Eq("user_id", user.ID).Eq("status", models.PasswordStatusActive),
		map[string]interface{}{"status": models.PasswordStatusDeactivated},
		tx,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	_, err = s.passwords.Save(&models.UserPassword{
		Password: string(hash),
		Email:    user.Email,
		UserID:   user.ID,
		Status:   models.PasswordStatusActive,
	}, tx)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	_, err = s.users.UpdateByID(user.ID, map[string]interface{}{"require_new_password": true}, tx)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	_, err = s.sessions.UpdateMany(
		database.NewQuery().Eq("user_id", user.ID).Eq("status", models.BitOn),
		map[string]interface{}{"status": models.BitOff, "logged_out": true},
		tx,
	)
	if err != nil {
		tx.Rollback()
		return nil, response.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, response.Internal(err)
	}

	return &ResetPasswordResult{TempPassword: temp}, nil
}
