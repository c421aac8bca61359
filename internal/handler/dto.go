package handler

import (
	"encoding/json"
	"time"

	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/utils"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Amount with exactly two decimal places, e.g. "1234.56".
	_ = v.RegisterValidation("twodecimals", func(fl validator.FieldLevel) bool {
		_, err := utils.ToMinorUnits(fl.Field().String())
		return err == nil
	})

	// MM/yy expiry whose month has not already passed.
	_ = v.RegisterValidation("expirydate", func(fl validator.FieldLevel) bool {
		expiry, err := utils.ParseExpiryDate(fl.Field().String())
		if err != nil {
			return false
		}
		return !utils.ExpiryPassed(expiry, time.Now())
	})

	// 16-digit Luhn-valid card number.
	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return utils.ValidateCardNumber(fl.Field().String()) == nil
	})

	return v
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,alpha"`
	LastName  string `json:"lastName" validate:"required,alpha"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

type userResponse struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      models.Role `json:"role"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

type cardCreateRequest struct {
	UserID     int64       `json:"userId" validate:"required,gt=0"`
	CardNumber string      `json:"cardNumber" validate:"required,cardnumber"`
	ExpiryDate string      `json:"expiryDate" validate:"required,expirydate"`
	Balance    json.Number `json:"balance" validate:"required,twodecimals"`
}

type cardTransferRequest struct {
	FromID int64       `json:"fromId" validate:"required,gt=0"`
	ToID   int64       `json:"toId" validate:"required,gt=0"`
	Amount json.Number `json:"amount" validate:"required,twodecimals"`
}

type cardStatusRequest struct {
	NewStatus string `json:"newStatus" validate:"required,oneof=ACTIVE BLOCKED EXPIRED"`
}
