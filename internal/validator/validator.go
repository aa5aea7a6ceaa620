// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("trade_type", validateTradeType)
		_ = v.RegisterValidation("trade_direction", validateTradeDirection)
		_ = v.RegisterValidation("trade_status", validateTradeStatus)
		_ = v.RegisterValidation("user_role", validateUserRole)
	}
}

func validateTradeType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "stock", "forex", "crypto", "options", "futures":
		return true
	}
	return false
}

func validateTradeDirection(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "long", "short":
		return true
	}
	return false
}

func validateTradeStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "open", "closed", "cancelled":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "manager", "trader", "viewer":
		return true
	}
	return false
}
