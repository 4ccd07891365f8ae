// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// identityNumberRegex matches normalized identity numbers: digits only,
// as produced by the front-end normalization. The ledger treats them as
// opaque.
var identityNumberRegex = regexp.MustCompile(`^[0-9]{4,20}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("identity_number", validateIdentityNumber)
		_ = v.RegisterValidation("tx_type", validateTxType)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("report_scope", validateReportScope)
		_ = v.RegisterValidation("report_window", validateReportWindow)
	}
}

func validateIdentityNumber(fl validator.FieldLevel) bool {
	return identityNumberRegex.MatchString(fl.Field().String())
}

func validateTxType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "earn", "redeem", "transfer_out", "transfer_in", "adjust":
		return true
	}
	return false
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "consumer", "owner", "staff", "admin":
		return true
	}
	return false
}

func validateReportScope(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "global", "per_cafe", "per_consumer":
		return true
	}
	return false
}

func validateReportWindow(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "day", "week", "month":
		return true
	}
	return false
}
