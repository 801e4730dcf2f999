package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/buildium/backend/internal/domain/invoice"
)

// SetupValidator configures the request validator with custom tags.
// Call once at startup before routes are served.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON (or form) tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// invoice_number validates the INV-YYYYMMDD-NNN format
	_ = v.RegisterValidation("invoice_number", func(fl validator.FieldLevel) bool {
		_, _, err := invoice.ParseNumber(fl.Field().String())
		return err == nil
	})
}
