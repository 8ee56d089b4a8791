package global

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var postalCodeRegex = regexp.MustCompile(`^\d{5}$`)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("postal_code", validatePostalCode)
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("date_ymd", validateDateYMD)
}

// validatePostalCode kiểm tra mã bưu điện: rỗng hoặc đúng 5 chữ số.
// Rỗng hợp lệ vì postal code là optional — bắt buộc hay không do tag required quyết định.
func validatePostalCode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return postalCodeRegex.MatchString(value)
}

// validateNoXSS kiểm tra chuỗi không chứa các pattern script injection phổ biến
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"<iframe",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

var dateYMDRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validateDateYMD kiểm tra chuỗi ngày dạng YYYY-MM-DD (rỗng hợp lệ — field optional)
func validateDateYMD(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateYMDRegex.MatchString(value)
}
