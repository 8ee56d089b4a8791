package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest         = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized       = 401 // Chưa xác thực
	StatusForbidden          = 403 // Không có quyền truy cập
	StatusNotFound           = 404 // Không tìm thấy tài nguyên
	StatusConflict           = 409 // Xung đột dữ liệu
	StatusPreconditionFailed = 412 // Điều kiện tiên quyết không thỏa mãn
	StatusTooManyRequests    = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	MsgBadRequest      = "Yêu cầu không hợp lệ"
	MsgUnauthorized    = "Vui lòng đăng nhập"
	MsgForbidden       = "Không có quyền truy cập"
	MsgNotFound        = "Không tìm thấy tài nguyên"
	MsgConflict        = "Xung đột dữ liệu"
	MsgInternalError   = "Lỗi hệ thống"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"

	MsgTokenMissing = "Thiếu token xác thực"
	MsgTokenInvalid = "Token không hợp lệ"
	MsgTokenExpired = "Token đã hết hạn"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: SCOPE_001)
	Category    string // Phân loại lỗi (ví dụ: Scope)
	SubCategory string // Phân loại con (ví dụ: Location)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthToken = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Token",
		Description: "Lỗi liên quan đến token",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	ErrCodeDatabaseTransaction = ErrorCode{
		Code:        "DB_003",
		Category:    "Database",
		SubCategory: "Transaction",
		Description: "Lỗi giao dịch đa tài liệu",
	}

	// Scope Errors (SCOPE_xxx) — phạm vi tổ chức/địa điểm của caller
	ErrCodeScopeViolation = ErrorCode{
		Code:        "SCOPE_001",
		Category:    "Scope",
		SubCategory: "Violation",
		Description: "Thao tác ngoài phạm vi tổ chức/địa điểm được phép",
	}

	ErrCodeScopeMissing = ErrorCode{
		Code:        "SCOPE_002",
		Category:    "Scope",
		SubCategory: "Missing",
		Description: "Thiếu thông tin phạm vi (địa điểm cụ thể) trong context",
	}

	// Intake Errors (INTAKE_xxx) — nghiệp vụ tiếp nhận/ghi lượt phục vụ
	ErrCodeIntakeClient = ErrorCode{
		Code:        "INTAKE_001",
		Category:    "Intake",
		SubCategory: "Client",
		Description: "Lỗi trạng thái hồ sơ khách hàng",
	}

	ErrCodeIntakeVisit = ErrorCode{
		Code:        "INTAKE_002",
		Category:    "Intake",
		SubCategory: "Visit",
		Description: "Lỗi ghi nhận lượt phục vụ",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi (human-readable, trả thẳng cho người dùng)
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Authentication Errors
	ErrTokenExpired = NewError(ErrCodeAuthToken, "Phiên đăng nhập đã hết hạn", StatusUnauthorized, nil)
	ErrTokenInvalid = NewError(ErrCodeAuthToken, "Token không hợp lệ", StatusUnauthorized, nil)
	ErrTokenMissing = NewError(ErrCodeAuthToken, "Thiếu token xác thực", StatusUnauthorized, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound    = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate   = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection  = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)
	ErrTransaction = NewError(ErrCodeDatabaseTransaction, "Lỗi giao dịch cơ sở dữ liệu", StatusInternalServerError, nil)

	// Scope Errors — luôn bị chặn trước khi chạm vào store
	ErrScopeViolation = NewError(ErrCodeScopeViolation, "Bạn không có quyền thao tác trên tổ chức hoặc địa điểm này", StatusForbidden, nil)
	ErrMissingScope   = NewError(ErrCodeScopeMissing, "Vui lòng chọn một địa điểm cụ thể trước khi ghi lượt phục vụ", StatusBadRequest, nil)
	ErrCrossTenant    = NewError(ErrCodeScopeViolation, "Hồ sơ khách hàng thuộc về tổ chức khác", StatusForbidden, nil)

	// Intake Errors
	ErrClientNotFound = NewError(ErrCodeIntakeClient, "Không tìm thấy hồ sơ khách hàng", StatusNotFound, nil)
	ErrClientInactive = NewError(ErrCodeIntakeClient, "Hồ sơ khách hàng đã bị vô hiệu hóa, vui lòng kích hoạt lại trước", StatusConflict, nil)
	ErrContention     = NewError(ErrCodeIntakeVisit, "Hệ thống đang bận ghi nhận lượt phục vụ cho khách hàng này, vui lòng thử lại", StatusConflict, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert ErrNotFound (đã là lỗi hệ thống)
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var sysErr *Error
	if errors.As(err, &sysErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if mongo.IsNetworkError(err) {
		return ErrConnection
	}
	if mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "Kết nối MongoDB bị timeout", StatusServiceUnavailable, err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult") {
			return NewError(ErrCodeDatabaseTransaction, "Giao dịch bị xung đột với một writer khác", StatusConflict, err)
		}
		return NewError(ErrCodeDatabaseQuery, "Lỗi truy vấn MongoDB", StatusInternalServerError, err)
	}

	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}

// IsTransientTxError kiểm tra lỗi transaction có thể retry được không
// (conflict tạm thời giữa các writer trên cùng document).
func IsTransientTxError(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	var labelErr mongo.ServerError
	if errors.As(err, &labelErr) {
		return labelErr.HasErrorLabel("TransientTransactionError") || labelErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
