// Package intakesvc - Tenant Scope Guard.
// Mọi query và write của domain intake phải đi qua các hàm trong file này.
// Không call site nào được tự ghép filter organization/location bằng tay — đây là
// điểm vào duy nhất để không thể quên filter và rò rỉ dữ liệu giữa các tổ chức.
package intakesvc

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
)

// ValidateScope kiểm tra scope có tự nhất quán không, chạy trước mọi query.
// Scope "ALL" mà không có quyền org-wide bị chặn ngay tại đây.
func ValidateScope(scope intakemodels.TenantScope) error {
	if scope.OrganizationID == "" {
		return common.ErrMissingScope
	}
	if _, err := primitive.ObjectIDFromHex(scope.OrganizationID); err != nil {
		return common.ErrScopeViolation
	}
	if scope.IsAllLocations() && !scope.AllLocations {
		return common.ErrScopeViolation
	}
	return nil
}

// ScopedFilter xây filter đọc dữ liệu trong phạm vi của scope.
// Filter organization LUÔN được chèn; filter location được chèn trừ khi
// scope là "ALL" (đã được ValidateScope xác nhận có quyền).
// extra là các điều kiện bổ sung của call site, merge vào cùng filter.
func ScopedFilter(scope intakemodels.TenantScope, extra bson.M) (bson.M, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}

	orgID, err := primitive.ObjectIDFromHex(scope.OrganizationID)
	if err != nil {
		return nil, common.ErrScopeViolation
	}

	filter := bson.M{"organizationId": orgID}
	if !scope.IsAllLocations() {
		filter["locationId"] = scope.LocationID
	}
	for k, v := range extra {
		// Không cho extra ghi đè điều kiện scope
		if k == "organizationId" || k == "locationId" {
			continue
		}
		filter[k] = v
	}
	return filter, nil
}

// EnsureWriteScope kiểm tra một write nhắm vào (org, location) có nằm trong scope không.
// targetLocationID rỗng nghĩa là write không gắn địa điểm (chỉ admin org-wide được phép).
func EnsureWriteScope(scope intakemodels.TenantScope, targetOrgID primitive.ObjectID, targetLocationID string) error {
	if err := ValidateScope(scope); err != nil {
		return err
	}

	orgID, err := primitive.ObjectIDFromHex(scope.OrganizationID)
	if err != nil {
		return common.ErrScopeViolation
	}
	if targetOrgID != orgID {
		return common.ErrScopeViolation
	}

	if scope.IsAllLocations() {
		// Quyền org-wide: mọi địa điểm trong tổ chức đều hợp lệ
		return nil
	}
	if targetLocationID == "" || targetLocationID != scope.LocationID {
		return common.ErrScopeViolation
	}
	return nil
}

// RequireConcreteLocation đảm bảo scope đang trỏ vào một địa điểm cụ thể.
// Lượt phục vụ luôn thuộc về một địa điểm vật lý, kể cả khi caller có quyền
// đọc toàn tổ chức — ghi với scope "ALL" bị chặn bằng MissingScope.
func RequireConcreteLocation(scope intakemodels.TenantScope) error {
	if err := ValidateScope(scope); err != nil {
		return err
	}
	if scope.LocationID == "" || scope.IsAllLocations() {
		return common.ErrMissingScope
	}
	return nil
}

// ScopeOrgID trả về ObjectID của tổ chức trong scope.
// Chỉ gọi sau khi ValidateScope đã chạy.
func ScopeOrgID(scope intakemodels.TenantScope) (primitive.ObjectID, error) {
	orgID, err := primitive.ObjectIDFromHex(scope.OrganizationID)
	if err != nil {
		return primitive.NilObjectID, common.ErrScopeViolation
	}
	return orgID, nil
}
