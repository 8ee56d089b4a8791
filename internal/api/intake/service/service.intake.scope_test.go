// Package intakesvc - Test Tenant Scope Guard: filter luôn chứa organization,
// scope "ALL" phải có quyền org-wide, extra không ghi đè được điều kiện scope.
package intakesvc

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
)

func testScope(locationID string, allLocations bool) intakemodels.TenantScope {
	return intakemodels.TenantScope{
		OrganizationID: "64f1b2c3d4e5f6a7b8c9d0e1",
		LocationID:     locationID,
		UserID:         "user-1",
		Role:           "volunteer",
		AllLocations:   allLocations,
	}
}

func TestValidateScope(t *testing.T) {
	if err := ValidateScope(testScope("loc-1", false)); err != nil {
		t.Errorf("scope hợp lệ bị từ chối: %v", err)
	}

	if err := ValidateScope(intakemodels.TenantScope{}); !errors.Is(err, common.ErrMissingScope) {
		t.Errorf("scope thiếu organization phải trả ErrMissingScope, được: %v", err)
	}

	bad := testScope("loc-1", false)
	bad.OrganizationID = "not-a-hex-id"
	if err := ValidateScope(bad); !errors.Is(err, common.ErrScopeViolation) {
		t.Errorf("organizationId không phải hex phải trả ErrScopeViolation, được: %v", err)
	}
}

func TestValidateScope_AllWithoutPrivilege(t *testing.T) {
	// Chọn "ALL" nhưng không có quyền org-wide
	err := ValidateScope(testScope(intakemodels.ScopeAllLocations, false))
	if !errors.Is(err, common.ErrScopeViolation) {
		t.Errorf("scope ALL không có quyền phải trả ErrScopeViolation, được: %v", err)
	}

	// Có quyền org-wide thì hợp lệ
	if err := ValidateScope(testScope(intakemodels.ScopeAllLocations, true)); err != nil {
		t.Errorf("scope ALL có quyền bị từ chối: %v", err)
	}
}

func TestScopedFilter_AlwaysInjectsOrganization(t *testing.T) {
	scope := testScope("loc-1", false)
	filter, err := ScopedFilter(scope, nil)
	if err != nil {
		t.Fatalf("ScopedFilter lỗi: %v", err)
	}

	orgID, ok := filter["organizationId"].(primitive.ObjectID)
	if !ok {
		t.Fatalf("filter thiếu organizationId dạng ObjectID: %v", filter)
	}
	if orgID.Hex() != scope.OrganizationID {
		t.Errorf("organizationId = %s, muốn %s", orgID.Hex(), scope.OrganizationID)
	}
	if filter["locationId"] != "loc-1" {
		t.Errorf("filter thiếu locationId: %v", filter)
	}
}

func TestScopedFilter_AllLocationsOmitsLocation(t *testing.T) {
	filter, err := ScopedFilter(testScope(intakemodels.ScopeAllLocations, true), nil)
	if err != nil {
		t.Fatalf("ScopedFilter lỗi: %v", err)
	}
	if _, exists := filter["locationId"]; exists {
		t.Errorf("scope ALL không được chèn locationId vào filter: %v", filter)
	}
	if _, exists := filter["organizationId"]; !exists {
		t.Errorf("filter scope ALL vẫn phải chứa organizationId: %v", filter)
	}
}

func TestScopedFilter_ExtraCannotOverrideScope(t *testing.T) {
	otherOrg := primitive.NewObjectID()
	filter, err := ScopedFilter(testScope("loc-1", false), bson.M{
		"organizationId": otherOrg,
		"locationId":     "loc-other",
		"monthKey":       "2026-03",
	})
	if err != nil {
		t.Fatalf("ScopedFilter lỗi: %v", err)
	}

	orgID := filter["organizationId"].(primitive.ObjectID)
	if orgID == otherOrg {
		t.Error("extra đã ghi đè được organizationId của scope")
	}
	if filter["locationId"] != "loc-1" {
		t.Errorf("extra đã ghi đè được locationId của scope: %v", filter["locationId"])
	}
	if filter["monthKey"] != "2026-03" {
		t.Errorf("điều kiện extra hợp lệ bị mất: %v", filter)
	}
}

func TestEnsureWriteScope(t *testing.T) {
	scope := testScope("loc-1", false)
	orgID, _ := primitive.ObjectIDFromHex(scope.OrganizationID)

	if err := EnsureWriteScope(scope, orgID, "loc-1"); err != nil {
		t.Errorf("write đúng phạm vi bị từ chối: %v", err)
	}

	if err := EnsureWriteScope(scope, primitive.NewObjectID(), "loc-1"); !errors.Is(err, common.ErrScopeViolation) {
		t.Errorf("write sang tổ chức khác phải trả ErrScopeViolation, được: %v", err)
	}

	if err := EnsureWriteScope(scope, orgID, "loc-2"); !errors.Is(err, common.ErrScopeViolation) {
		t.Errorf("write sang địa điểm khác phải trả ErrScopeViolation, được: %v", err)
	}

	// Quyền org-wide được ghi vào mọi địa điểm trong tổ chức
	adminScope := testScope(intakemodels.ScopeAllLocations, true)
	if err := EnsureWriteScope(adminScope, orgID, "loc-2"); err != nil {
		t.Errorf("quyền org-wide bị từ chối write vào địa điểm trong tổ chức: %v", err)
	}

	// Hồ sơ không gắn địa điểm (admin org-wide tạo, merge path): scope địa điểm
	// cụ thể bị chặn, chỉ quyền org-wide được ghi
	if err := EnsureWriteScope(scope, orgID, ""); !errors.Is(err, common.ErrScopeViolation) {
		t.Errorf("write vào bản ghi không gắn địa điểm với scope cụ thể phải trả ErrScopeViolation, được: %v", err)
	}
	if err := EnsureWriteScope(adminScope, orgID, ""); err != nil {
		t.Errorf("quyền org-wide bị từ chối write vào bản ghi không gắn địa điểm: %v", err)
	}
}

func TestRequireConcreteLocation(t *testing.T) {
	if err := RequireConcreteLocation(testScope("loc-1", false)); err != nil {
		t.Errorf("địa điểm cụ thể bị từ chối: %v", err)
	}

	// Ghi lượt phục vụ với scope "ALL" bị chặn kể cả khi có quyền org-wide
	err := RequireConcreteLocation(testScope(intakemodels.ScopeAllLocations, true))
	if !errors.Is(err, common.ErrMissingScope) {
		t.Errorf("scope ALL phải trả ErrMissingScope khi cần địa điểm cụ thể, được: %v", err)
	}

	err = RequireConcreteLocation(testScope("", false))
	if !errors.Is(err, common.ErrMissingScope) {
		t.Errorf("scope không có địa điểm phải trả ErrMissingScope, được: %v", err)
	}
}
