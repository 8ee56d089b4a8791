// Package intakesvc - Eligibility Marker Store (eligibility_markers).
// Marker "lượt đầu tiên đủ điều kiện trong tháng", tối đa một marker cho mỗi
// (tổ chức, khách hàng, tháng).
package intakesvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/service"
	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

// MarkerKey xây khóa tổng hợp deterministic "{orgId}_{clientId}_{monthKey}".
// Khóa deterministic biến race "check rồi insert" thành ràng buộc unique của store:
// hai transaction cùng tạo marker một tháng thì transaction thứ hai hoặc thấy
// marker đã tồn tại, hoặc bị store từ chối write trùng _id.
func MarkerKey(orgID, clientID, monthKey string) string {
	return fmt.Sprintf("%s_%s_%s", orgID, clientID, monthKey)
}

// MarkerService quản lý eligibility markers.
type MarkerService struct {
	*basesvc.BaseServiceMongoImpl[intakemodels.EligibilityMarker]
}

// NewMarkerService tạo MarkerService mới.
func NewMarkerService() (*MarkerService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.EligibilityMarkers)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.EligibilityMarkers, common.ErrNotFound)
	}
	return &MarkerService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[intakemodels.EligibilityMarker](coll),
	}, nil
}

// EnsureMarkerOnce đảm bảo marker tồn tại cho (org, client, tháng), trả về true
// nếu marker được TẠO MỚI trong lần gọi này.
// CHỈ được gọi bên trong transaction cũng ghi Visit tương ứng: "marker được tạo"
// và "visit có usdaFirstTimeThisMonth=true" phải cùng commit hoặc cùng rollback.
// Insert trực tiếp qua collection (không qua base service) để write nằm trong
// session của transaction và lỗi transient giữ nguyên label cho retry loop.
func (s *MarkerService) EnsureMarkerOnce(sessCtx mongo.SessionContext, marker *intakemodels.EligibilityMarker) (bool, error) {
	// Đọc trong transaction: đọc này nằm trong read-set, writer khác đụng vào
	// cùng khóa sẽ gây conflict khi commit
	err := s.Collection().FindOne(sessCtx, bson.M{"_id": marker.ID}).Err()
	if err == nil {
		// Marker đã tồn tại, không ghi đè
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	now := time.Now().UnixMilli()
	marker.CreatedAt = now
	if _, err := s.Collection().InsertOne(sessCtx, marker); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Writer khác thắng cuộc đua ngoài transaction isolation — coi như đã tồn tại
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountForMonth đếm số khách đã được đánh dấu đủ điều kiện trong một tháng,
// trong phạm vi tổ chức của scope (marker không gắn địa điểm).
func (s *MarkerService) CountForMonth(ctx context.Context, scope intakemodels.TenantScope, monthKey string) (int64, error) {
	if err := ValidateScope(scope); err != nil {
		return 0, err
	}
	orgID, err := ScopeOrgID(scope)
	if err != nil {
		return 0, err
	}
	return s.CountDocuments(ctx, bson.M{"organizationId": orgID, "monthKey": monthKey})
}
