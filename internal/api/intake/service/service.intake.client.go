// Package intakesvc - Client Registry (clients).
// Tạo/sửa hồ sơ khách hàng, sở hữu counters denormalize và lifecycle flags.
package intakesvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/models"
	basesvc "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/service"
	intakedto "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/dto"
	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

// ClientService xử lý logic hồ sơ khách hàng.
type ClientService struct {
	*basesvc.BaseServiceMongoImpl[intakemodels.Client]
}

// NewClientService tạo ClientService mới.
func NewClientService() (*ClientService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Clients)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Clients, common.ErrNotFound)
	}
	return &ClientService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[intakemodels.Client](coll),
	}, nil
}

// Create tạo hồ sơ khách hàng mới trong phạm vi scope.
// Validate input, tính khóa dedupe, đóng dấu tenant và khởi tạo counters = 0.
// Địa điểm rỗng chỉ được phép khi caller có quyền org-wide (admin tạo hồ sơ toàn tổ chức).
func (s *ClientService) Create(ctx context.Context, scope intakemodels.TenantScope, input *intakedto.ClientCreateInput) (*intakemodels.Client, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}

	orgID, err := ScopeOrgID(scope)
	if err != nil {
		return nil, err
	}

	locationID := scope.LocationID
	if scope.IsAllLocations() {
		locationID = ""
	}

	client := intakemodels.Client{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Phone:         input.Phone,
		DateOfBirth:   input.DateOfBirth,
		Address:       input.Address,
		PostalCode:    input.PostalCode,
		County:        input.County,
		HouseholdSize: ClampHouseholdSize(input.HouseholdSize),

		PhoneDigits: NormalizePhoneDigits(input.Phone),
		NameDobHash: NameDobHash(input.FirstName, input.LastName, input.DateOfBirth),

		Inactive:           false,
		VisitCountLifetime: 0,

		OrganizationID:  orgID,
		LocationID:      locationID,
		CreatedByUserID: scope.UserID,
	}

	created, err := s.InsertOne(ctx, client)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindScopedByID tìm hồ sơ theo ID trong phạm vi scope.
// Hồ sơ thuộc tổ chức khác trả về ErrClientNotFound (không tiết lộ sự tồn tại).
func (s *ClientService) FindScopedByID(ctx context.Context, scope intakemodels.TenantScope, clientID primitive.ObjectID) (*intakemodels.Client, error) {
	filter, err := ScopedFilter(scope, bson.M{"_id": clientID})
	if err != nil {
		return nil, err
	}
	// Hồ sơ có thể không gắn địa điểm (admin org-wide tạo) — đọc theo ID thì chỉ chặn theo tổ chức
	delete(filter, "locationId")

	client, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		return nil, common.ErrClientNotFound
	}
	return &client, nil
}

// Update cập nhật thông tin mô tả của hồ sơ, tính lại khóa dedupe nếu tên/phone/dob đổi.
// Không đụng tới counters hay lifecycle flags.
func (s *ClientService) Update(ctx context.Context, scope intakemodels.TenantScope, clientID primitive.ObjectID, input *intakedto.ClientUpdateInput) (*intakemodels.Client, error) {
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}

	existing, err := s.FindScopedByID(ctx, scope, clientID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if input.FirstName != "" {
		set["firstName"] = input.FirstName
	}
	if input.LastName != "" {
		set["lastName"] = input.LastName
	}
	if input.Phone != "" {
		set["phone"] = input.Phone
		set["phoneDigits"] = NormalizePhoneDigits(input.Phone)
	}
	if input.DateOfBirth != "" {
		set["dateOfBirth"] = input.DateOfBirth
	}
	if input.Address != "" {
		set["address"] = input.Address
	}
	if input.PostalCode != "" {
		set["postalCode"] = input.PostalCode
	}
	if input.County != "" {
		set["county"] = input.County
	}
	if input.HouseholdSize > 0 {
		set["householdSize"] = ClampHouseholdSize(input.HouseholdSize)
	}

	// Hash phụ thuộc tên + dob, tính lại trên giá trị sau update
	firstName := existing.FirstName
	lastName := existing.LastName
	dob := existing.DateOfBirth
	if input.FirstName != "" {
		firstName = input.FirstName
	}
	if input.LastName != "" {
		lastName = input.LastName
	}
	if input.DateOfBirth != "" {
		dob = input.DateOfBirth
	}
	set["nameDobHash"] = NameDobHash(firstName, lastName, dob)

	updated, err := s.UpdateById(ctx, existing.ID, basesvc.UpdateData{Set: set})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// List trả về danh sách hồ sơ trong phạm vi scope, phân trang.
// Mặc định ẩn hồ sơ inactive; search match tên (prefix, không phân biệt hoa thường)
// hoặc số điện thoại đã chuẩn hóa.
func (s *ClientService) List(ctx context.Context, scope intakemodels.TenantScope, query *intakedto.ClientListQuery) (*basemodels.PaginateResult[intakemodels.Client], error) {
	extra := bson.M{}
	if !query.IncludeInactive {
		extra["inactive"] = false
	}
	if query.Search != "" {
		digits := NormalizePhoneDigits(query.Search)
		if digits != "" && digits == query.Search {
			extra["phoneDigits"] = bson.M{"$regex": "^" + digits}
		} else {
			extra["$or"] = []bson.M{
				{"firstName": bson.M{"$regex": "^" + query.Search, "$options": "i"}},
				{"lastName": bson.M{"$regex": "^" + query.Search, "$options": "i"}},
			}
		}
	}

	filter, err := ScopedFilter(scope, extra)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	return s.FindWithPagination(ctx, filter, query.Page, query.Limit, opts)
}

// Deactivate vô hiệu hóa hồ sơ (soft-delete). Không đụng counters hay lịch sử Visit —
// lịch sử vẫn query được, hồ sơ chỉ biến mất khỏi intake search và listing mặc định.
func (s *ClientService) Deactivate(ctx context.Context, scope intakemodels.TenantScope, clientID primitive.ObjectID) (*intakemodels.Client, error) {
	existing, err := s.FindScopedByID(ctx, scope, clientID)
	if err != nil {
		return nil, err
	}
	updated, err := s.UpdateById(ctx, existing.ID, basesvc.UpdateData{Set: bson.M{"inactive": true}})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reactivate kích hoạt lại hồ sơ đã vô hiệu hóa.
func (s *ClientService) Reactivate(ctx context.Context, scope intakemodels.TenantScope, clientID primitive.ObjectID) (*intakemodels.Client, error) {
	existing, err := s.FindScopedByID(ctx, scope, clientID)
	if err != nil {
		return nil, err
	}
	updated, err := s.UpdateById(ctx, existing.ID, basesvc.UpdateData{Set: bson.M{"inactive": false}})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MergeBlankContactFields tính các field contact cần copy từ source sang target:
// chỉ copy khi field của target đang trống, không bao giờ ghi đè dữ liệu đã có.
// Trả về map rỗng nếu không có gì để copy. Hàm thuần, không side effect.
func MergeBlankContactFields(target, source *intakemodels.Client) bson.M {
	set := bson.M{}
	if target.Phone == "" && source.Phone != "" {
		set["phone"] = source.Phone
		set["phoneDigits"] = source.PhoneDigits
	}
	if target.DateOfBirth == "" && source.DateOfBirth != "" {
		set["dateOfBirth"] = source.DateOfBirth
	}
	if target.Address == "" && source.Address != "" {
		set["address"] = source.Address
	}
	if target.PostalCode == "" && source.PostalCode != "" {
		set["postalCode"] = source.PostalCode
	}
	if target.County == "" && source.County != "" {
		set["county"] = source.County
	}
	return set
}

// MergeInto gộp hồ sơ source vào target (chỉ admin).
// Đây là thao tác đối chiếu thông tin liên lạc, không phải viết lại sổ cái:
// Visit history KHÔNG được migrate — các bản ghi Visit giữ nguyên clientId gốc
// để snapshot lịch sử không bị xáo trộn. Source bị đánh dấu inactive và trỏ
// mergedIntoId sang target.
func (s *ClientService) MergeInto(ctx context.Context, scope intakemodels.TenantScope, sourceID, targetID primitive.ObjectID) (*intakemodels.Client, error) {
	if scope.Role != "admin" {
		return nil, common.ErrScopeViolation
	}
	if sourceID == targetID {
		return nil, common.NewError(common.ErrCodeValidationInput, "Không thể merge một hồ sơ vào chính nó", common.StatusBadRequest, nil)
	}

	source, err := s.FindScopedByID(ctx, scope, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.FindScopedByID(ctx, scope, targetID)
	if err != nil {
		return nil, err
	}

	// Merge ghi vào cả hai hồ sơ — cả hai phải nằm trong phạm vi write của scope.
	// Hồ sơ không gắn địa điểm (admin org-wide tạo) chỉ merge được với quyền org-wide.
	if err := EnsureWriteScope(scope, source.OrganizationID, source.LocationID); err != nil {
		return nil, err
	}
	if err := EnsureWriteScope(scope, target.OrganizationID, target.LocationID); err != nil {
		return nil, err
	}

	// Copy các field contact còn trống của target
	if set := MergeBlankContactFields(target, source); len(set) > 0 {
		if _, err := s.UpdateById(ctx, target.ID, basesvc.UpdateData{Set: set}); err != nil {
			return nil, err
		}
	}

	// Đóng hồ sơ source: inactive + trỏ về hồ sơ còn sống
	if _, err := s.UpdateById(ctx, source.ID, basesvc.UpdateData{Set: bson.M{
		"inactive":     true,
		"mergedIntoId": target.ID,
	}}); err != nil {
		return nil, err
	}

	merged, err := s.FindScopedByID(ctx, scope, targetID)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// CounterUpdateDoc xây update document cập nhật counters cho một lượt phục vụ:
// $inc lifetime và counter tháng (tự tạo entry = 1 nếu chưa có), $set lastVisit*.
// Hàm thuần, tách riêng để test được shape của update.
func CounterUpdateDoc(monthKey string, visitAt int64) bson.M {
	return bson.M{
		"$inc": bson.M{
			"visitCountLifetime":            1,
			"visitCountByMonth." + monthKey: 1,
		},
		"$set": bson.M{
			"lastVisitAt":       visitAt,
			"lastVisitMonthKey": monthKey,
			"updatedAt":         time.Now().UnixMilli(),
		},
	}
}

// RecordVisitCounters cập nhật counters của client bên trong transaction đang mở.
// Chỉ được gọi từ transaction ghi Visit tương ứng (đúng một lần mỗi Visit) —
// không có entry point độc lập nào khác được mutate counters, để counters
// không bao giờ lệch khỏi tập Visit dưới concurrent writers.
func (s *ClientService) RecordVisitCounters(sessCtx mongo.SessionContext, clientID primitive.ObjectID, monthKey string, visitAt int64) error {
	result, err := s.Collection().UpdateOne(sessCtx,
		bson.M{"_id": clientID},
		CounterUpdateDoc(monthKey, visitAt),
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return common.ErrClientNotFound
	}
	return nil
}
