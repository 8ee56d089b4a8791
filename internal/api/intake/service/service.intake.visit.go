// Package intakesvc - Visit Ledger (visits).
// Coordinator nối Dedupe Index, Client Registry và Eligibility Marker Store
// thành một đơn vị công việc nguyên tử: ghi Visit, cập nhật counters và tạo
// marker trong cùng một transaction.
package intakesvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/models"
	basesvc "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/service"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/events"
	intakedto "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/dto"
	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/logger"
)

// VisitService xử lý logic sổ cái lượt phục vụ.
type VisitService struct {
	*basesvc.BaseServiceMongoImpl[intakemodels.Visit]

	clientService *ClientService
	markerService *MarkerService
	dedupeService *DedupeService
}

// NewVisitService tạo VisitService mới.
func NewVisitService() (*VisitService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Visits)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Visits, common.ErrNotFound)
	}
	clientService, err := NewClientService()
	if err != nil {
		return nil, err
	}
	markerService, err := NewMarkerService()
	if err != nil {
		return nil, err
	}
	dedupeService, err := NewDedupeService()
	if err != nil {
		return nil, err
	}
	return &VisitService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[intakemodels.Visit](coll),
		clientService:        clientService,
		markerService:        markerService,
		dedupeService:        dedupeService,
	}, nil
}

// LogVisit ghi một lượt phục vụ cho khách đã có hồ sơ.
// Yêu cầu scope trỏ vào một địa điểm cụ thể (không "ALL") — lượt phục vụ luôn
// thuộc về một địa điểm vật lý kể cả khi caller có quyền đọc toàn tổ chức.
//
// Toàn bộ ghi chép chạy trong MỘT transaction: đọc lại client, tạo marker (nếu
// được yêu cầu), ghi Visit với snapshot từ client vừa đọc, cập nhật counters.
// Conflict với writer khác trên cùng client/marker thì retry từ đầu với budget
// giới hạn, hết budget trả về ErrContention (user thử lại được).
func (s *VisitService) LogVisit(ctx context.Context, scope intakemodels.TenantScope, input *intakedto.VisitLogInput) (*intakemodels.Visit, error) {
	if err := RequireConcreteLocation(scope); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}

	clientID, err := primitive.ObjectIDFromHex(input.ClientID)
	if err != nil {
		return nil, common.ErrClientNotFound
	}
	orgID, err := ScopeOrgID(scope)
	if err != nil {
		return nil, err
	}

	// Khóa thời gian derive một lần, giữ nguyên qua các lần retry
	visitTime := ResolveVisitTime(input.VisitDate, time.Now())
	monthKey := MonthKey(visitTime)
	// Clamp vô điều kiện: 0 hay âm thành 1, không rơi về snapshot của hồ sơ
	householdSize := ClampHouseholdSize(input.HouseholdSize)

	result, err := s.runVisitTx(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		// 1. Đọc lại client TRONG transaction, theo _id thuần.
		// Cố ý không filter theo org trong query: client thuộc tổ chức khác phải
		// trả về CrossTenant chứ không được ngụy trang thành NotFound.
		var client intakemodels.Client
		err := s.clientService.Collection().FindOne(sessCtx, bson.M{"_id": clientID}).Decode(&client)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, common.ErrClientNotFound
			}
			return nil, err
		}
		if client.OrganizationID != orgID {
			return nil, common.ErrCrossTenant
		}
		if client.Inactive {
			return nil, common.ErrClientInactive
		}

		// 2. Marker (nếu caller yêu cầu cờ đủ điều kiện)
		visitID := primitive.NewObjectID()
		usdaFirstTime := false
		if input.WantsEligibilityFlag {
			wasCreated, err := s.markerService.EnsureMarkerOnce(sessCtx, &intakemodels.EligibilityMarker{
				ID:              MarkerKey(orgID.Hex(), clientID.Hex(), monthKey),
				ClientID:        clientID,
				OrganizationID:  orgID,
				MonthKey:        monthKey,
				VisitID:         visitID,
				CreatedByUserID: scope.UserID,
			})
			if err != nil {
				return nil, err
			}
			usdaFirstTime = wasCreated
		}

		// 3. Ghi Visit với snapshot từ client vừa đọc
		visit := NewVisitRecord(visitID, &client, scope, householdSize, visitTime, usdaFirstTime)
		if _, err := s.Collection().InsertOne(sessCtx, visit); err != nil {
			return nil, err
		}

		// 4. Counters — cùng transaction với Visit, không bao giờ tách rời
		if err := s.clientService.RecordVisitCounters(sessCtx, clientID, monthKey, visit.VisitAt); err != nil {
			return nil, err
		}

		return &visit, nil
	})
	if err != nil {
		return nil, err
	}

	visit := result.(*intakemodels.Visit)
	// Audit event sau khi commit — trước commit thì visit chưa chắc tồn tại
	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.Visits,
		Operation:      events.OpInsert,
		Document:       *visit,
	})
	return visit, nil
}

// NewVisitRecord xây document Visit từ snapshot hồ sơ vừa đọc trong transaction.
// HouseholdSize lấy theo giá trị caller gửi và clamp [1,20] vô điều kiện:
// 0 hay âm thành 1, không rơi về snapshot của hồ sơ. Hàm thuần, tách riêng để
// test được snapshot và clamp mà không cần transaction.
func NewVisitRecord(visitID primitive.ObjectID, client *intakemodels.Client, scope intakemodels.TenantScope, householdSize int, visitTime time.Time, usdaFirstTime bool) intakemodels.Visit {
	now := time.Now().UnixMilli()
	return intakemodels.Visit{
		ID:             visitID,
		ClientID:       client.ID,
		OrganizationID: client.OrganizationID,
		LocationID:     scope.LocationID,

		FirstName:     client.FirstName,
		LastName:      client.LastName,
		Address:       client.Address,
		PostalCode:    client.PostalCode,
		County:        client.County,
		HouseholdSize: ClampHouseholdSize(householdSize),

		VisitAt:  visitTime.UnixMilli(),
		MonthKey: MonthKey(visitTime),
		DateKey:  DateKey(visitTime),
		WeekKey:  WeekKey(visitTime),
		Weekday:  Weekday(visitTime),

		UsdaFirstTimeThisMonth: usdaFirstTime,

		RecordedByUserID: scope.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CreateClientAndLogVisit là fast-path intake: dedupe check, tạo hồ sơ, ghi lượt đầu.
// Dedupe chạy NGOÀI transaction (best-effort heuristic, không phải ràng buộc store):
// tìm thấy match thì trả về cho caller quyết định thay vì âm thầm tiếp tục.
// ForceCreate bỏ qua match và tạo mới — luôn được phép vì dedupe theo tên/dob có
// thể false positive và không bao giờ được chặn cứng intake.
func (s *VisitService) CreateClientAndLogVisit(ctx context.Context, scope intakemodels.TenantScope, input *intakedto.VisitIntakeInput) (*intakedto.VisitIntakeResponse, error) {
	if err := RequireConcreteLocation(scope); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}

	if !input.ForceCreate {
		phoneDigits := NormalizePhoneDigits(input.Client.Phone)
		nameDobHash := NameDobHash(input.Client.FirstName, input.Client.LastName, input.Client.DateOfBirth)
		match, err := s.dedupeService.FindExisting(ctx, scope, phoneDigits, nameDobHash)
		if err != nil {
			// Lỗi dedupe không được âm thầm bỏ qua: trả lỗi để user chọn
			// thử lại hoặc tạo mới có chủ đích (ForceCreate)
			return nil, err
		}
		if match != nil {
			return &intakedto.VisitIntakeResponse{DedupeMatch: match}, nil
		}
	}

	client, err := s.clientService.Create(ctx, scope, &input.Client)
	if err != nil {
		return nil, err
	}

	visit, err := s.LogVisit(ctx, scope, &intakedto.VisitLogInput{
		ClientID:             client.ID.Hex(),
		VisitDate:            input.VisitDate,
		HouseholdSize:        input.Client.HouseholdSize,
		WantsEligibilityFlag: input.WantsEligibilityFlag,
	})
	if err != nil {
		// Hồ sơ đã tạo nhưng lượt phục vụ thất bại — trả cả hai thông tin
		// để caller ghi lại lượt cho hồ sơ vừa tạo thay vì intake lại từ đầu
		return &intakedto.VisitIntakeResponse{Client: client}, err
	}

	return &intakedto.VisitIntakeResponse{Client: client, Visit: visit}, nil
}

// MarkEditedSet xây $set cho dấu audit lên một Visit.
// householdSize > 0 sửa lại snapshot số người trong hộ trong cùng dấu audit
// (clamp [1,20]); 0 nghĩa là giữ nguyên. Hàm thuần, tách riêng để test được
// shape của update.
func MarkEditedSet(editedByUserID string, householdSize int, editedAt int64) bson.M {
	set := bson.M{
		"editedAt":       editedAt,
		"editedByUserId": editedByUserID,
	}
	if householdSize > 0 {
		set["householdSize"] = ClampHouseholdSize(householdSize)
	}
	return set
}

// MarkEdited đóng dấu audit lên một lượt phục vụ.
// Visit bất biến sau khi ghi — cặp editedAt/editedByUserId là thay đổi duy nhất
// được phép, kèm tùy chọn sửa lại snapshot householdSize trong cùng dấu audit.
// Counters không bị đụng tới.
func (s *VisitService) MarkEdited(ctx context.Context, scope intakemodels.TenantScope, visitID primitive.ObjectID, input *intakedto.VisitMarkEditedInput) (*intakemodels.Visit, error) {
	filter, err := ScopedFilter(scope, bson.M{"_id": visitID})
	if err != nil {
		return nil, err
	}

	if _, err := s.FindOne(ctx, filter, nil); err != nil {
		return nil, err
	}

	householdSize := 0
	if input != nil {
		householdSize = input.HouseholdSize
	}
	updated, err := s.UpdateById(ctx, visitID, basesvc.UpdateData{
		Set: MarkEditedSet(scope.UserID, householdSize, time.Now().UnixMilli()),
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// List trả về danh sách lượt phục vụ trong phạm vi scope, mới nhất trước.
func (s *VisitService) List(ctx context.Context, scope intakemodels.TenantScope, query *intakedto.VisitListQuery) (*basemodels.PaginateResult[intakemodels.Visit], error) {
	extra := bson.M{}
	if query.ClientID != "" {
		clientID, err := primitive.ObjectIDFromHex(query.ClientID)
		if err != nil {
			return nil, common.ErrClientNotFound
		}
		extra["clientId"] = clientID
	}
	if query.MonthKey != "" {
		extra["monthKey"] = query.MonthKey
	}
	if query.DateKey != "" {
		extra["dateKey"] = query.DateKey
	}

	filter, err := ScopedFilter(scope, extra)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "visitAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, query.Page, query.Limit, opts)
}

// runVisitTx chạy fn trong một transaction với retry giới hạn.
// Lỗi nghiệp vụ (*common.Error) fail ngay, không retry. Lỗi transient của store
// (conflict giữa các writer trên cùng document) retry với backoff tuyến tính
// tới khi hết budget thì trả ErrContention.
func (s *VisitService) runVisitTx(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := global.MongoDB_Session.StartSession()
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer session.EndSession(ctx)

	maxRetries := global.ServerConfig.VisitTxMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	backoff := time.Duration(global.ServerConfig.VisitTxBackoffMs) * time.Millisecond

	var result interface{}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = mongo.WithSession(ctx, session, func(sessCtx mongo.SessionContext) error {
			if err := session.StartTransaction(); err != nil {
				return err
			}
			res, err := fn(sessCtx)
			if err != nil {
				// AbortTransaction trên session đã abort là no-op, lỗi abort không che lỗi gốc
				_ = session.AbortTransaction(sessCtx)
				return err
			}
			if err := session.CommitTransaction(sessCtx); err != nil {
				return err
			}
			result = res
			return nil
		})
		if lastErr == nil {
			return result, nil
		}

		// Lỗi nghiệp vụ: fail fast, không retry
		var bizErr *common.Error
		if errors.As(lastErr, &bizErr) {
			return nil, lastErr
		}
		if !common.IsTransientTxError(lastErr) {
			return nil, common.ConvertMongoError(lastErr)
		}

		logger.GetAppLogger().WithError(lastErr).Warnf("Transaction conflict, retry lần %d/%d", attempt+1, maxRetries)
		time.Sleep(backoff * time.Duration(attempt+1))
	}

	logger.GetErrorLogger().WithError(lastErr).Error("Hết retry budget cho visit transaction")
	return nil, common.ErrContention
}
