// Package intakesvc - Dedupe Index.
// Tìm hồ sơ trùng trước khi tạo mới, theo số điện thoại hoặc hash tên + ngày sinh.
// Kết quả chỉ mang tính tư vấn: caller (con người) quyết định dùng hồ sơ trùng,
// tạo mới bất chấp, hay để admin merge sau.
package intakesvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/service"
	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

// NormalizePhoneDigits giữ lại chỉ các chữ số của số điện thoại.
// "(310) 555-1234" -> "3105551234". Chuỗi không có chữ số nào trả về rỗng.
func NormalizePhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// NameDobHash tính hash ổn định của tên + ngày sinh để so trùng.
// Input được lowercase và trim nên "Ana Ruiz" và "ana ruiz " cho cùng hash.
// DOB rỗng vẫn hash được ("ana ruiz|") — chấp nhận rủi ro trùng thấp vì
// kết quả dedupe luôn có người duyệt trước khi hành động.
func NameDobHash(firstName, lastName, dob string) string {
	key := fmt.Sprintf("%s %s|%s",
		strings.ToLower(strings.TrimSpace(firstName)),
		strings.ToLower(strings.TrimSpace(lastName)),
		strings.TrimSpace(dob),
	)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// clientFinder là seam tra cứu của Dedupe Index: chỉ cần FindOne.
// *basesvc.BaseServiceMongoImpl[intakemodels.Client] thỏa mãn interface này;
// test thay bằng fake để kiểm tra thứ tự ưu tiên lookup mà không cần store.
type clientFinder interface {
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (intakemodels.Client, error)
}

// DedupeService tìm hồ sơ trùng trong phạm vi tenant của caller.
type DedupeService struct {
	clients clientFinder
}

// NewDedupeService tạo DedupeService mới.
func NewDedupeService() (*DedupeService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Clients)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Clients, common.ErrNotFound)
	}
	return &DedupeService{
		clients: basesvc.NewBaseServiceMongo[intakemodels.Client](coll),
	}, nil
}

// FindExisting tìm hồ sơ trùng theo phoneDigits trước, nameDobHash sau.
// Match theo số điện thoại thắng match theo tên/ngày sinh (short-circuit).
// Hồ sơ inactive không được coi là ứng viên. Trả về nil nếu không có match.
func (s *DedupeService) FindExisting(ctx context.Context, scope intakemodels.TenantScope, phoneDigits, nameDobHash string) (*intakemodels.Client, error) {
	if phoneDigits != "" {
		match, err := s.findOneScoped(ctx, scope, bson.M{"phoneDigits": phoneDigits})
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}

	if nameDobHash != "" {
		match, err := s.findOneScoped(ctx, scope, bson.M{"nameDobHash": nameDobHash})
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}

	return nil, nil
}

// findOneScoped tìm hồ sơ active mới nhất match điều kiện, trong phạm vi scope.
func (s *DedupeService) findOneScoped(ctx context.Context, scope intakemodels.TenantScope, extra bson.M) (*intakemodels.Client, error) {
	extra["inactive"] = false
	filter, err := ScopedFilter(scope, extra)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	client, err := s.clients.FindOne(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}
