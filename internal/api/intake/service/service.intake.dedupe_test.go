// Package intakesvc - Test Dedupe Index: chuẩn hóa số điện thoại, hash tên +
// ngày sinh, và thứ tự ưu tiên lookup (phone thắng tên/ngày sinh).
package intakesvc

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
)

func TestNormalizePhoneDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(310) 555-1234", "3105551234"},
		{"310.555.1234", "3105551234"},
		{"+1 310 555 1234", "13105551234"},
		{"3105551234", "3105551234"},
		{"", ""},
		{"khong co so", ""},
	}
	for _, c := range cases {
		if got := NormalizePhoneDigits(c.in); got != c.want {
			t.Errorf("NormalizePhoneDigits(%q) = %q, muốn %q", c.in, got, c.want)
		}
	}
}

func TestNameDobHash_CaseAndSpaceInsensitive(t *testing.T) {
	base := NameDobHash("Ana", "Ruiz", "1990-05-02")

	if got := NameDobHash("ana", "RUIZ", "1990-05-02"); got != base {
		t.Error("hash phải không phân biệt hoa thường")
	}
	if got := NameDobHash("  Ana ", " Ruiz  ", " 1990-05-02 "); got != base {
		t.Error("hash phải trim khoảng trắng đầu cuối")
	}
	if got := NameDobHash("Ana", "Ruiz", "1990-05-03"); got == base {
		t.Error("ngày sinh khác phải cho hash khác")
	}
	if got := NameDobHash("Ann", "Ruiz", "1990-05-02"); got == base {
		t.Error("tên khác phải cho hash khác")
	}
}

func TestNameDobHash_EmptyDob(t *testing.T) {
	// DOB rỗng vẫn hash được, và khác với DOB có giá trị
	empty := NameDobHash("Ana", "Ruiz", "")
	if empty == "" {
		t.Fatal("hash với DOB rỗng không được rỗng")
	}
	if empty == NameDobHash("Ana", "Ruiz", "1990-05-02") {
		t.Error("DOB rỗng và DOB có giá trị phải cho hash khác nhau")
	}
	// Hash phải ổn định giữa các lần gọi
	if empty != NameDobHash("Ana", "Ruiz", "") {
		t.Error("hash không ổn định giữa các lần gọi")
	}
}

// fakeClientFinder trả kết quả theo khóa dedupe có trong filter và ghi lại
// các filter đã nhận để test kiểm tra thứ tự và nội dung lookup.
type fakeClientFinder struct {
	byPhone *intakemodels.Client
	byHash  *intakemodels.Client
	err     error
	filters []bson.M
}

func (f *fakeClientFinder) FindOne(_ context.Context, filter interface{}, _ *options.FindOneOptions) (intakemodels.Client, error) {
	m := filter.(bson.M)
	f.filters = append(f.filters, m)
	if f.err != nil {
		return intakemodels.Client{}, f.err
	}
	if _, ok := m["phoneDigits"]; ok && f.byPhone != nil {
		return *f.byPhone, nil
	}
	if _, ok := m["nameDobHash"]; ok && f.byHash != nil {
		return *f.byHash, nil
	}
	return intakemodels.Client{}, common.ErrNotFound
}

func TestFindExisting_PhoneMatchWins(t *testing.T) {
	// Cả hai khóa đều match các hồ sơ khác nhau — phone phải thắng
	phoneClient := &intakemodels.Client{ID: primitive.NewObjectID(), FirstName: "Ana"}
	hashClient := &intakemodels.Client{ID: primitive.NewObjectID(), FirstName: "Bea"}
	finder := &fakeClientFinder{byPhone: phoneClient, byHash: hashClient}
	svc := &DedupeService{clients: finder}

	match, err := svc.FindExisting(context.Background(), testScope("loc-1", false), "3105551234", NameDobHash("Bea", "Diaz", "1985-07-01"))
	if err != nil {
		t.Fatalf("FindExisting lỗi: %v", err)
	}
	if match == nil || match.ID != phoneClient.ID {
		t.Fatalf("phone match phải thắng nameDobHash match, được: %v", match)
	}
	// Short-circuit: tìm thấy theo phone thì không lookup theo hash nữa
	if len(finder.filters) != 1 {
		t.Errorf("phone match phải short-circuit, số lookup = %d, muốn 1", len(finder.filters))
	}
	if _, ok := finder.filters[0]["nameDobHash"]; ok {
		t.Error("lookup đầu tiên không được chứa nameDobHash")
	}
}

func TestFindExisting_FallsBackToNameDob(t *testing.T) {
	hashClient := &intakemodels.Client{ID: primitive.NewObjectID()}
	finder := &fakeClientFinder{byHash: hashClient}
	svc := &DedupeService{clients: finder}

	match, err := svc.FindExisting(context.Background(), testScope("loc-1", false), "3105551234", "abc123")
	if err != nil {
		t.Fatalf("FindExisting lỗi: %v", err)
	}
	if match == nil || match.ID != hashClient.ID {
		t.Fatalf("phone không match thì phải rơi về nameDobHash, được: %v", match)
	}
	if len(finder.filters) != 2 {
		t.Errorf("số lookup = %d, muốn 2 (phone trước, hash sau)", len(finder.filters))
	}
}

func TestFindExisting_EmptyKeysNoLookup(t *testing.T) {
	finder := &fakeClientFinder{}
	svc := &DedupeService{clients: finder}

	match, err := svc.FindExisting(context.Background(), testScope("loc-1", false), "", "")
	if err != nil {
		t.Fatalf("FindExisting lỗi: %v", err)
	}
	if match != nil {
		t.Errorf("khóa rỗng không được trả match: %v", match)
	}
	if len(finder.filters) != 0 {
		t.Errorf("khóa rỗng không được phát sinh lookup, số lookup = %d", len(finder.filters))
	}
}

func TestFindExisting_LookupScopedAndActiveOnly(t *testing.T) {
	finder := &fakeClientFinder{}
	svc := &DedupeService{clients: finder}
	scope := testScope("loc-1", false)

	if _, err := svc.FindExisting(context.Background(), scope, "3105551234", "abc123"); err != nil {
		t.Fatalf("FindExisting lỗi: %v", err)
	}
	for _, filter := range finder.filters {
		orgID, ok := filter["organizationId"].(primitive.ObjectID)
		if !ok || orgID.Hex() != scope.OrganizationID {
			t.Errorf("lookup thiếu filter organization của scope: %v", filter)
		}
		if filter["locationId"] != "loc-1" {
			t.Errorf("lookup thiếu filter location của scope: %v", filter)
		}
		if filter["inactive"] != false {
			t.Errorf("hồ sơ inactive phải bị loại khỏi ứng viên dedupe: %v", filter)
		}
	}
}

func TestFindExisting_LookupErrorSurfaced(t *testing.T) {
	// Lỗi lookup phải được trả về cho caller, không được âm thầm bỏ qua dedupe
	lookupErr := errors.New("connection reset")
	finder := &fakeClientFinder{err: lookupErr}
	svc := &DedupeService{clients: finder}

	_, err := svc.FindExisting(context.Background(), testScope("loc-1", false), "3105551234", "")
	if !errors.Is(err, lookupErr) {
		t.Errorf("lỗi lookup phải được surface, được: %v", err)
	}
}
