// Package intakesvc - Test xây document Visit (snapshot + clamp) và dấu audit.
package intakesvc

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
)

func testVisitClient() *intakemodels.Client {
	return &intakemodels.Client{
		ID:             primitive.NewObjectID(),
		FirstName:      "Ana",
		LastName:       "Ruiz",
		Address:        "123 Main St",
		PostalCode:     "90210",
		County:         "Los Angeles",
		HouseholdSize:  4,
		OrganizationID: primitive.NewObjectID(),
	}
}

func TestNewVisitRecord_HouseholdClampIgnoresSnapshot(t *testing.T) {
	// Hồ sơ có householdSize = 4: giá trị caller gửi vẫn clamp vô điều kiện,
	// 0 phải lưu 1 chứ không rơi về 4 của snapshot
	client := testVisitClient()
	scope := testScope("loc-1", false)
	visitTime := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{5, 5},
		{20, 20},
		{25, 20},
	}
	for _, c := range cases {
		visit := NewVisitRecord(primitive.NewObjectID(), client, scope, c.in, visitTime, false)
		if visit.HouseholdSize != c.want {
			t.Errorf("householdSize %d: visit lưu %d, muốn %d", c.in, visit.HouseholdSize, c.want)
		}
	}
}

func TestNewVisitRecord_SnapshotAndTimeKeys(t *testing.T) {
	client := testVisitClient()
	scope := testScope("loc-1", false)
	visitID := primitive.NewObjectID()
	visitTime := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

	visit := NewVisitRecord(visitID, client, scope, 3, visitTime, true)

	if visit.ID != visitID || visit.ClientID != client.ID || visit.OrganizationID != client.OrganizationID {
		t.Errorf("references sai: %+v", visit)
	}
	if visit.LocationID != "loc-1" {
		t.Errorf("locationId = %q, muốn địa điểm của scope", visit.LocationID)
	}
	if visit.FirstName != "Ana" || visit.LastName != "Ruiz" || visit.County != "Los Angeles" {
		t.Errorf("snapshot hồ sơ không được copy đủ: %+v", visit)
	}
	if visit.MonthKey != "2026-03" || visit.DateKey != "2026-03-05" {
		t.Errorf("khóa thời gian sai: monthKey=%q dateKey=%q", visit.MonthKey, visit.DateKey)
	}
	if visit.VisitAt != visitTime.UnixMilli() {
		t.Errorf("visitAt = %d, muốn %d", visit.VisitAt, visitTime.UnixMilli())
	}
	if !visit.UsdaFirstTimeThisMonth {
		t.Error("cờ usdaFirstTimeThisMonth phải giữ nguyên giá trị truyền vào")
	}
	if visit.RecordedByUserID != scope.UserID {
		t.Errorf("recordedByUserId = %q, muốn %q", visit.RecordedByUserID, scope.UserID)
	}
}

func TestMarkEditedSet(t *testing.T) {
	set := MarkEditedSet("user-1", 0, 1234)
	if set["editedAt"] != int64(1234) || set["editedByUserId"] != "user-1" {
		t.Errorf("dấu audit sai: %v", set)
	}
	if _, exists := set["householdSize"]; exists {
		t.Error("householdSize = 0 không được sửa snapshot")
	}

	set = MarkEditedSet("user-1", 25, 1234)
	if set["householdSize"] != 20 {
		t.Errorf("householdSize sửa lại phải clamp về 20, được: %v", set["householdSize"])
	}

	set = MarkEditedSet("user-1", 3, 1234)
	if set["householdSize"] != 3 {
		t.Errorf("householdSize hợp lệ phải giữ nguyên, được: %v", set["householdSize"])
	}
}
