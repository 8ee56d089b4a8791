// Package intakesvc - Test gộp hồ sơ và update document đếm lượt phục vụ.
package intakesvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
)

func TestMergeBlankContactFields_FillsOnlyBlankTarget(t *testing.T) {
	target := &intakemodels.Client{
		Phone:       "",
		DateOfBirth: "1980-01-15",
		Address:     "",
		PostalCode:  "90210",
		County:      "",
	}
	source := &intakemodels.Client{
		Phone:       "(310) 555-1234",
		PhoneDigits: "3105551234",
		DateOfBirth: "1999-12-31",
		Address:     "123 Main St",
		PostalCode:  "10001",
		County:      "Los Angeles",
	}

	set := MergeBlankContactFields(target, source)

	// Field trống của target được điền từ source
	if set["phone"] != "(310) 555-1234" {
		t.Errorf("phone trống phải được điền, set = %v", set)
	}
	if set["phoneDigits"] != "3105551234" {
		t.Errorf("phoneDigits phải đi cùng phone, set = %v", set)
	}
	if set["address"] != "123 Main St" {
		t.Errorf("address trống phải được điền, set = %v", set)
	}
	if set["county"] != "Los Angeles" {
		t.Errorf("county trống phải được điền, set = %v", set)
	}

	// Field đã có giá trị KHÔNG BAO GIỜ bị ghi đè
	if _, exists := set["dateOfBirth"]; exists {
		t.Error("dateOfBirth của target đã có giá trị, không được ghi đè")
	}
	if _, exists := set["postalCode"]; exists {
		t.Error("postalCode của target đã có giá trị, không được ghi đè")
	}
}

func TestMergeBlankContactFields_SourceBlankDoesNothing(t *testing.T) {
	target := &intakemodels.Client{}
	source := &intakemodels.Client{}
	set := MergeBlankContactFields(target, source)
	if len(set) != 0 {
		t.Errorf("cả hai đều trống thì không có gì để set, được: %v", set)
	}
}

func TestCounterUpdateDoc_Shape(t *testing.T) {
	doc := CounterUpdateDoc("2026-03", 1772000000000)

	inc, ok := doc["$inc"].(bson.M)
	if !ok {
		t.Fatalf("update doc thiếu $inc: %v", doc)
	}
	if inc["visitCountLifetime"] != 1 {
		t.Errorf("$inc visitCountLifetime = %v, muốn 1", inc["visitCountLifetime"])
	}
	if inc["visitCountByMonth.2026-03"] != 1 {
		t.Errorf("$inc phải nhắm vào visitCountByMonth.2026-03, được: %v", inc)
	}

	set, ok := doc["$set"].(bson.M)
	if !ok {
		t.Fatalf("update doc thiếu $set: %v", doc)
	}
	if set["lastVisitAt"] != int64(1772000000000) {
		t.Errorf("$set lastVisitAt = %v, muốn 1772000000000", set["lastVisitAt"])
	}
	if set["lastVisitMonthKey"] != "2026-03" {
		t.Errorf("$set lastVisitMonthKey = %v, muốn 2026-03", set["lastVisitMonthKey"])
	}
	if _, exists := set["updatedAt"]; !exists {
		t.Error("$set phải chạm updatedAt")
	}
}
