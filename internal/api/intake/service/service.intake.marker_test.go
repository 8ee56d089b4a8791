// Package intakesvc - Test khóa marker đủ điều kiện theo tháng.
package intakesvc

import "testing"

func TestMarkerKey_Deterministic(t *testing.T) {
	a := MarkerKey("64f1b2c3d4e5f6a7b8c9d0e1", "64f1b2c3d4e5f6a7b8c9d0e2", "2026-03")
	b := MarkerKey("64f1b2c3d4e5f6a7b8c9d0e1", "64f1b2c3d4e5f6a7b8c9d0e2", "2026-03")
	if a != b {
		t.Error("cùng (org, client, tháng) phải cho cùng một khóa marker")
	}
	if a != "64f1b2c3d4e5f6a7b8c9d0e1_64f1b2c3d4e5f6a7b8c9d0e2_2026-03" {
		t.Errorf("khóa marker sai định dạng: %q", a)
	}
}

func TestMarkerKey_DistinctPerDimension(t *testing.T) {
	base := MarkerKey("org-a", "client-a", "2026-03")
	if MarkerKey("org-b", "client-a", "2026-03") == base {
		t.Error("khác tổ chức phải cho khóa khác")
	}
	if MarkerKey("org-a", "client-b", "2026-03") == base {
		t.Error("khác khách hàng phải cho khóa khác")
	}
	if MarkerKey("org-a", "client-a", "2026-04") == base {
		t.Error("khác tháng phải cho khóa khác")
	}
}
