package utility

import (
	"encoding/json"
	"fmt"
)

// ToMap chuyển đổi struct thành map[string]interface{} (qua JSON round-trip).
// Dùng bởi base service khi cần thêm timestamps vào document trước khi insert/update.
func ToMap(s interface{}) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi chuyển đổi struct thành JSON: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("lỗi khi chuyển đổi JSON thành map: %w", err)
	}

	return result, nil
}
