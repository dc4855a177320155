package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList JSON数组列
type StringList []string

// 实现 sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into StringList", value)
		}
	}
	return json.Unmarshal(bytes, l)
}

// 实现 driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// TagColor 标签与颜色的配对, color 为 nil 表示尚未指定颜色
type TagColor struct {
	Tag   string  `json:"tag"`
	Color *string `json:"color"`
}

// TagColorList 项目级标签颜色登记表, 有序
type TagColorList []TagColor

// 实现 sql.Scanner
func (l *TagColorList) Scan(value interface{}) error {
	if value == nil {
		*l = TagColorList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into TagColorList", value)
		}
	}
	return json.Unmarshal(bytes, l)
}

// 实现 driver.Valuer
func (l TagColorList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Find 按标签名查找颜色
func (l TagColorList) Find(tag string) (*string, bool) {
	for _, tc := range l {
		if tc.Tag == tag {
			return tc.Color, true
		}
	}
	return nil, false
}
