package utils

import "encoding/json"

// Nullable phân biệt ba trạng thái của một field trong body PATCH/PUT:
// không gửi (Set=false), gửi null (Set=true, Value=nil), gửi giá trị.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	// null
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// Apply ghi giá trị vào updates nếu client có gửi field (kể cả null).
func (n Nullable[T]) Apply(updates map[string]interface{}, column string) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		updates[column] = nil
		return
	}
	updates[column] = *n.Value
}

func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}
