package utils

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// StringValue dereferences s, returning "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SameStringPtr reports whether two optional strings hold the same value
func SameStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
