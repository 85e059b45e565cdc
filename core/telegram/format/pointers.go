package format

// OrEmpty returns defaultVal for a nil pointer and emptyVal for a pointer to "".
func OrEmpty(s *string, defaultVal, emptyVal string) string {
	switch {
	case s == nil:
		return defaultVal
	case *s == "":
		return emptyVal
	}
	return *s
}
