package sensors

// AsFloat coerces a decoded JSON value to float64.
// Substituted readings carry int zeros, fresh ones float64.
func AsFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// InverterStatusName maps the gateway's status code to a display name.
func InverterStatusName(code int) string {
	switch code {
	case 0:
		return "Waiting"
	case 1:
		return "Normal"
	case 3:
		return "Fault"
	default:
		return "Unknown"
	}
}
