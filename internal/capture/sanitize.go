package capture

// maxSessionKeyLen bounds the sanitized key so filenames stay portable.
const maxSessionKeyLen = 64

// fallbackSessionKey is used when the host supplies no usable session key.
const fallbackSessionKey = "unknown"

// SanitizeSessionKey makes a session key safe for use in a filename:
// ASCII letters, digits, underscore and hyphen pass through, everything
// else becomes an underscore. The result is truncated to 64 characters;
// an empty result is replaced with "unknown".
func SanitizeSessionKey(key string) string {
	if key == "" {
		return fallbackSessionKey
	}

	out := make([]byte, 0, len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
		if len(out) == maxSessionKeyLen {
			break
		}
	}

	if len(out) == 0 {
		return fallbackSessionKey
	}
	return string(out)
}
