package crypto

import (
	"encoding/base64"
)

// ToBase64 encodes bytes to standard base64 with padding. Signatures,
// digests and document contents in signature packages use this form.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 (with padding) to bytes.
func FromBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// DecodeBase64 decodes base64 in any of the four RFC 4648 variants
// (standard or URL alphabet, with or without padding). Packages produced by
// other tooling are accepted through this path.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.RawStdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.URLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	return base64.RawURLEncoding.DecodeString(s)
}
