package rasp

import (
	"os"
	"strings"
)

// placeholderPrefix marks a text value that must be resolved through the
// secret source instead of being typed literally.
const placeholderPrefix = "script-"

const (
	secretLogin    = "RASP_LOGIN"
	secretPassword = "RASP_PASSWORD"
)

// SecretSource resolves secret names to values. The environment-backed
// implementation is the production one; tests inject a map.
type SecretSource interface {
	Lookup(name string) (string, bool)
}

// EnvSecrets resolves secrets from process environment variables.
type EnvSecrets struct{}

func (EnvSecrets) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapSecrets is an in-memory SecretSource for tests.
type MapSecrets map[string]string

func (m MapSecrets) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// secretName maps a placeholder text value to its secret name. The two
// canonical suffixes have fixed names; any other suffix derives one.
func secretName(value string) (string, bool) {
	if !strings.HasPrefix(value, placeholderPrefix) {
		return "", false
	}
	switch suffix := strings.TrimPrefix(value, placeholderPrefix); suffix {
	case "login":
		return secretLogin, true
	case "password":
		return secretPassword, true
	default:
		return "RASP_" + sanitizeSuffix(suffix), true
	}
}

func sanitizeSuffix(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
