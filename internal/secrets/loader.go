package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source lists where a credential (e.g. the redis password) may come from.
// File wins over Env, Env wins over Value.
type Source struct {
	Name  string
	Value string
	File  string
	Env   string
}

// Load resolves the credential. Optional credentials should use LoadOptional.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		value := strings.TrimSpace(string(data))
		if value == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return value, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			return value, nil
		}
	}

	value := strings.TrimSpace(src.Value)
	if value == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return value, nil
}

// LoadOptional is Load that treats "nothing configured" as an empty credential.
func LoadOptional(src Source) (string, error) {
	if strings.TrimSpace(src.File) == "" && strings.TrimSpace(src.Value) == "" &&
		(strings.TrimSpace(src.Env) == "" || strings.TrimSpace(os.Getenv(src.Env)) == "") {
		return "", nil
	}

	return Load(src)
}
