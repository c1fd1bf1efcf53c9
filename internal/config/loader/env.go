package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix   string            // Environment variable prefix (e.g., "PAD_")
	mapping  map[string]string // Env var -> config path
	template map[string]any    // Typed settings; see SetTemplate
	environ  func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "PAD_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// defaultEnvMapping returns the shorthand environment variables.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":     "log.level",
		prefix + "LOG_FILE":      "log.file",
		prefix + "CAPACITY":      "editor.capacity",
		prefix + "WORD_MODIFIER": "editor.word_modifier",
		prefix + "WATCH":         "watch.enabled",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			// PAD_THEME_CARET -> theme.caret
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		v, err := l.convert(path, value)
		if err != nil {
			return nil, &ParseError{Path: name, Message: err.Error(), Err: err}
		}
		setByPath(config, path, v)
	}

	return config, nil
}

// SetEnviron replaces the environment source. A nil fn restores os.Environ.
func (l *EnvLoader) SetEnviron(fn func() []string) {
	if fn == nil {
		fn = os.Environ
	}
	l.environ = fn
}

// SetTemplate sets a configuration map whose values give each setting
// its type. Variables for settings in the template are converted to that
// type, so string settings keep digits as written. Settings missing from
// the template fall back to parseValue.
func (l *EnvLoader) SetTemplate(template map[string]any) {
	l.template = template
}

// envToPath converts PAD_EDITOR_WORD_MODIFIER to editor.word_modifier.
// Variables without a setting part map to nothing.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, setting, ok := strings.Cut(name, "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return section + "." + setting
}

// convert turns the raw value of path into the template's type for it.
func (l *EnvLoader) convert(path, s string) (any, error) {
	switch lookupPath(l.template, path).(type) {
	case string:
		return s, nil
	case int64, int:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return i, nil
	case bool:
		b, ok := parseBool(s)
		if !ok {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return b, nil
	case float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return f, nil
	}
	return l.parseValue(s), nil
}

// parseBool accepts the usual spellings plus yes/no and on/off.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// lookupPath returns the value at a dot-separated path, or nil.
func lookupPath(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current[parts[len(parts)-1]]
}

// parseValue guesses a type for values of settings without a template.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if b, ok := parseBool(s); ok {
		return b
	}

	// Only with a decimal point, to avoid misreading ints
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	// Navigate/create intermediate maps
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
