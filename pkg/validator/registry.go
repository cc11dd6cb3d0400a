// Package validator provides a pluggable registry of named value validators
// used by the field type registry for format and constraint checks.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// Names of the built-in validators
const (
	Email  = "email"
	URL    = "url"
	Phone  = "phone"
	Regex  = "regex"
	Length = "length"
	Range  = "range"
)

// ValidatorFunc is the signature for validator functions
// Takes a value and optional configuration, returns an error if validation fails
type ValidatorFunc func(value interface{}, config map[string]interface{}) error

// Registry holds registered validators
type Registry struct {
	validators map[string]ValidatorFunc
	patterns   map[string]*regexp.Regexp
	mu         sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once

	nonDigits = regexp.MustCompile(`[^\d]`)
)

// GetRegistry returns the singleton validator registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with the built-in validators registered
func NewRegistry() *Registry {
	r := &Registry{
		validators: make(map[string]ValidatorFunc),
		patterns:   make(map[string]*regexp.Regexp),
	}
	r.registerBuiltins()
	return r
}

// Register adds a validator to the registry
func (r *Registry) Register(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Get returns a validator by name
func (r *Registry) Get(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Validate runs a named validator
func (r *Registry) Validate(name string, value interface{}, config map[string]interface{}) error {
	fn, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("validator '%s' not found", name)
	}
	return fn(value, config)
}

// List returns all registered validator names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	return names
}

// compile caches compiled patterns; field constraints are evaluated on every record write
func (r *Registry) compile(pattern string) (*regexp.Regexp, error) {
	r.mu.RLock()
	re, ok := r.patterns[pattern]
	r.mu.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.patterns[pattern] = re
	r.mu.Unlock()
	return re, nil
}

// registerBuiltins registers all built-in validators
func (r *Registry) registerBuiltins() {
	r.Register(Email, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil // Empty values handled by required check
		}
		if !govalidator.IsEmail(str) {
			return fmt.Errorf("invalid email format")
		}
		return nil
	})

	r.Register(URL, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if !strings.HasPrefix(str, "http://") && !strings.HasPrefix(str, "https://") {
			return fmt.Errorf("URL must start with http:// or https://")
		}
		if !govalidator.IsURL(str) {
			return fmt.Errorf("invalid URL format")
		}
		return nil
	})

	// Digits, spaces, dashes, parentheses and a leading plus
	r.Register(Phone, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		if strings.ContainsAny(str, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			return fmt.Errorf("phone number may only contain digits and punctuation")
		}
		cleaned := nonDigits.ReplaceAllString(str, "")
		if len(cleaned) < 7 || len(cleaned) > 15 {
			return fmt.Errorf("phone number must have 7-15 digits")
		}
		return nil
	})

	r.Register(Regex, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || str == "" {
			return nil
		}
		pattern, _ := config["pattern"].(string)
		if pattern == "" {
			return nil
		}
		re, err := r.compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %v", err)
		}
		if !re.MatchString(str) {
			if msg, ok := config["message"].(string); ok && msg != "" {
				return fmt.Errorf("%s", msg)
			}
			return fmt.Errorf("value does not match required pattern")
		}
		return nil
	})

	// Length counts runes, not bytes
	r.Register(Length, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		length := utf8.RuneCountInString(str)
		if min, ok := utils.ToFloat(config["min"]); ok && length < int(min) {
			return fmt.Errorf("must be at least %d characters", int(min))
		}
		if max, ok := utils.ToFloat(config["max"]); ok && length > int(max) {
			return fmt.Errorf("must be at most %d characters", int(max))
		}
		return nil
	})

	r.Register(Range, func(value interface{}, config map[string]interface{}) error {
		if _, isString := value.(string); isString {
			return nil
		}
		num, ok := utils.ToFloat(value)
		if !ok {
			return nil
		}
		if min, ok := utils.ToFloat(config["min"]); ok && num < min {
			return fmt.Errorf("must be at least %s", formatNumber(min))
		}
		if max, ok := utils.ToFloat(config["max"]); ok && num > max {
			return fmt.Errorf("must be at most %s", formatNumber(max))
		}
		return nil
	})
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

// Package-level convenience functions

// Register adds a validator to the default registry
func Register(name string, fn ValidatorFunc) {
	GetRegistry().Register(name, fn)
}

// Validate runs a named validator using the default registry
func Validate(name string, value interface{}, config map[string]interface{}) error {
	return GetRegistry().Validate(name, value, config)
}
