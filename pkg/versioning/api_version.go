// Package versioning parses the API version a client asks for.
package versioning

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is the request and response header carrying the API version
const Header = "X-API-Version"

// Current is the version this server implements
var Current = APIVersion{Major: 1, Minor: 0}

type APIVersion struct {
	Major int
	Minor int
}

func (v APIVersion) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Supports reports whether a server at v can answer a client asking for
// requested: same major, requested minor not newer.
func (v APIVersion) Supports(requested APIVersion) bool {
	return requested.Major == v.Major && requested.Minor <= v.Minor
}

// ParseVersion "v1.2" -> APIVersion{1, 2}. An empty header means Current.
func ParseVersion(header string) (APIVersion, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Current, nil
	}

	clean := strings.TrimPrefix(strings.ToLower(header), "v")
	parts := strings.Split(clean, ".")
	if len(parts) > 2 {
		return APIVersion{}, fmt.Errorf("invalid API version %q", header)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return APIVersion{}, fmt.Errorf("invalid API version %q", header)
	}
	minor := 0
	if len(parts) == 2 {
		if minor, err = strconv.Atoi(parts[1]); err != nil || minor < 0 {
			return APIVersion{}, fmt.Errorf("invalid API version %q", header)
		}
	}
	return APIVersion{Major: major, Minor: minor}, nil
}
