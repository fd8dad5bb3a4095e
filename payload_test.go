package delivery

import (
	"errors"
	"strings"
	"testing"
)

func TestResourceTypeValidate(t *testing.T) {
	cases := []struct {
		name     string
		resource ResourceType
		valid    bool
	}{
		{name: "errors", resource: ResourceErrors, valid: true},
		{name: "sessions", resource: ResourceSessions, valid: true},
		{name: "dashed", resource: "session-reports", valid: true},
		{name: "digits", resource: "errors2", valid: true},
		{name: "leading digit", resource: "2errors", valid: true},
		{name: "empty", resource: ""},
		{name: "uppercase", resource: "Errors"},
		{name: "underscore", resource: "error_reports"},
		{name: "leading dash", resource: "-errors"},
		{name: "space", resource: "error reports"},
		{name: "non-ascii", resource: "erreurs-réseau"},
		{name: "too long", resource: ResourceType(strings.Repeat("a", 65))},
		{name: "max length", resource: ResourceType(strings.Repeat("a", 64)), valid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.resource.Validate()
			if tc.valid && err != nil {
				t.Fatalf("expected %q to be valid, got %v", tc.resource, err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidResource) {
				t.Fatalf("expected ErrInvalidResource for %q, got %v", tc.resource, err)
			}
		})
	}
}
