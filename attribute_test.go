package fabrik

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAttribute_ResolveReturnsStoredValue(t *testing.T) {
	testCases := []struct {
		name  string
		value any
	}{
		{name: "string", value: "Billy Idol"},
		{name: "nil", value: nil},
		{name: "no value sentinel", value: NoValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			attr := NewStatic("field", tc.value)

			got, err := attr.Resolve(nil)
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestDynamicAttribute_PropagatesGeneratorError(t *testing.T) {
	boom := errors.New("boom")
	attr := NewDynamic("field", func(*BuildContext) (any, error) {
		return nil, boom
	})

	_, err := attr.Resolve(nil)
	require.ErrorIs(t, err, boom)
}

func TestNewAssociation_TargetAndOptions(t *testing.T) {
	testCases := []struct {
		name        string
		opts        Options
		wantTarget  string
		wantForward Options
	}{
		{
			name:        "defaults to attribute name",
			opts:        nil,
			wantTarget:  "author",
			wantForward: Options{},
		},
		{
			name:        "factory key consumed and stripped",
			opts:        Options{"factory": "user", "role": "admin"},
			wantTarget:  "user",
			wantForward: Options{"role": "admin"},
		},
		{
			name:        "non-string factory value ignored",
			opts:        Options{"factory": 7},
			wantTarget:  "author",
			wantForward: Options{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			attr := NewAssociation("author", tc.opts)

			assert.Equal(t, "author", attr.Name())
			assert.Equal(t, tc.wantTarget, attr.FactoryName())
			if diff := cmp.Diff(tc.wantForward, attr.ForwardedOptions()); diff != "" {
				t.Errorf("forwarded options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
