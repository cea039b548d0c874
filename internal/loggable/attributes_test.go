package loggable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		method    Declared
		component Declared
		want      Attributes
	}{
		{
			name: "nothing declared",
			want: Defaults(),
		},
		{
			name:      "component debug, method unset",
			component: Declared{Debug: On},
			want: Attributes{
				PerformanceEnabled: true,
				DebugEnabled:       true,
				Signature:          SignatureNormal,
			},
		},
		{
			name:   "method debug, component unset",
			method: Declared{Debug: On},
			want: Attributes{
				PerformanceEnabled: true,
				DebugEnabled:       true,
				Signature:          SignatureNormal,
			},
		},
		{
			name:      "method loosens component",
			method:    Declared{Debug: Off, Perf: On},
			component: Declared{Debug: On, Perf: Off},
			want: Attributes{
				PerformanceEnabled: true,
				DebugEnabled:       false,
				Signature:          SignatureNormal,
			},
		},
		{
			name:      "service and signature",
			method:    Declared{Signature: SignatureLong},
			component: Declared{Service: "contractService", Signature: SignatureShort, ShowArgValues: On},
			want: Attributes{
				Service:            "contractService",
				PerformanceEnabled: true,
				ShowArgValues:      true,
				Signature:          SignatureLong,
			},
		},
		{
			name:      "method service wins",
			method:    Declared{Service: "lookup"},
			component: Declared{Service: "contractService"},
			want: Attributes{
				Service:            "lookup",
				PerformanceEnabled: true,
				Signature:          SignatureNormal,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.method, tt.component))
			// deterministic
			assert.Equal(t, Resolve(tt.method, tt.component), Resolve(tt.method, tt.component))
		})
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "", d.Service)
	assert.True(t, d.PerformanceEnabled)
	assert.False(t, d.DebugEnabled)
	assert.False(t, d.ShowArgValues)
	assert.Equal(t, SignatureNormal, d.Signature)
}

func TestParseSignatureStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    SignatureStyle
		wantErr bool
	}{
		{in: "", want: SignatureUnset},
		{in: "short", want: SignatureShort},
		{in: "NORMAL", want: SignatureNormal},
		{in: " long ", want: SignatureLong},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignatureStyle(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToggleOf(t *testing.T) {
	assert.Equal(t, On, Of(true))
	assert.Equal(t, Off, Of(false))
	assert.True(t, Unset.or(true))
	assert.False(t, Off.or(true))
}
