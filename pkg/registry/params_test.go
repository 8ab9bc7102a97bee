package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTypedValues(t *testing.T) {
	specs := []ParamSpec{
		{Name: "targets", Type: ParamList, Required: true},
		{Name: "max_workers", Type: ParamInteger, Default: "5"},
		{Name: "timeout", Type: ParamFloat, Default: "30"},
		{Name: "config_mode", Type: ParamBoolean, Default: "false"},
		{Name: "vendor", Type: ParamChoice, Choices: []string{"cisco_ios", "juniper"}, Default: "cisco_ios"},
		{Name: "comment", Type: ParamText},
	}

	values, err := Resolve(specs, map[string]string{
		"targets":     "10.0.0.1, 10.0.0.2,,10.0.0.3",
		"config_mode": "true",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, values.Strings("targets"))
	assert.Equal(t, 5, values.Int("max_workers"))
	assert.InDelta(t, 30.0, values.Float("timeout"), 0.001)
	assert.True(t, values.Bool("config_mode"))
	assert.Equal(t, "cisco_ios", values.String("vendor"))

	// Optional text param without default is simply absent.
	_, ok := values["comment"]
	assert.False(t, ok)
	assert.Empty(t, values.String("comment"))
}

func TestResolveMissingRequired(t *testing.T) {
	specs := []ParamSpec{{Name: "targets", Type: ParamList, Required: true}}

	_, err := Resolve(specs, map[string]string{})
	require.ErrorIs(t, err, ErrMissingParam)
}

func TestResolveUnknownParam(t *testing.T) {
	specs := []ParamSpec{{Name: "targets", Type: ParamList}}

	_, err := Resolve(specs, map[string]string{"tragets": "10.0.0.1"})
	require.ErrorIs(t, err, ErrUnknownParam)
}

func TestResolveInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		spec ParamSpec
		raw  string
	}{
		{"bad integer", ParamSpec{Name: "n", Type: ParamInteger}, "five"},
		{"bad float", ParamSpec{Name: "f", Type: ParamFloat}, "fast"},
		{"bad boolean", ParamSpec{Name: "b", Type: ParamBoolean}, "yep"},
		{"bad choice", ParamSpec{Name: "c", Type: ParamChoice, Choices: []string{"a", "b"}}, "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve([]ParamSpec{tt.spec}, map[string]string{tt.spec.Name: tt.raw})
			require.ErrorIs(t, err, ErrInvalidParam)
		})
	}
}

func TestParamTypeString(t *testing.T) {
	assert.Equal(t, "text", ParamText.String())
	assert.Equal(t, "integer", ParamInteger.String())
	assert.Equal(t, "float", ParamFloat.String())
	assert.Equal(t, "boolean", ParamBoolean.String())
	assert.Equal(t, "choice", ParamChoice.String())
	assert.Equal(t, "list", ParamList.String())
}
