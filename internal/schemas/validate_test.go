package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOracleEnvelope_Valid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "compare with samples and metrics",
			data: `{"kind":"compare","requestGeneration":3,"samples":[-0.5,0.2],"metrics":{"survival":0.9,"spurt":0.8,"finalLeg":0.1}}`,
		},
		{
			name: "chart with per-skill means",
			data: `{"kind":"chart","requestGeneration":0,"perSkillMeans":{"s1":{"mean":0.2,"samples":100}}}`,
		},
		{
			name: "skillmeta",
			data: `{"kind":"skillmeta","requestGeneration":1,"perSkillMeta":{"s1":{"isRecovery":true}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateOracleEnvelope([]byte(tt.data)))
		})
	}
}

func TestValidateOracleEnvelope_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing kind", data: `{"requestGeneration":1}`},
		{name: "unknown kind", data: `{"kind":"race","requestGeneration":1}`},
		{name: "missing generation", data: `{"kind":"compare"}`},
		{name: "metrics out of range", data: `{"kind":"compare","requestGeneration":1,"metrics":{"survival":1.5}}`},
		{name: "mean missing", data: `{"kind":"chart","requestGeneration":1,"perSkillMeans":{"s1":{"samples":10}}}`},
		{name: "not json", data: `not json at all`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateOracleEnvelope([]byte(tt.data)))
		})
	}
}

func TestValidationError_ListsFields(t *testing.T) {
	err := ValidateOracleEnvelope([]byte(`{"requestGeneration":1}`))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
	assert.Contains(t, verr.Error(), "kind")
}
