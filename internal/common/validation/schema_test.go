package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["jobId"],
	"properties": {
		"jobId": {"type": "integer", "minimum": 1},
		"plan": {"type": "string", "enum": ["FAMILY_FREE", "FAMILY_PLUS"]}
	}
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{"valid", `{"jobId": 4, "plan": "FAMILY_FREE"}`, true, ""},
		{"missing required", `{"plan": "FAMILY_FREE"}`, false, "jobId"},
		{"below minimum", `{"jobId": 0}`, false, "jobId"},
		{"wrong type", `{"jobId": "4"}`, false, "jobId"},
		{"enum violation", `{"jobId": 4, "plan": "GOLD"}`, false, "plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				assert.True(t, res.HasErrors(tt.wantField), res.Error())
				assert.NotEmpty(t, res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_MalformedDocument(t *testing.T) {
	s := MustCompile(testSchema)
	_, err := s.Validate(`{not json`)
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": "object", "minimum": "one"}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{`) })
}
