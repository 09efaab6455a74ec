package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "bare array",
			input:  `[{"name":"a"}]`,
			want:   `[{"name":"a"}]`,
			wantOK: true,
		},
		{
			name:   "goals wrapper",
			input:  `{"goals":[{"name":"a"}]}`,
			want:   `{"goals":[{"name":"a"}]}`,
			wantOK: true,
		},
		{
			name:   "chatter around payload",
			input:  "Sure! Here are your goals:\n{\"goals\":[{\"name\":\"a\"}]}\nHope that helps!",
			want:   `{"goals":[{"name":"a"}]}`,
			wantOK: true,
		},
		{
			name:   "fenced code block",
			input:  "```json\n[{\"name\":\"a\"}]\n```",
			want:   `[{"name":"a"}]`,
			wantOK: true,
		},
		{
			name:   "plain conversation",
			input:  "You should start by practicing scales every day.",
			wantOK: false,
		},
		{
			name:   "empty response",
			input:  "",
			wantOK: false,
		},
		{
			name:   "unterminated brace",
			input:  "here { we go",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := locateJSON(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeRecordsBareArray(t *testing.T) {
	records, err := decodeRecords(`[{"name":"a"},{"name":"b"}]`, "raw")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDecodeRecordsWrapper(t *testing.T) {
	records, err := decodeRecords(`{"goals":[{"name":"a"}]}`, "raw")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDecodeRecordsEmptyGoals(t *testing.T) {
	records, err := decodeRecords(`{"goals":[]}`, "raw")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeRecordsWrongShape(t *testing.T) {
	_, err := decodeRecords(`{"name":"a"}`, "the raw text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "the raw text", perr.Raw)
}

func TestDecodeRecordsBrokenJSON(t *testing.T) {
	_, err := decodeRecords(`[{"name": }]`, "raw")
	assert.ErrorIs(t, err, ErrParse)
}

func TestCandidateDependsOnAlias(t *testing.T) {
	deps := []string{"x"}
	c := candidate{DependsOn: &deps}
	require.NotNil(t, c.deps())
	assert.Equal(t, []string{"x"}, *c.deps())

	// dependencies wins when both are present
	other := []string{"y"}
	c.Dependencies = &other
	assert.Equal(t, []string{"y"}, *c.deps())
}
