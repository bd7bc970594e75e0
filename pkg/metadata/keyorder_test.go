package metadata_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karlo0/bqdc/pkg/metadata"
)

func TestResolveKeyOrder(t *testing.T) {
	templateKeys := []string{"table_description", "table_data_source", "table_gcp_project"}

	tests := []struct {
		name     string
		declared []string
		want     []string
	}{
		{
			name:     "empty declared keeps native order",
			declared: nil,
			want:     []string{"table_description", "table_data_source", "table_gcp_project"},
		},
		{
			name:     "declared keys lead",
			declared: []string{"table_gcp_project"},
			want:     []string{"table_gcp_project", "table_description", "table_data_source"},
		},
		{
			name:     "full declared order wins",
			declared: []string{"table_data_source", "table_gcp_project", "table_description"},
			want:     []string{"table_data_source", "table_gcp_project", "table_description"},
		},
		{
			name:     "unknown declared keys dropped",
			declared: []string{"bogus", "table_description", "also_bogus"},
			want:     []string{"table_description", "table_data_source", "table_gcp_project"},
		},
		{
			name:     "duplicate declared keys collapse",
			declared: []string{"table_description", "table_description"},
			want:     []string{"table_description", "table_data_source", "table_gcp_project"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metadata.ResolveKeyOrder(tt.declared, templateKeys)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The output must always be a permutation of the template key set,
// whatever the caller declares.
func TestResolveKeyOrderIsPermutation(t *testing.T) {
	templateKeys := []string{"a", "b", "c", "d"}
	declarations := [][]string{
		nil,
		{},
		{"d"},
		{"x", "y", "z"},
		{"c", "a", "c", "nope", "b", "d", "a"},
	}
	for _, declared := range declarations {
		got := metadata.ResolveKeyOrder(declared, templateKeys)
		sorted := append([]string(nil), got...)
		sort.Strings(sorted)
		assert.Equal(t, []string{"a", "b", "c", "d"}, sorted, "declared %v", declared)
	}
}

func TestTemplateKeyOrder(t *testing.T) {
	tpl := &metadata.Template{
		Name: "projects/p/locations/l/tagTemplates/table_meta",
		Keys: []string{"table_description", "table_data_source"},
		Types: map[string]string{
			"table_description": "STRING",
			"table_data_source": "STRING",
		},
	}
	assert.Equal(t,
		[]string{"table_data_source", "table_description"},
		tpl.KeyOrder([]string{"table_data_source"}))
}
