package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		service string
		env     string
		extra   string
		want    string
	}{
		{"all empty", "", "", "", "*"},
		{"service only", "checkout", "", "", "service:checkout"},
		{"service and env", "checkout", "prd", "", "service:checkout env:prd"},
		{"env only", "", "prd", "", "env:prd"},
		{"free text only", "", "", "@http.status_code:500", "@http.status_code:500"},
		{"everything", "checkout", "prd", "cluster:main", "service:checkout env:prd cluster:main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.service, tt.env, tt.extra))
		})
	}
}

func TestBuildError(t *testing.T) {
	assert.Equal(t,
		"(status:error OR @error.message:* OR @error.type:*)",
		BuildError("", "", ""))
	assert.Equal(t,
		"service:checkout env:prd (status:error OR @error.message:* OR @error.type:*)",
		BuildError("checkout", "prd", ""))
}

func TestClusterTerm(t *testing.T) {
	assert.Equal(t, "", ClusterTerm(""))
	assert.Equal(t, "cluster:main", ClusterTerm("main"))
}
