package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Classification
	}{
		{"unauthorized evicts key", 401, Classification{Permanent: true, EvictKey: true}},
		{"forbidden evicts key", 403, Classification{Permanent: true, EvictKey: true}},
		{"not found drops model", 404, Classification{Permanent: true, DropModel: true}},
		{"bad request drops model", 400, Classification{Permanent: true, DropModel: true}},
		{"payload too large drops model", 413, Classification{Permanent: true, DropModel: true}},
		{"rate limit retries", 429, Classification{}},
		{"server error retries", 500, Classification{}},
		{"bad gateway retries", 502, Classification{}},
		{"service unavailable retries", 503, Classification{}},
		{"network (no status) retries", 0, Classification{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status))
		})
	}
}
