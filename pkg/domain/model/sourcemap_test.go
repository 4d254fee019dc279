package model_test

import (
	"testing"

	"github.com/bonniernews/sentry-sync/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestParseSourceMap(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "sources in document order",
			raw:  `{"version":3,"sources":["c.js","a.js","b.js"],"mappings":""}`,
			want: []string{"c.js", "a.js", "b.js"},
		},
		{
			name: "empty sources",
			raw:  `{"version":3,"sources":[]}`,
			want: []string{},
		},
		{
			name:    "missing sources",
			raw:     `{"version":3}`,
			wantErr: true,
		},
		{
			name:    "null sources",
			raw:     `{"version":3,"sources":null}`,
			wantErr: true,
		},
		{
			name:    "null document",
			raw:     `null`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			raw:     `//# sourceMappingURL=app.js.map`,
			wantErr: true,
		},
		{
			name:    "non string source",
			raw:     `{"sources":[1]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := model.ParseSourceMap("app.js.map", []byte(tt.raw))
			if tt.wantErr {
				gt.Error(t, err)
				gt.Value(t, sm).Nil()
				return
			}

			gt.NoError(t, err)
			gt.Value(t, sm.Path).Equal("app.js.map")
			gt.Value(t, string(sm.Raw)).Equal(tt.raw)
			gt.Value(t, sm.Sources).Equal(tt.want)
		})
	}
}

func TestCollectSources(t *testing.T) {
	maps := []*model.SourceMap{
		{Path: "a.map", Sources: []string{"x.js", "shared.js"}},
		{Path: "empty.map"},
		{Path: "b.map", Sources: []string{"shared.js", "y.js"}},
	}

	gt.Value(t, model.CollectSources(maps)).Equal([]string{"x.js", "shared.js", "shared.js", "y.js"})
	gt.Number(t, len(model.CollectSources(nil))).Equal(0)
}
