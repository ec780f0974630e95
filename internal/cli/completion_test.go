package cli

import (
	"reflect"
	"testing"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/session"
)

func TestDraftCompletions(t *testing.T) {
	a := session.NewDraft(diagram.Diagram{Shapes: []diagram.Shape{{ID: "1", Kind: diagram.KindCircle}}}, 0)
	a.ID = "aa11"
	a.Name = "login.drawio"
	b := session.NewDraft(diagram.Diagram{}, 0)
	b.ID = "ab22"
	c := session.NewDraft(diagram.Diagram{}, 0)
	c.ID = "cc33"
	drafts := []*session.Draft{a, b, c}

	tests := []struct {
		name    string
		exclude []string
		prefix  string
		want    []string
	}{
		{"all", nil, "", []string{"aa11\tlogin.drawio, 1 shapes, 0 edges", "ab22\t0 shapes, 0 edges", "cc33\t0 shapes, 0 edges"}},
		{"prefix", nil, "a", []string{"aa11\tlogin.drawio, 1 shapes, 0 edges", "ab22\t0 shapes, 0 edges"}},
		{"already given", []string{"aa11"}, "a", []string{"ab22\t0 shapes, 0 edges"}},
		{"no match", nil, "zz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := draftCompletions(drafts, tt.exclude, tt.prefix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("draftCompletions = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCompletions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg", "png", "pdf", "dot", "json"}},
		{"p", []string{"png", "pdf"}},
		{"svg,", []string{"svg,png", "svg,pdf", "svg,dot", "svg,json"}},
		{"svg,png,p", []string{"svg,png,pdf"}},
		{"x", nil},
	}
	for _, tt := range tests {
		if got := formatCompletions(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("formatCompletions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
