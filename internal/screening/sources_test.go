package screening

import (
	"reflect"
	"testing"
)

func TestMergeSourcesDedupesByURI(t *testing.T) {
	var dst ReportSources
	add := ReportSources{
		Web: []ReportSource{
			{Title: "A", URI: "https://a.example"},
			{Title: "A again", URI: "https://a.example"},
			{Title: "no uri"},
			{Title: "B", URI: "https://b.example"},
		},
		Maps: []ReportSource{{Title: "Map View", URI: "https://maps.example/1"}},
	}

	MergeSources(&dst, add)
	want := ReportSources{
		Web: []ReportSource{
			{Title: "A", URI: "https://a.example"},
			{Title: "B", URI: "https://b.example"},
		},
		Maps: []ReportSource{{Title: "Map View", URI: "https://maps.example/1"}},
	}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("unexpected merge result: %+v", dst)
	}

	MergeSources(&dst, add)
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("merge is not idempotent: %+v", dst)
	}
}

func TestMergeSourcesEmptyIsNonNil(t *testing.T) {
	var dst ReportSources
	MergeSources(&dst, ReportSources{})
	if dst.Web == nil || dst.Maps == nil {
		t.Fatal("expected non-nil empty slices")
	}
}
