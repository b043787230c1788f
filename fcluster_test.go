package clusterkit

import (
	"errors"
	"slices"
	"testing"
)

// completeLine is the complete-linkage matrix of lineData (0, 1, 3, 7).
var completeLine = [][4]float64{{0, 1, 1, 2}, {2, 4, 3, 3}, {3, 5, 7, 4}}

func TestFlatClusters_MaxClust(t *testing.T) {
	tests := []struct {
		k    float64
		want []int
	}{
		{1, []int{0, 0, 0, 0}},
		// Point 3 is the left child of the root, so it is numbered first.
		{2, []int{1, 1, 1, 0}},
		{3, []int{2, 2, 1, 0}},
		{4, []int{2, 3, 1, 0}},
		{10, []int{2, 3, 1, 0}},
	}
	for _, tt := range tests {
		got, err := FlatClusters(completeLine, tt.k, CriterionMaxClust)
		if err != nil {
			t.Fatalf("k=%v: unexpected error: %v", tt.k, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("k=%v: labels = %v, want %v", tt.k, got, tt.want)
		}
	}
}

func TestFlatClusters_Distance(t *testing.T) {
	tests := []struct {
		t    float64
		want []int
	}{
		{0.5, []int{2, 3, 1, 0}},
		{1, []int{2, 2, 1, 0}},
		{1.5, []int{2, 2, 1, 0}},
		{3, []int{1, 1, 1, 0}},
		{7, []int{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		got, err := FlatClusters(completeLine, tt.t, CriterionDistance)
		if err != nil {
			t.Fatalf("t=%v: unexpected error: %v", tt.t, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("t=%v: labels = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestFlatClusters_Inversion(t *testing.T) {
	// The second merge happens below the first, as centroid linkage allows.
	z := [][4]float64{{0, 1, 2, 2}, {2, 3, 1.5, 3}}
	got, err := FlatClusters(z, 1.8, CriterionDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The subtree max distance of the root is 2, so it is not a cluster at 1.8.
	if want := []int{1, 2, 0}; !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestFlatClusters_Errors(t *testing.T) {
	if _, err := FlatClusters(completeLine, 2.5, CriterionMaxClust); !errors.Is(err, ErrInvalidK) {
		t.Errorf("fractional k: expected ErrInvalidK, got %v", err)
	}
	if _, err := FlatClusters(completeLine, 0, CriterionMaxClust); !errors.Is(err, ErrInvalidK) {
		t.Errorf("k=0: expected ErrInvalidK, got %v", err)
	}
	if _, err := FlatClusters(completeLine, 2, "inconsistent"); !errors.Is(err, ErrUnknownCriterion) {
		t.Errorf("expected ErrUnknownCriterion, got %v", err)
	}

	bad := [][][4]float64{
		nil,
		{{0, 0, 1, 2}},
		{{0, 5, 1, 2}},
		{{0, 1, -1, 2}},
		{{0, 1.5, 1, 2}},
	}
	for _, z := range bad {
		if _, err := FlatClusters(z, 1, CriterionMaxClust); !errors.Is(err, ErrInvalidLinkage) {
			t.Errorf("linkage %v: expected ErrInvalidLinkage, got %v", z, err)
		}
	}
}

func TestFlatClusters_MaxClustOnBlobs(t *testing.T) {
	z, err := Linkage(threeBlobs(), LinkageWard, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels, err := FlatClusters(z, 3, CriterionMaxClust)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameGrouping(labels, 5) {
		t.Errorf("labels %v do not match the blobs", labels)
	}
}

func TestDendrogram(t *testing.T) {
	layout, err := Dendrogram(completeLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{3, 2, 0, 1}; !slices.Equal(layout.Leaves, want) {
		t.Errorf("leaves = %v, want %v", layout.Leaves, want)
	}
	if layout.MaxHeight != 7 {
		t.Errorf("max height = %v, want 7", layout.MaxHeight)
	}
	if !almostEqual(layout.ColorThreshold, 4.9, floatTol) {
		t.Errorf("color threshold = %v, want 4.9", layout.ColorThreshold)
	}
	if layout.Groups != 1 {
		t.Errorf("groups = %d, want 1", layout.Groups)
	}

	want := []DendrogramLink{
		{X: [4]float64{25, 25, 35, 35}, Y: [4]float64{0, 1, 1, 0}, Row: 0, Group: 0},
		{X: [4]float64{15, 15, 30, 30}, Y: [4]float64{0, 3, 3, 1}, Row: 1, Group: 0},
		{X: [4]float64{5, 5, 22.5, 22.5}, Y: [4]float64{0, 7, 7, 3}, Row: 2, Group: -1},
	}
	if len(layout.Links) != len(want) {
		t.Fatalf("got %d links, want %d", len(layout.Links), len(want))
	}
	for i := range want {
		if layout.Links[i] != want[i] {
			t.Errorf("links[%d] = %+v, want %+v", i, layout.Links[i], want[i])
		}
	}
}

func TestDendrogram_GroupsPerBlob(t *testing.T) {
	z, err := Linkage(threeBlobs(), LinkageAverage, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layout, err := Dendrogram(z)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if layout.Groups != 3 {
		t.Errorf("groups = %d, want 3", layout.Groups)
	}
	if len(layout.Leaves) != 15 {
		t.Errorf("got %d leaves, want 15", len(layout.Leaves))
	}
	for _, l := range layout.Links {
		if l.Y[1] != l.Y[2] || l.Y[1] < l.Y[0] || l.Y[1] < l.Y[3] {
			t.Errorf("malformed link %+v", l)
		}
	}
}

func TestDendrogram_InvalidLinkage(t *testing.T) {
	if _, err := Dendrogram(nil); !errors.Is(err, ErrInvalidLinkage) {
		t.Errorf("expected ErrInvalidLinkage, got %v", err)
	}
}
