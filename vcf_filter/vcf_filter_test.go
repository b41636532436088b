package main

import (
	"testing"

	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

func mustAssessor(t *testing.T, config *utils.Config) *assessor {
	t.Helper()
	a, err := newAssessor(config)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAssessorStatus(t *testing.T) {
	for _, tc := range []struct {
		name   string
		config utils.Config
		m      metrics
		want   string
	}{
		{
			name:   "all disabled passes",
			config: utils.Config{},
			m:      metrics{fwdCovg: 1, revCovg: 0, gaps: 1, gtConf: 0},
			want:   "PASS",
		},
		{
			name:   "low coverage",
			config: utils.Config{MinCovg: 10},
			m:      metrics{fwdCovg: 2, revCovg: 3},
			want:   "ld",
		},
		{
			name:   "high coverage",
			config: utils.Config{MaxCovg: 100},
			m:      metrics{fwdCovg: 80, revCovg: 75},
			want:   "hd",
		},
		{
			name:   "coverage in range passes",
			config: utils.Config{MinCovg: 10, MaxCovg: 100},
			m:      metrics{fwdCovg: 20, revCovg: 25},
			want:   "PASS",
		},
		{
			name:   "strand bias",
			config: utils.Config{MinStrandBias: 25},
			m:      metrics{fwdCovg: 1, revCovg: 99},
			want:   "sb",
		},
		{
			name:   "balanced strands pass",
			config: utils.Config{MinStrandBias: 25},
			m:      metrics{fwdCovg: 40, revCovg: 60},
			want:   "PASS",
		},
		{
			name:   "zero coverage counts as balanced",
			config: utils.Config{MinStrandBias: 25},
			m:      metrics{},
			want:   "PASS",
		},
		{
			name:   "high gaps",
			config: utils.Config{MaxGaps: 0.5},
			m:      metrics{gaps: 0.75},
			want:   "hg",
		},
		{
			name:   "low genotype confidence",
			config: utils.Config{MinGtConf: 5},
			m:      metrics{gtConf: 3},
			want:   "lgc",
		},
		{
			name:   "multiple failures in tag order",
			config: utils.Config{MinCovg: 10, MinGtConf: 5, MinStrandBias: 25, MaxGaps: 0.5},
			m:      metrics{fwdCovg: 0, revCovg: 4, gaps: 0.9, gtConf: 1},
			want:   "ld;lgc;sb;hg",
		},
	} {
		a := mustAssessor(t, &tc.config)
		if got := a.status(tc.m); got != tc.want {
			t.Errorf("%s: status = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNewAssessorRejectsInvertedCovg(t *testing.T) {
	if _, err := newAssessor(&utils.Config{MinCovg: 100, MaxCovg: 10}); err == nil {
		t.Error("expected error for MinCovg > MaxCovg")
	}
}

func TestMergeFilter(t *testing.T) {
	for _, tc := range []struct {
		name      string
		existing  string
		status    string
		overwrite bool
		want      string
	}{
		{name: "empty replaced", existing: "", status: "ld", want: "ld"},
		{name: "missing replaced", existing: ".", status: "ld", want: "ld"},
		{name: "pass replaced", existing: "PASS", status: "ld", want: "ld"},
		{name: "existing tags kept", existing: "b1", status: "ld;sb", want: "b1;ld;sb"},
		{name: "trailing semicolon trimmed", existing: "b1;", status: "hg", want: "b1;hg"},
		{name: "pass clears existing tags", existing: "b1", status: "PASS", want: "PASS"},
		{name: "overwrite discards existing", existing: "b1", status: "ld", overwrite: true, want: "ld"},
	} {
		if got := mergeFilter(tc.existing, tc.status, tc.overwrite); got != tc.want {
			t.Errorf("%s: mergeFilter = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCalledAlleleIndex(t *testing.T) {
	for _, tc := range []struct {
		name    string
		gt      []int
		want    int
		wantErr bool
	}{
		{name: "null", gt: []int{-1, -1}, want: 0},
		{name: "half null", gt: []int{-1}, want: 0},
		{name: "hom ref", gt: []int{0, 0}, want: 0},
		{name: "hom alt", gt: []int{1, 1}, want: 1},
		{name: "hom alt second", gt: []int{3, 3}, want: 3},
		{name: "haploid alt", gt: []int{2}, want: 2},
		{name: "alt with missing", gt: []int{1, -1}, want: 1},
		{name: "het", gt: []int{1, 2}, wantErr: true},
		{name: "het with ref", gt: []int{1, 0}, wantErr: true},
	} {
		got, err := calledAlleleIndex(tc.gt)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: index = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	fields := map[string]string{
		"MEAN_FWD_COVG": "3,40",
		"GT_CONF":       "262.6",
	}

	v, err := formatValue(fields, "MEAN_FWD_COVG", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 40 {
		t.Errorf("value = %g, want 40", v)
	}

	if _, err := formatValue(fields, "GAPS", 0); err == nil {
		t.Error("expected error for missing field")
	}
	if _, err := formatValue(fields, "MEAN_FWD_COVG", 5); err == nil {
		t.Error("expected error for out of range index")
	}
}
