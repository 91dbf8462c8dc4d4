package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	t.Parallel()

	cfg := PageSizeConfig{Default: 20, Max: 100}
	cases := []struct {
		name  string
		value int
		want  int
	}{
		{"zero uses default", 0, 20},
		{"negative uses default", -5, 20},
		{"within range passes through", 42, 42},
		{"above max clamps", 500, 100},
	}
	for _, tc := range cases {
		if got := ClampPageSize(tc.value, cfg); got != tc.want {
			t.Fatalf("%s: ClampPageSize(%d) = %d, want %d", tc.name, tc.value, got, tc.want)
		}
	}
}

func TestClampPageSizeNoDefaults(t *testing.T) {
	t.Parallel()

	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestNormalizeAndOffset(t *testing.T) {
	t.Parallel()

	cfg := PageSizeConfig{Default: 20, Max: 100}

	req := Normalize(-3, 10, cfg)
	if req.Page != 0 {
		t.Fatalf("negative page normalized to %d, want 0", req.Page)
	}

	req = Normalize(2, 25, cfg)
	if req.Offset() != 50 {
		t.Fatalf("Offset = %d, want 50", req.Offset())
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int64
		size  int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{7, 0, 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
