package version

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.1.0\n", "0.1.0"},
		{"  1.2.3  ", "1.2.3"},
		{"", "dev"},
		{"\n\t", "dev"},
	}
	for _, tt := range tests {
		if got := resolve(tt.in); got != tt.want {
			t.Errorf("resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	if Get() == "" {
		t.Error("expected a non-empty version")
	}
}
