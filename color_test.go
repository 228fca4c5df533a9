package vx

import "testing"

func TestColorDownsample(t *testing.T) {
	rgb := RGB(255, 0, 0)
	if got := rgb.Downsample(Capabilities{RGB: true}); got != rgb {
		t.Fatalf("Downsample with RGB capability should pass through unchanged, got %+v", got)
	}
	got := rgb.Downsample(Capabilities{RGB: false})
	if got.Kind != ColorIndexed {
		t.Fatalf("Downsample without RGB capability should produce an indexed color, got %+v", got)
	}
}

func TestColorSGR(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want string
	}{
		{"default", Default, "39"},
		{"indexed", Indexed(5), "38;5;5"},
		{"rgb", RGB(10, 20, 30), "38;2;10;20;30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.SGR(38); got != tt.want {
				t.Errorf("SGR(38) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNearest256Endpoints(t *testing.T) {
	if got := nearest256(0, 0, 0); got < 16 {
		t.Errorf("nearest256(black) = %d, want >= 16", got)
	}
	if got := nearest256(255, 255, 255); got < 16 {
		t.Errorf("nearest256(white) = %d, want >= 16", got)
	}
}
