package colour

import (
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RGB
	}{
		{
			name:  "lowercase",
			input: "#1a2b3c",
			want:  RGB{R: 0x1a, G: 0x2b, B: 0x3c},
		},
		{
			name:  "uppercase",
			input: "#FF5733",
			want:  RGB{R: 0xff, G: 0x57, B: 0x33},
		},
		{
			name:  "mixed case",
			input: "#AbCdEf",
			want:  RGB{R: 0xab, G: 0xcd, B: 0xef},
		},
		{
			name:  "black",
			input: "#000000",
			want:  RGB{R: 0, G: 0, B: 0},
		},
		{
			name:  "white",
			input: "#ffffff",
			want:  RGB{R: 255, G: 255, B: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if err != nil {
				t.Fatalf("ParseHex(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHexInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing hash", input: "1a2b3c7"},
		{name: "three digit shorthand", input: "#abc"},
		{name: "too long", input: "#1a2b3c4d"},
		{name: "bad characters", input: "#1a2b3g"},
		{name: "hash only", input: "#"},
		{name: "whitespace", input: " #1a2b3c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHex(tt.input); err == nil {
				t.Errorf("ParseHex(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	tests := []string{"#000000", "#ffffff", "#1a2b3c", "#ff5733", "#AbCdEf", "#808080"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			rgb, err := ParseHex(input)
			if err != nil {
				t.Fatalf("ParseHex(%q) returned error: %v", input, err)
			}
			want := toLower(input)
			if got := rgb.Hex(); got != want {
				t.Errorf("round trip of %q = %q, want %q", input, got, want)
			}
		})
	}
}

func toLower(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c - 'A' + 'a'
		}
	}
	return string(out)
}

func TestParseHexList(t *testing.T) {
	colors, err := ParseHexList([]string{"#ff0000", "#00ff00"})
	if err != nil {
		t.Fatalf("ParseHexList returned error: %v", err)
	}
	if len(colors) != 2 {
		t.Fatalf("ParseHexList returned %d colours, want 2", len(colors))
	}
	if colors[0] != (RGB{R: 255}) || colors[1] != (RGB{G: 255}) {
		t.Errorf("ParseHexList = %+v", colors)
	}

	if _, err := ParseHexList([]string{"#ff0000", "bogus"}); err == nil {
		t.Error("ParseHexList accepted an invalid entry")
	}
}

func TestRGBHSV(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want HSV
	}{
		{
			name: "red",
			rgb:  RGB{R: 255, G: 0, B: 0},
			want: HSV{H: 0, S: 1, V: 1},
		},
		{
			name: "green",
			rgb:  RGB{R: 0, G: 255, B: 0},
			want: HSV{H: 120, S: 1, V: 1},
		},
		{
			name: "blue",
			rgb:  RGB{R: 0, G: 0, B: 255},
			want: HSV{H: 240, S: 1, V: 1},
		},
		{
			name: "black",
			rgb:  RGB{R: 0, G: 0, B: 0},
			want: HSV{H: 0, S: 0, V: 0},
		},
		{
			name: "white",
			rgb:  RGB{R: 255, G: 255, B: 255},
			want: HSV{H: 0, S: 0, V: 1},
		},
		{
			name: "mid grey",
			rgb:  RGB{R: 128, G: 128, B: 128},
			want: HSV{H: 0, S: 0, V: 128.0 / 255.0},
		},
	}

	const eps = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rgb.HSV()
			if math.Abs(got.H-tt.want.H) > eps || math.Abs(got.S-tt.want.S) > eps || math.Abs(got.V-tt.want.V) > eps {
				t.Errorf("HSV() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHSVRGBRoundTrip(t *testing.T) {
	colors := []RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
		{R: 31, G: 58, B: 95},
		{R: 201, G: 162, B: 39},
		{R: 128, G: 128, B: 128},
	}

	for _, c := range colors {
		t.Run(c.Hex(), func(t *testing.T) {
			got := c.HSV().RGB()
			if got != c {
				t.Errorf("HSV round trip of %+v = %+v", c, got)
			}
		})
	}
}

func TestSortByBrightness(t *testing.T) {
	colors := []RGB{
		{R: 255, G: 255, B: 255}, // V = 1
		{R: 0, G: 0, B: 0},       // V = 0
		{R: 128, G: 128, B: 128}, // V ~ 0.5
	}

	sorted := SortByBrightness(colors)
	want := []RGB{
		{R: 0, G: 0, B: 0},
		{R: 128, G: 128, B: 128},
		{R: 255, G: 255, B: 255},
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("position %d = %+v, want %+v", i, sorted[i], want[i])
		}
	}
}

func TestSortByBrightnessStable(t *testing.T) {
	// Pure red and pure blue share V = 1; the stable sort must keep
	// caller order.
	colors := []RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 0, B: 255},
		{R: 10, G: 10, B: 10},
	}

	sorted := SortByBrightness(colors)
	if sorted[0] != (RGB{R: 10, G: 10, B: 10}) {
		t.Errorf("darkest colour not first: %+v", sorted)
	}
	if sorted[1] != (RGB{R: 255, G: 0, B: 0}) || sorted[2] != (RGB{R: 0, G: 0, B: 255}) {
		t.Errorf("equal-brightness order not preserved: %+v", sorted)
	}
}
