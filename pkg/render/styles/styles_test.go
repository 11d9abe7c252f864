package styles

import (
	"image/color"
	"math"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"blue", color.NRGBA{0, 0, 255, 255}, false},
		{"SkyBlue", color.NRGBA{135, 206, 235, 255}, false},
		{"#0000ff", color.NRGBA{0, 0, 255, 255}, false},
		{"#f00", color.NRGBA{255, 0, 0, 255}, false},
		{"#00000080", color.NRGBA{0, 0, 0, 128}, false},
		{"m", color.NRGBA{255, 0, 255, 255}, false},
		{"none", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
		{"chartreuse-ish", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(MustColor("skyblue"), 0.6)
	if c.A != 153 {
		t.Errorf("alpha = %d, want 153", c.A)
	}
	if WithAlpha(c, 2).A != c.A {
		t.Error("alpha above 1 should clamp")
	}
}

func TestFontSizeAppliesToEveryRole(t *testing.T) {
	s := Default()
	s.FontSize = 18
	for _, r := range []Role{RoleTickLabel, RoleGridLabel, RoleAnnotation, RoleLegend} {
		if got := s.Font(r).Size; got != 18 {
			t.Errorf("%s size = %v, want 18", r, got)
		}
	}
	if got := s.Font(RoleTitle).Size; got != 18 {
		t.Errorf("title size = %v, want 18 with no offset", got)
	}
	s.TitleSizeOffset = 2
	if got := s.Font(RoleTitle).Size; got != 20 {
		t.Errorf("title size = %v, want 20", got)
	}
}

func TestMarker(t *testing.T) {
	for _, m := range []Marker{"o", "^", "s", "", "none"} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if Marker("*").Valid() {
		t.Error("* is not a supported marker")
	}
	if Marker("none").Visible() || !MarkerCircle.Visible() {
		t.Error("Visible() wrong")
	}
}

func TestStrokeVisible(t *testing.T) {
	if (Stroke{Color: MustColor("red")}).Visible() {
		t.Error("zero width stroke should be invisible")
	}
	if !(Stroke{Color: MustColor("red"), Width: 1}).Visible() {
		t.Error("red 1px stroke should be visible")
	}
}

func TestStrokeScale(t *testing.T) {
	s := Stroke{Color: MustColor("gray"), Width: 1, Dashes: []float64{3.7, 1.6}}
	px := s.Scale(600.0 / 72)
	if px.Width != 600.0/72 {
		t.Errorf("Width = %v", px.Width)
	}
	if math.Abs(px.Dashes[0]-3.7*600/72) > 1e-9 || math.Abs(px.Dashes[1]-1.6*600/72) > 1e-9 {
		t.Errorf("Dashes = %v", px.Dashes)
	}
	if s.Dashes[0] != 3.7 {
		t.Error("Scale must not modify the receiver")
	}
}
