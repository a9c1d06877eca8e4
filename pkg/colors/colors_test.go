package colors

import (
	"encoding/json"
	"testing"

	"github.com/layerview/layerview/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		color   string
		want    string
		wantErr bool
	}{
		{"short hex", "#F00", "#f00", false},
		{"short hex with alpha", "#F00A", "#f00a", false},
		{"full hex", "#FF0000", "#ff0000", false},
		{"full hex with alpha", "#FF000080", "#ff000080", false},
		{"already lowercase", "#abcdef", "#abcdef", false},
		{"four digit hex", "#ff00", "#ff00", false},
		{"missing hash", "ff0000", "", true},
		{"five digits", "#ff000", "", true},
		{"seven digits", "#ff00000", "", true},
		{"named without resolver", "tomato", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.color)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.color, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.color, got, tt.want)
			}
		})
	}
}

func TestParse_NameResolver(t *testing.T) {
	SetNameResolver(func(name string) (string, error) {
		if name == "tomato" {
			return "#FF6347", nil
		}
		return "", errors.New(errors.ErrCodeInvalidColor, "unknown color %q", name)
	})
	defer SetNameResolver(nil)

	got, err := Parse("tomato")
	if err != nil {
		t.Fatalf("Parse(tomato) error = %v", err)
	}
	if got != "#ff6347" {
		t.Errorf("Parse(tomato) = %q, want #ff6347", got)
	}

	if _, err := Parse("vermillion"); !errors.Is(err, errors.ErrCodeCollaboratorColormap) {
		t.Errorf("Parse(vermillion) error = %v, want COLLABORATOR_COLORMAP", err)
	}
}

func TestResolveNamedColormap_Default(t *testing.T) {
	cm, err := ResolveNamedColormap("")
	if err != nil {
		t.Fatalf("ResolveNamedColormap() error = %v", err)
	}
	if len(cm) != DefaultPaletteSize {
		t.Fatalf("default palette has %d colors, want %d", len(cm), DefaultPaletteSize)
	}
	seen := make(map[string]bool)
	for _, c := range cm {
		if _, err := Parse(c); err != nil {
			t.Errorf("palette color %q is not a valid hex color: %v", c, err)
		}
		if seen[c] {
			t.Errorf("palette color %q appears twice", c)
		}
		seen[c] = true
	}

	// Deterministic across calls.
	again, _ := ResolveNamedColormap("default")
	for i := range cm {
		if cm[i] != again[i] {
			t.Fatalf("palette not deterministic at %d: %q vs %q", i, cm[i], again[i])
		}
	}
}

func TestCheckLabelColormap(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		nullLabel bool
		wantErr   bool
		check     func(t *testing.T, cm Colormap)
	}{
		{
			name:      "nil resolves default",
			input:     nil,
			nullLabel: true,
			check: func(t *testing.T, cm Colormap) {
				if len(cm.Background) != DefaultPaletteSize {
					t.Errorf("background has %d colors, want %d", len(cm.Background), DefaultPaletteSize)
				}
			},
		},
		{
			name:      "color list becomes background cycle",
			input:     []string{"#f00", "#0F0", "#00f"},
			nullLabel: true,
			check: func(t *testing.T, cm Colormap) {
				want := []string{"#f00", "#0f0", "#00f"}
				if len(cm.Background) != len(want) {
					t.Fatalf("background = %v, want %v", cm.Background, want)
				}
				for i := range want {
					if cm.Background[i] != want[i] {
						t.Errorf("background[%d] = %q, want %q", i, cm.Background[i], want[i])
					}
				}
			},
		},
		{
			name:      "label map with reserved zero",
			input:     map[int]any{1: "#ff0000", 2: "#00ff00"},
			nullLabel: true,
			check: func(t *testing.T, cm Colormap) {
				if cm.ByLabel[1] != "#ff0000" || cm.ByLabel[2] != "#00ff00" {
					t.Errorf("ByLabel = %v", cm.ByLabel)
				}
			},
		},
		{
			name:      "zero key shifts when labels start at zero",
			input:     map[int]any{0: "#ff0000"},
			nullLabel: false,
			check: func(t *testing.T, cm Colormap) {
				if cm.ByLabel[1] != "#ff0000" {
					t.Errorf("ByLabel = %v, want key 0 shifted to 1", cm.ByLabel)
				}
			},
		},
		{
			name:      "explicit zero entry is the background cycle",
			input:     map[int]any{0: []any{"#111", "#222"}, 3: "#333"},
			nullLabel: true,
			check: func(t *testing.T, cm Colormap) {
				if len(cm.Background) != 2 {
					t.Errorf("background = %v, want 2 colors", cm.Background)
				}
				if cm.ByLabel[3] != "#333" {
					t.Errorf("ByLabel = %v", cm.ByLabel)
				}
			},
		},
		{
			name:      "negative label rejected",
			input:     map[int]any{-1: "#fff"},
			nullLabel: true,
			wantErr:   true,
		},
		{
			name:      "non-string entry rejected",
			input:     []any{"#fff", 42},
			nullLabel: true,
			wantErr:   true,
		},
		{
			name:      "unsupported type rejected",
			input:     3.14,
			nullLabel: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := CheckLabelColormap(tt.input, tt.nullLabel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckLabelColormap() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.check != nil {
				tt.check(t, cm)
			}
		})
	}
}

func TestColormap_ReservedZeroLabel(t *testing.T) {
	_, err := CheckLabelColormap(Colormap{ByLabel: map[uint32]string{0: "#fff"}}, true)
	if !errors.Is(err, errors.ErrCodeInvalidColormap) {
		t.Fatalf("error = %v, want INVALID_COLORMAP", err)
	}
}

func TestColormap_Encode(t *testing.T) {
	cm, err := CheckLabelColormap(map[int]any{0: []any{"#111"}, 2: "#222"}, true)
	if err != nil {
		t.Fatalf("CheckLabelColormap() error = %v", err)
	}
	enc := cm.Encode()
	bg, ok := enc[0].([]string)
	if !ok || len(bg) != 1 || bg[0] != "#111" {
		t.Errorf("Encode()[0] = %v, want [#111]", enc[0])
	}
	if enc[2] != "#222" {
		t.Errorf("Encode()[2] = %v, want #222", enc[2])
	}
}

func TestNewRange(t *testing.T) {
	r, err := NewRange(map[float64]any{
		0:   "#000",
		0.5: [2]string{"#111", "#222"},
		1:   "#FFF",
	})
	if err != nil {
		t.Fatalf("NewRange() error = %v", err)
	}

	stops := r.Stops()
	want := []float64{0, 0.5, 1}
	if len(stops) != len(want) {
		t.Fatalf("Stops() = %v, want %v", stops, want)
	}
	for i := range want {
		if stops[i] != want[i] {
			t.Errorf("Stops()[%d] = %v, want %v", i, stops[i], want[i])
		}
	}

	mid, ok := r.At(0.5)
	if !ok || len(mid) != 2 || mid[0] != "#111" || mid[1] != "#222" {
		t.Errorf("At(0.5) = %v, %v", mid, ok)
	}

	enc := r.Encode()
	if enc["1"] != "#fff" {
		t.Errorf(`Encode()["1"] = %v, want #fff (normalized)`, enc["1"])
	}
	if pair, ok := enc["0.5"].([]string); !ok || len(pair) != 2 {
		t.Errorf(`Encode()["0.5"] = %v, want a color pair`, enc["0.5"])
	}
}

func TestRange_EncodeMarshals(t *testing.T) {
	r, err := NewRange(map[float64]any{0: "#000", 0.5: "#888", 1: "#fff"})
	if err != nil {
		t.Fatalf("NewRange() error = %v", err)
	}

	raw, err := json.Marshal(r.Encode())
	if err != nil {
		t.Fatalf("json.Marshal(Encode()) error = %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded["0.5"] != "#888" {
		t.Errorf(`decoded["0.5"] = %q, want #888`, decoded["0.5"])
	}
}

func TestNewRange_InvalidStop(t *testing.T) {
	_, err := NewRange(map[float64]any{0: 42})
	if !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Fatalf("error = %v, want INVALID_COLOR", err)
	}
}
