package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(69) 9 9371-6918", "69993716918"},
		{"69993716918", "69993716918"},
		{"69 99371 6918", "69993716918"},
		{"+55 11 99999-8888", "5511999998888"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqualAcrossFormats(t *testing.T) {
	formats := []string{"(69) 9 9371-6918", "69993716918", "69 99371 6918"}
	for _, a := range formats {
		for _, b := range formats {
			if !Equal(a, b) {
				t.Errorf("Equal(%q, %q) = false, want true", a, b)
			}
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"123456", true},
		{"12-34-56", true},
		{"12345", false},
		{"", false},
		{"(11) 99999-8888", true},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
