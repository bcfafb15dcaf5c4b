package document

import (
	"strings"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	d := FromMap(map[string]any{
		"id":        "w1",
		"items":     []any{"a", "b"},
		"updatedAt": "2024-01-02T03:04:05.123456789Z",
	})
	data, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got, _ := back.GetString([]string{"id"}); got != "w1" {
		t.Errorf("id = %q", got)
	}
	if got, ok := back.GetString([]string{"updatedAt"}); !ok || got != "2024-01-02T03:04:05.123456789Z" {
		t.Errorf("updatedAt = %q, %v; timestamps must stay strings", got, ok)
	}
	seq, ok := back.Seq([]string{"items"})
	if !ok || len(seq) != 2 || seq[0] != "a" || seq[1] != "b" {
		t.Errorf("items = %v", seq)
	}
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantLen int
	}{
		{"empty", "", false, 0},
		{"null", "null\n", false, 0},
		{"mapping", "id: w1\nname: x\n", false, 2},
		{"sequence", "- a\n- b\n", true, 0},
		{"scalar", "hello\n", true, 0},
		{"broken", "id: [unterminated\n", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := Unmarshal([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if len(d.Map()) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(d.Map()), tt.wantLen)
			}
		})
	}
}

func TestMarshal_IndentsSequences(t *testing.T) {
	t.Parallel()

	data, err := Marshal(FromMap(map[string]any{"jobs": []any{"j1"}}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "  - j1") {
		t.Errorf("sequence not indented:\n%s", data)
	}
}
