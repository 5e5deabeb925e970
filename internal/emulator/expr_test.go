package emulator

import "testing"

func TestParseExpr(t *testing.T) {
	row := map[string]any{
		"id":    int64(7),
		"age":   int32(30),
		"score": float32(0.5),
		"city":  "Oslo",
		"vip":   true,
	}
	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"id == 7", true},
		{"id != 7", false},
		{"age >= 30 && city == \"Oslo\"", true},
		{"age > 30 || vip == true", true},
		{"not (age < 18)", true},
		{"!vip == true", false},
		{"id in [1, 2, 7]", true},
		{"id not in [1, 2, 7]", false},
		{"city in ['Bergen', 'Oslo'] and score < 1", true},
		{"score <= -1", false},
		{"(age == 1 or age == 30) and not city == 'Rome'", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := parseExpr(tt.expr)
			if err != nil {
				t.Fatalf("parseExpr: %v", err)
			}
			got, err := p.eval(row)
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseExpr_Errors(t *testing.T) {
	for _, expr := range []string{
		"id ==",
		"id = 1",
		"(id == 1",
		"id in 1",
		"'unterminated",
		"id == 1 extra",
		"id @ 1",
	} {
		if _, err := parseExpr(expr); err == nil {
			t.Errorf("parseExpr(%q): expected error", expr)
		}
	}
}

func TestEval_TypeErrors(t *testing.T) {
	row := map[string]any{"city": "Oslo", "vec": []float32{1}}
	for _, expr := range []string{"city > 1", "missing == 1", "vec == 1"} {
		p, err := parseExpr(expr)
		if err != nil {
			t.Fatalf("parseExpr(%q): %v", expr, err)
		}
		if _, err := p.eval(row); err == nil {
			t.Errorf("eval(%q): expected error", expr)
		}
	}
}
