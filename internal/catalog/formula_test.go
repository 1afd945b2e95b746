package catalog

import "testing"

func staticAttrs(values map[string]int) AttrFunc {
	return func(name string) (int, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestParseFormulaArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"-2 + 5", 3},
		{"9 / 2", 4},
	}

	for _, tc := range cases {
		f, err := ParseFormula(tc.src)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.src, err)
		}
		got, err := f.Eval(Env{})
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got != tc.want {
			t.Errorf("%q = %d, want %d", tc.src, got, tc.want)
		}
	}
}

func TestFormulaAttributeRefs(t *testing.T) {
	f, err := ParseFormula("caster.attack + target.defense * multiplier")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	env := Env{
		Caster:    staticAttrs(map[string]int{"attack": 3}),
		Target:    staticAttrs(map[string]int{"defense": 2}),
		Constants: map[string]int{"multiplier": 2},
	}

	got, err := f.Eval(env)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestFormulaValidate(t *testing.T) {
	cases := []struct {
		src       string
		constants map[string]int
		wantErr   bool
	}{
		{"caster.attack + 1", nil, false},
		{"bonus * 2", map[string]int{"bonus": 1}, false},
		{"bonus * 2", nil, true},
		{"caster.magic", nil, true},
		{"wizard.attack", nil, true},
	}

	for _, tc := range cases {
		f, err := ParseFormula(tc.src)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.src, err)
		}
		err = f.Validate(tc.constants)
		if tc.wantErr && err == nil {
			t.Errorf("%q: expected validation error", tc.src)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%q: unexpected validation error: %v", tc.src, err)
		}
	}
}

func TestParseFormulaErrors(t *testing.T) {
	bad := []string{
		"",
		"1 +",
		"(1 + 2",
		"1 ++ 2",
		"caster.",
		"2 $ 3",
	}
	for _, src := range bad {
		if _, err := ParseFormula(src); err == nil {
			t.Errorf("expected parse error for %q", src)
		}
	}
}

func TestFormulaDivisionByZero(t *testing.T) {
	f, err := ParseFormula("10 / target.attack")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = f.Eval(Env{Target: staticAttrs(map[string]int{"attack": 0})})
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}
