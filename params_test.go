package vx

import "testing"

func TestParamIterator(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []Param
	}{
		{"empty", "", []Param{{Empty: true}}},
		{"single", "5", []Param{{Value: 5}}},
		{"semicolon list", "1;;3", []Param{{Value: 1}, {Empty: true}, {Value: 3}}},
		{"sub-params", "38:2:255:0:0", []Param{
			{Value: 38},
			{Value: 2, SubOf: true},
			{Value: 255, SubOf: true},
			{Value: 0, SubOf: true},
			{Value: 0, SubOf: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewParamIterator([]byte(tt.data))
			got := it.All()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d params, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("param %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParamIteratorNext(t *testing.T) {
	it := NewParamIterator([]byte("1;2"))
	p, ok := it.Next()
	if !ok || p.Value != 1 {
		t.Fatalf("first Next() = (%+v, %v)", p, ok)
	}
	p, ok = it.Next()
	if !ok || p.Value != 2 {
		t.Fatalf("second Next() = (%+v, %v)", p, ok)
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("third Next() should report ok=false")
	}
}

func TestParamIntOr(t *testing.T) {
	if (Param{Empty: true}).IntOr(7) != 7 {
		t.Fatalf("empty param should default to 7")
	}
	if (Param{Value: 3}).IntOr(7) != 3 {
		t.Fatalf("explicit param should keep its value")
	}
}

func TestGroupParams(t *testing.T) {
	params := NewParamIterator([]byte("38:2:255:0:0;1")).All()
	groups := GroupParams(params)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}
	if len(groups[0]) != 5 {
		t.Fatalf("first group has %d params, want 5", len(groups[0]))
	}
	if len(groups[1]) != 1 || groups[1][0].Value != 1 {
		t.Fatalf("second group = %+v", groups[1])
	}
}
