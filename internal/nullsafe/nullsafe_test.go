package nullsafe

import "testing"

func ptr[T any](v T) *T { return &v }

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *string
		want bool
	}{
		{"both null", nil, nil, true},
		{"left null", nil, ptr("CA"), false},
		{"right null", ptr("CA"), nil, false},
		{"equal values", ptr("CA"), ptr("CA"), true},
		{"different values", ptr("CA"), ptr("NY"), false},
		{"empty is not null", ptr(""), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}

	if !Equal(ptr(36), ptr(36)) || Equal(ptr(36), ptr(60)) {
		t.Error("Equal should work for integers")
	}
}

func TestKeyEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
		want bool
	}{
		{"state with null zip3", NewKey(ptr("CA"), nil), NewKey(ptr("CA"), nil), true},
		{"all null", NewKey(nil, nil), NewKey(nil, nil), true},
		{"null against value", NewKey(ptr("CA"), nil), NewKey(ptr("CA"), ptr("941")), false},
		{"arity mismatch", NewKey(ptr("CA")), NewKey(ptr("CA"), nil), false},
		{"swapped members", NewKey(ptr("CA"), nil), NewKey(nil, ptr("CA")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	if got := NewKey(ptr("CA"), nil).String(); got != `("CA", NULL)` {
		t.Errorf("Unexpected rendering: %s", got)
	}
}

func TestIndex(t *testing.T) {
	x := NewIndex()

	x.Add(NewKey(ptr("CA"), nil))
	x.Add(NewKey(ptr("CA"), ptr("941")))
	x.Add(NewKey(nil, nil))
	if n := x.Add(NewKey(ptr("CA"), nil)); n != 2 {
		t.Errorf("Expected second occurrence, got %d", n)
	}
	x.Add(NewKey(nil, nil))
	x.Add(NewKey(nil, nil))

	if x.Len() != 3 {
		t.Errorf("Expected 3 distinct keys, got %d", x.Len())
	}
	if got := x.Add(NewKey(nil, nil)); got != 4 {
		t.Errorf("Expected all-null key a fourth time, got %d", got)
	}
	if n := x.Add(NewKey(ptr("NY"), nil)); n != 1 {
		t.Errorf("Expected NY key to be new, got %d", n)
	}

	dups := x.Duplicates()
	if len(dups) != 2 {
		t.Fatalf("Expected 2 duplicates, got %d", len(dups))
	}
	if !dups[0].Key.Equal(NewKey(ptr("CA"), nil)) || dups[0].Count != 2 {
		t.Errorf("Unexpected first duplicate: %s x%d", dups[0].Key, dups[0].Count)
	}
	if dups[1].Count != 4 {
		t.Errorf("Expected all-null key four times, got %d", dups[1].Count)
	}
}

func TestIndexKeepsAmbiguousKeysApart(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
	}{
		{"empty string versus NULL", NewKey(ptr(""), nil), NewKey(nil, ptr(""))},
		{"split members", NewKey(ptr("ab"), ptr("c")), NewKey(ptr("a"), ptr("bc"))},
		{"NULL versus the word NULL", NewKey(ptr("NULL")), NewKey(nil)},
		{"different arity", NewKey(ptr("CA")), NewKey(ptr("CA"), nil)},
		{"separator inside a member", NewKey(ptr("A;"), ptr("")), NewKey(ptr("A"), ptr(";"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewIndex()
			x.Add(tt.a)
			if n := x.Add(tt.b); n != 1 {
				t.Errorf("%s and %s were grouped together", tt.a, tt.b)
			}
			if x.Len() != 2 || len(x.Duplicates()) != 0 {
				t.Errorf("Expected 2 distinct keys and no duplicates, got %d", x.Len())
			}
		})
	}
}
