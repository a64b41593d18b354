package entity

import "testing"

func TestResolveContentID(t *testing.T) {
	original := &Status{ID: "orig", Content: "words"}
	wrapper := &Status{ID: "wrapper", Reblog: original}

	tests := []struct {
		name string
		st   *Status
		want string
	}{
		{"plain status resolves to itself", original, "orig"},
		{"boost resolves to the boosted post", wrapper, "orig"},
		{"nil resolves to empty", nil, ""},
	}

	for _, test := range tests {
		if got := ResolveContentID(test.st); got != test.want {
			t.Errorf("%s: ResolveContentID() = %q, want %q", test.name, got, test.want)
		}
	}
}

func TestFilterableStatus(t *testing.T) {
	original := &Status{ID: "orig", Content: "words"}
	wrapper := &Status{ID: "wrapper", Reblog: original}

	if got := FilterableStatus(wrapper); got != original {
		t.Errorf("FilterableStatus(boost) = %v, want the boosted post", got)
	}
	if got := FilterableStatus(original); got != original {
		t.Errorf("FilterableStatus(plain) = %v, want the status itself", got)
	}
	if got := FilterableStatus(nil); got != nil {
		t.Errorf("FilterableStatus(nil) = %v, want nil", got)
	}
}
