package catalog

import (
	"sort"
	"testing"
)

func TestValid(t *testing.T) {
	for _, name := range []string{"Plumber", "Electrician", "Zumba Instructor", "AC Repair"} {
		if !Valid(name) {
			t.Errorf("Valid(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "plumber", "Astronaut", "Electrician "} {
		if Valid(name) {
			t.Errorf("Valid(%q) = true, want false", name)
		}
	}
}

func TestAllSortedAndComplete(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("catalog is empty")
	}
	if !sort.StringsAreSorted(all) {
		t.Error("catalog is not sorted; membership checks rely on it")
	}
	for _, name := range all {
		if !Valid(name) {
			t.Errorf("listed profession %q fails Valid", name)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	orig := all[0]
	all[0] = "Mutated"
	if !Valid(orig) {
		t.Errorf("mutating All()'s result corrupted the catalog")
	}
}
