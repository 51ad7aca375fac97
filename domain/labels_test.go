package domain

import "testing"

func TestStatusLabel_KnownAndUnknown(t *testing.T) {
	if got := StatusLabel(StatusInProgress); got != "In Progress" {
		t.Fatalf("StatusLabel(in-progress) = %q", got)
	}
	// Unknown tags fall back to a humanized wire spelling.
	if got := StatusLabel(Status("on-hold")); got != "On Hold" {
		t.Fatalf("StatusLabel(on-hold) = %q", got)
	}
}

func TestCategoryLabel_CoversEveryCategory(t *testing.T) {
	for _, c := range Categories {
		if CategoryLabel(c) == "" {
			t.Fatalf("missing label for category %q", c)
		}
		if CategoryIcon(c) == "" {
			t.Fatalf("missing icon for category %q", c)
		}
	}
}

func TestStatusIcon_UnknownIsEmpty(t *testing.T) {
	if got := StatusIcon(Status("nope")); got != "" {
		t.Fatalf("unknown status icon should be empty, got %q", got)
	}
}
