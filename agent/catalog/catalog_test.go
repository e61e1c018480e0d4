package catalog

import "testing"

func TestDefaultReturnsCopies(t *testing.T) {
	t.Parallel()

	first := Default()
	first.Sectors[0] = "mutated"

	second := Default()
	if second.Sectors[0] != "Healthcare" {
		t.Fatalf("Default().Sectors[0] = %q, want %q", second.Sectors[0], "Healthcare")
	}
}

func TestKnownSector(t *testing.T) {
	t.Parallel()

	if !KnownSector("healthcare") {
		t.Fatal("KnownSector(healthcare) = false, want true")
	}
	if !KnownSector(" Industrial Equipment ") {
		t.Fatal("KnownSector with surrounding spaces = false, want true")
	}
	if KnownSector("Mining") {
		t.Fatal("KnownSector(Mining) = true, want false")
	}
}

func TestKnownCountry(t *testing.T) {
	t.Parallel()

	if !KnownCountry("uk") {
		t.Fatal("KnownCountry(uk) = false, want true")
	}
	if KnownCountry("Atlantis") {
		t.Fatal("KnownCountry(Atlantis) = true, want false")
	}
}
