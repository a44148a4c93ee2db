package chem

import (
	"errors"
	"math"
	"testing"
)

func TestComputeMassesKnownMolecules(t *testing.T) {
	cases := []struct {
		name    string
		smiles  string
		formula string
		mono    float64
	}{
		{"ethanol", "CCO", "C2H6O", 46.0419},
		{"benzene aromatic", "c1ccccc1", "C6H6", 78.0470},
		{"benzene kekule", "C1=CC=CC=C1", "C6H6", 78.0470},
		{"glycine", "NCC(=O)O", "C2H5NO2", 75.0320},
		{"aspirin", "CC(=O)OC1=CC=CC=C1C(=O)O", "C9H8O4", 180.0423},
		{"toluene", "Cc1ccccc1", "C7H8", 92.0626},
		{"pyridine", "c1ccncc1", "C5H5N", 79.0422},
		{"chloroform", "C(Cl)(Cl)Cl", "CHCl3", 117.9144},
		{"dmso bracket sulfur", "CS(=O)C", "C2H6OS", 78.0139},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile, err := ComputeMasses(tc.smiles)
			if err != nil {
				t.Fatalf("ComputeMasses(%q): %v", tc.smiles, err)
			}
			if profile.Formula != tc.formula {
				t.Errorf("formula = %s, want %s", profile.Formula, tc.formula)
			}
			if math.Abs(profile.Monoisotopic-tc.mono) > 1e-3 {
				t.Errorf("monoisotopic = %.4f, want %.4f", profile.Monoisotopic, tc.mono)
			}
		})
	}
}

func TestComputeMassesAdducts(t *testing.T) {
	profile, err := ComputeMasses("NCCC(NCc(cc1)c(n4cccc4)c(CN2C(CCC(N3)=O)C3=O)c1C2=O)=O")
	if err != nil {
		t.Fatalf("ComputeMasses: %v", err)
	}
	if profile.Formula != "C21H23N5O4" {
		t.Fatalf("formula = %s, want C21H23N5O4", profile.Formula)
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"monoisotopic", profile.Monoisotopic, 409.1750},
		{"mh", profile.MH, 410.1828},
		{"mna", profile.MNa, 432.1647},
		{"mhminus", profile.MHMinus, 408.1677},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-3 {
			t.Errorf("%s = %.4f, want %.4f", c.name, c.got, c.want)
		}
	}
}

func TestComputeMassesDeterministic(t *testing.T) {
	first, err := ComputeMasses("CC(=O)OC1=CC=CC=C1C(=O)O")
	if err != nil {
		t.Fatalf("ComputeMasses: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ComputeMasses("CC(=O)OC1=CC=CC=C1C(=O)O")
		if err != nil {
			t.Fatalf("ComputeMasses: %v", err)
		}
		if again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestComputeMassesChargedSpecies(t *testing.T) {
	profile, err := ComputeMasses("[NH4+]")
	if err != nil {
		t.Fatalf("ComputeMasses: %v", err)
	}
	if profile.Formula != "H4N+" {
		t.Errorf("formula = %s, want H4N+", profile.Formula)
	}
	if math.Abs(profile.Monoisotopic-18.0344) > 1e-3 {
		t.Errorf("monoisotopic = %.4f, want 18.0344", profile.Monoisotopic)
	}
}

func TestComputeMassesInvalidStructure(t *testing.T) {
	cases := []struct {
		name   string
		smiles string
	}{
		{"empty", ""},
		{"unclosed ring", "C1CC"},
		{"unclosed branch", "C(C"},
		{"stray close", "CC)"},
		{"unknown element", "C[Zz]C"},
		{"dangling bond", "CC="},
		{"empty bracket", "C[]C"},
		{"malformed ring label", "C%2C"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeMasses(tc.smiles)
			if !errors.Is(err, ErrInvalidStructure) {
				t.Fatalf("ComputeMasses(%q) err = %v, want ErrInvalidStructure", tc.smiles, err)
			}
		})
	}
}

func TestComputeMassesIsotopeLabels(t *testing.T) {
	cases := []struct {
		name    string
		smiles  string
		formula string
		mono    float64
	}{
		{"13C methane", "[13CH4]", "CH4", 17.0347},
		{"heavy water", "[2H]O[2H]", "H2O", 20.0231},
		{"13C ethanol one carbon", "[13CH3]CO", "C2H6O", 47.0452},
		{"18O water", "[18OH2]", "H2O", 20.0148},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile, err := ComputeMasses(tc.smiles)
			if err != nil {
				t.Fatalf("ComputeMasses(%q): %v", tc.smiles, err)
			}
			if profile.Formula != tc.formula {
				t.Errorf("formula = %s, want %s", profile.Formula, tc.formula)
			}
			if math.Abs(profile.Monoisotopic-tc.mono) > 1e-3 {
				t.Errorf("monoisotopic = %.4f, want %.4f", profile.Monoisotopic, tc.mono)
			}
		})
	}
}

func TestComputeMassesIsotopeShiftsMass(t *testing.T) {
	light, err := ComputeMasses("C")
	if err != nil {
		t.Fatalf("ComputeMasses(C): %v", err)
	}
	heavy, err := ComputeMasses("[13CH4]")
	if err != nil {
		t.Fatalf("ComputeMasses([13CH4]): %v", err)
	}
	shift := heavy.Monoisotopic - light.Monoisotopic
	if math.Abs(shift-1.0034) > 1e-3 {
		t.Errorf("13C-12C shift = %.4f, want 1.0034", shift)
	}
}

func TestComputeMassesUnknownNuclide(t *testing.T) {
	for _, smiles := range []string{"[99CH4]", "[13F]C"} {
		if _, err := ComputeMasses(smiles); !errors.Is(err, ErrInvalidStructure) {
			t.Fatalf("ComputeMasses(%q) err = %v, want ErrInvalidStructure", smiles, err)
		}
	}
}
