package chem

import "fmt"

// Ionization offsets in Da. These are fixed physical constants of the
// measured adduct species, not tuning knobs.
const (
	protonMass     = 1.0078  // [M+H]+
	sodiumAdduct   = 22.9897 // [M+Na]+, sodium minus an electron
	protonLossMass = 1.0073  // [M-H]-
)

// MassProfile holds the masses derived from one structural notation.
type MassProfile struct {
	Formula      string  `json:"formula"`
	Monoisotopic float64 `json:"monoisotopicMass"`
	MH           float64 `json:"mhMass"`
	MNa          float64 `json:"mnaMass"`
	MHMinus      float64 `json:"mhMinusMass"`
}

// ComputeMasses derives the molecular formula, monoisotopic mass and the
// three ionized adduct masses from a SMILES string. The same input always
// yields the same output; invalid notations fail with ErrInvalidStructure.
func ComputeMasses(smiles string) (MassProfile, error) {
	if smiles == "" {
		return MassProfile{}, fmt.Errorf("%w: empty notation", ErrInvalidStructure)
	}
	mol, err := parseSMILES(smiles)
	if err != nil {
		return MassProfile{}, err
	}

	counts, charge := mol.composition()
	mono, err := mol.monoisotopic()
	if err != nil {
		return MassProfile{}, err
	}

	return MassProfile{
		Formula:      hillFormula(counts, charge),
		Monoisotopic: mono,
		MH:           mono + protonMass,
		MNa:          mono + sodiumAdduct,
		MHMinus:      mono - protonLossMass,
	}, nil
}
