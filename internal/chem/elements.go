package chem

// monoisotopicMass maps an element symbol to the exact mass of its most
// abundant isotope, in Da. Values follow the CODATA/AME atomic mass tables
// to at least 1e-4 Da.
var monoisotopicMass = map[string]float64{
	"H":  1.00782503207,
	"He": 4.00260325415,
	"Li": 7.01600455,
	"B":  11.0093054,
	"C":  12.0,
	"N":  14.0030740048,
	"O":  15.9949146196,
	"F":  18.99840322,
	"Na": 22.9897692809,
	"Mg": 23.9850417,
	"Al": 26.98153863,
	"Si": 27.9769265325,
	"P":  30.97376163,
	"S":  31.97207100,
	"Cl": 34.96885268,
	"K":  38.96370668,
	"Ca": 39.96259098,
	"Mn": 54.9380451,
	"Fe": 55.9349375,
	"Cu": 62.9295975,
	"Zn": 63.9291422,
	"As": 74.9215965,
	"Se": 73.9224764,
	"Br": 78.9183371,
	"Sn": 119.9021947,
	"I":  126.904473,
}

// isotopeMass maps element symbol then mass number to the exact nuclide
// mass, covering the isotopes that appear as labels in isotope-labeled
// standards. A label outside this table is rejected rather than approximated.
var isotopeMass = map[string]map[int]float64{
	"H":  {1: 1.00782503207, 2: 2.0141017778, 3: 3.0160492777},
	"C":  {12: 12.0, 13: 13.0033548378, 14: 14.003241989},
	"N":  {14: 14.0030740048, 15: 15.0001088982},
	"O":  {16: 15.9949146196, 17: 16.99913170, 18: 17.9991610},
	"S":  {32: 31.97207100, 33: 32.97145876, 34: 33.96786690, 36: 35.96708076},
	"Cl": {35: 34.96885268, 37: 36.96590259},
	"Br": {79: 78.9183371, 81: 80.9162906},
}

// organicValences lists the default valences of the SMILES organic subset,
// smallest first. Implicit hydrogens fill the smallest valence that covers
// the atom's bond order sum.
var organicValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}
