package chem

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// molecule is the parsed form of a SMILES string: atoms with accumulated
// bond order sums, enough to derive elemental composition and exact mass.
type molecule struct {
	atoms []*atom
}

type atom struct {
	symbol   string
	aromatic bool
	bracket  bool
	hCount   int // explicit H from a bracket atom
	charge   int
	isotope  int
	bondSum  float64 // aromatic bonds count 1.5
}

type ringBond struct {
	atomIdx int
	order   float64 // 0 = unspecified
}

type smilesParser struct {
	input string
	pos   int

	mol     molecule
	prev    int // index of previous atom, -1 if none
	stack   []int
	pending float64 // bond order queued by a bond symbol, 0 = unspecified
	rings   map[string]ringBond
}

// parseSMILES parses the organic subset of SMILES plus bracket atoms, ring
// closures (including %nn), branches, charges and isotopes. Stereo markers
// are accepted and ignored.
func parseSMILES(input string) (molecule, error) {
	p := &smilesParser{
		input: input,
		prev:  -1,
		rings: map[string]ringBond{},
	}
	if err := p.run(); err != nil {
		return molecule{}, err
	}
	if len(p.mol.atoms) == 0 {
		return molecule{}, fmt.Errorf("%w: no atoms in %q", ErrInvalidStructure, input)
	}
	if len(p.rings) > 0 {
		return molecule{}, fmt.Errorf("%w: unclosed ring bond in %q", ErrInvalidStructure, input)
	}
	if len(p.stack) > 0 {
		return molecule{}, fmt.Errorf("%w: unclosed branch in %q", ErrInvalidStructure, input)
	}
	return p.mol, nil
}

func (p *smilesParser) run() error {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		switch {
		case ch == '(':
			if p.prev < 0 {
				return fmt.Errorf("%w: branch with no preceding atom", ErrInvalidStructure)
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case ch == ')':
			if len(p.stack) == 0 {
				return fmt.Errorf("%w: unmatched ')'", ErrInvalidStructure)
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case ch == '-':
			p.pending = 1
			p.pos++
		case ch == '=':
			p.pending = 2
			p.pos++
		case ch == '#':
			p.pending = 3
			p.pos++
		case ch == ':':
			p.pending = 1.5
			p.pos++
		case ch == '/' || ch == '\\':
			// cis/trans markers carry no composition information
			p.pending = 1
			p.pos++
		case ch == '.':
			if p.pending != 0 {
				return fmt.Errorf("%w: bond before '.'", ErrInvalidStructure)
			}
			p.prev = -1
			p.pos++
		case ch >= '1' && ch <= '9':
			if err := p.ringClosure(string(ch)); err != nil {
				return err
			}
			p.pos++
		case ch == '%':
			if p.pos+2 >= len(p.input) || !isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
				return fmt.Errorf("%w: malformed %%nn ring bond", ErrInvalidStructure)
			}
			if err := p.ringClosure(p.input[p.pos+1 : p.pos+3]); err != nil {
				return err
			}
			p.pos += 3
		case ch == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}
	if p.pending != 0 {
		return fmt.Errorf("%w: dangling bond at end of input", ErrInvalidStructure)
	}
	return nil
}

func (p *smilesParser) organicAtom() error {
	rest := p.input[p.pos:]
	var symbol string
	aromatic := false
	switch {
	case strings.HasPrefix(rest, "Cl"):
		symbol = "Cl"
	case strings.HasPrefix(rest, "Br"):
		symbol = "Br"
	case rest[0] == 'B' || rest[0] == 'C' || rest[0] == 'N' || rest[0] == 'O' ||
		rest[0] == 'P' || rest[0] == 'S' || rest[0] == 'F' || rest[0] == 'I':
		symbol = string(rest[0])
	case rest[0] == 'b' || rest[0] == 'c' || rest[0] == 'n' || rest[0] == 'o' ||
		rest[0] == 'p' || rest[0] == 's':
		symbol = strings.ToUpper(string(rest[0]))
		aromatic = true
	default:
		return fmt.Errorf("%w: unexpected character %q at position %d", ErrInvalidStructure, string(rest[0]), p.pos)
	}
	p.pos += len(symbol)
	p.addAtom(&atom{symbol: symbol, aromatic: aromatic})
	return nil
}

func (p *smilesParser) bracketAtom() error {
	end := strings.IndexByte(p.input[p.pos:], ']')
	if end < 0 {
		return fmt.Errorf("%w: unclosed bracket atom", ErrInvalidStructure)
	}
	body := p.input[p.pos+1 : p.pos+end]
	p.pos += end + 1

	a := &atom{bracket: true}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.isotope = a.isotope*10 + int(body[i]-'0')
		i++
	}

	if i >= len(body) {
		return fmt.Errorf("%w: empty bracket atom", ErrInvalidStructure)
	}
	switch {
	case body[i] >= 'A' && body[i] <= 'Z':
		a.symbol = string(body[i])
		i++
		if i < len(body) && body[i] >= 'a' && body[i] <= 'z' && body[i] != 'H' {
			candidate := a.symbol + string(body[i])
			if _, ok := monoisotopicMass[candidate]; ok {
				a.symbol = candidate
				i++
			}
		}
	case body[i] >= 'a' && body[i] <= 'z':
		// aromatic atom inside brackets, e.g. [nH]
		sym := string(body[i])
		i++
		if sym == "s" && i < len(body) && body[i] == 'e' {
			sym = "se"
			i++
		} else if sym == "a" && i < len(body) && body[i] == 's' {
			sym = "as"
			i++
		}
		a.symbol = strings.ToUpper(sym[:1]) + sym[1:]
		a.aromatic = true
	default:
		return fmt.Errorf("%w: bad bracket atom %q", ErrInvalidStructure, body)
	}
	if _, ok := monoisotopicMass[a.symbol]; !ok {
		return fmt.Errorf("%w: unknown element %q", ErrInvalidStructure, a.symbol)
	}

	for i < len(body) && body[i] == '@' {
		i++
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.hCount = 1
		if i < len(body) && isDigit(body[i]) {
			a.hCount = 0
			for i < len(body) && isDigit(body[i]) {
				a.hCount = a.hCount*10 + int(body[i]-'0')
				i++
			}
		}
	}

	for i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		i++
		if i < len(body) && isDigit(body[i]) {
			n := 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
			a.charge += sign * n
		} else {
			a.charge += sign
		}
	}

	if i < len(body) && body[i] == ':' {
		i++
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}
	if i != len(body) {
		return fmt.Errorf("%w: bad bracket atom %q", ErrInvalidStructure, body)
	}

	p.addAtom(a)
	return nil
}

func (p *smilesParser) addAtom(a *atom) {
	p.mol.atoms = append(p.mol.atoms, a)
	idx := len(p.mol.atoms) - 1
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = 1
			if p.mol.atoms[p.prev].aromatic && a.aromatic {
				order = 1.5
			}
		}
		p.mol.atoms[p.prev].bondSum += order
		a.bondSum += order
	}
	p.pending = 0
	p.prev = idx
}

func (p *smilesParser) ringClosure(label string) error {
	if p.prev < 0 {
		return fmt.Errorf("%w: ring bond with no preceding atom", ErrInvalidStructure)
	}
	open, ok := p.rings[label]
	if !ok {
		p.rings[label] = ringBond{atomIdx: p.prev, order: p.pending}
		p.pending = 0
		return nil
	}
	delete(p.rings, label)

	if open.atomIdx == p.prev {
		return fmt.Errorf("%w: ring bond %s closes on its own atom", ErrInvalidStructure, label)
	}
	order := open.order
	if p.pending != 0 {
		if order != 0 && order != p.pending {
			return fmt.Errorf("%w: conflicting bond orders on ring bond %s", ErrInvalidStructure, label)
		}
		order = p.pending
	}
	if order == 0 {
		order = 1
		if p.mol.atoms[open.atomIdx].aromatic && p.mol.atoms[p.prev].aromatic {
			order = 1.5
		}
	}
	p.mol.atoms[open.atomIdx].bondSum += order
	p.mol.atoms[p.prev].bondSum += order
	p.pending = 0
	return nil
}

// implicitHydrogens returns the implied hydrogen count of an atom. Bracket
// atoms carry their hydrogens explicitly; organic-subset atoms fill the
// smallest default valence that covers their bond order sum.
func implicitHydrogens(a *atom) int {
	if a.bracket {
		return a.hCount
	}
	valences, ok := organicValences[a.symbol]
	if !ok {
		return 0
	}
	occupied := int(math.Ceil(a.bondSum - 1e-9))
	for _, v := range valences {
		if occupied <= v {
			return v - occupied
		}
	}
	return 0
}

// nuclideMass resolves an atom's exact mass, honoring an isotope label when
// one was given.
func nuclideMass(a *atom) (float64, error) {
	if a.isotope != 0 {
		byNumber, ok := isotopeMass[a.symbol]
		if !ok {
			return 0, fmt.Errorf("%w: no isotope masses for element %q", ErrInvalidStructure, a.symbol)
		}
		mass, ok := byNumber[a.isotope]
		if !ok {
			return 0, fmt.Errorf("%w: unknown nuclide %d%s", ErrInvalidStructure, a.isotope, a.symbol)
		}
		return mass, nil
	}
	mass, ok := monoisotopicMass[a.symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no mass for element %q", ErrInvalidStructure, a.symbol)
	}
	return mass, nil
}

// monoisotopic sums per-atom nuclide masses plus implicit hydrogens at the
// default hydrogen mass. Labeled hydrogens are written as their own bracket
// atoms, so implicit hydrogens are always the light isotope.
func (m molecule) monoisotopic() (float64, error) {
	var total float64
	for _, a := range m.atoms {
		mass, err := nuclideMass(a)
		if err != nil {
			return 0, err
		}
		total += mass
		if h := implicitHydrogens(a); h > 0 {
			total += float64(h) * monoisotopicMass["H"]
		}
	}
	return total, nil
}

// composition returns the element→count map of the molecule with implicit
// hydrogens included, plus the net formal charge.
func (m molecule) composition() (map[string]int, int) {
	counts := map[string]int{}
	charge := 0
	for _, a := range m.atoms {
		counts[a.symbol]++
		if h := implicitHydrogens(a); h > 0 {
			counts["H"] += h
		}
		charge += a.charge
	}
	return counts, charge
}

// hillFormula renders a composition in Hill order: carbon, hydrogen, then
// the remaining elements alphabetically. A net charge is appended as a sign
// suffix the way structure toolkits print it.
func hillFormula(counts map[string]int, charge int) string {
	var b strings.Builder
	appendElement := func(symbol string) {
		n := counts[symbol]
		if n == 0 {
			return
		}
		b.WriteString(symbol)
		if n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}

	rest := make([]string, 0, len(counts))
	for symbol := range counts {
		if _, hasCarbon := counts["C"]; hasCarbon && (symbol == "C" || symbol == "H") {
			continue
		}
		rest = append(rest, symbol)
	}
	sort.Strings(rest)

	if counts["C"] > 0 {
		appendElement("C")
		appendElement("H")
	}
	for _, symbol := range rest {
		appendElement(symbol)
	}

	switch {
	case charge > 1:
		fmt.Fprintf(&b, "+%d", charge)
	case charge == 1:
		b.WriteString("+")
	case charge == -1:
		b.WriteString("-")
	case charge < -1:
		fmt.Fprintf(&b, "-%d", -charge)
	}
	return b.String()
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
