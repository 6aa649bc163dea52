package viz

import (
	"fmt"
	"strings"
)

type SpecKind string

const (
	SpecTable SpecKind = "table"
	SpecGraph SpecKind = "graph"
	SpecBoth  SpecKind = "both"
)

type TableSpec struct {
	Title   string
	Headers []string
	Rows    [][]string
}

type GraphSpec struct {
	Expressions []string
	XMin, XMax  float64
}

// ArtifactSpec is the declarative render request handed to the Renderer.
type ArtifactSpec struct {
	Kind  SpecKind
	Table *TableSpec
	Graph *GraphSpec
}

// Artifact is the rendered result for one turn. It lives only for the turn;
// persistence keeps a reference (kind + storage URL), not the entity.
type Artifact struct {
	Kind        SpecKind
	PNG         []byte
	SourceRule  string
	Numbers     []int
	Expressions []string
}

// Rule is one curated visualization: a predicate over the raw text plus a
// spec generator. Rules live in a fixed ordered list; the first match wins.
type Rule struct {
	Name  string
	Match func(text string) bool
	Build func() ArtifactSpec
}

type Catalog struct {
	rules []Rule
}

func (c *Catalog) Rules() []Rule { return c.rules }

// Match walks the rule list top to bottom and returns the first hit.
func (c *Catalog) Match(text string) *Rule {
	lower := strings.ToLower(text)
	for i := range c.rules {
		if c.rules[i].Match(lower) {
			return &c.rules[i]
		}
	}
	return nil
}

func has(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func tableSpec(title string, headers []string, rows [][]string) ArtifactSpec {
	return ArtifactSpec{Kind: SpecTable, Table: &TableSpec{Title: title, Headers: headers, Rows: rows}}
}

func conjugationRule(name, verb string, forms [][]string) Rule {
	return Rule{
		Name: name,
		Match: func(s string) bool {
			return has(s, "conjugat", "forms of", "спряжени") && has(s, verb)
		},
		Build: func() ArtifactSpec {
			return tableSpec(
				fmt.Sprintf("Conjugation of the verb %q", verb),
				[]string{"Pronoun", "Present", "Past"},
				forms,
			)
		},
	}
}

func elementRule(name, element, symbol, number, mass, group string) Rule {
	return Rule{
		Name:  name,
		Match: func(s string) bool { return has(s, element) && has(s, "element", "periodic", "химическ", "atomic") },
		Build: func() ArtifactSpec {
			title := strings.ToUpper(element[:1]) + element[1:]
			return tableSpec(
				"Element: "+title,
				[]string{"Property", "Value"},
				[][]string{
					{"Symbol", symbol},
					{"Atomic number", number},
					{"Atomic mass", mass},
					{"Group", group},
				},
			)
		},
	}
}

// DefaultCatalog returns the fixed, ordered curated rule list. Ordering is
// part of the contract: earlier rules shadow later ones.
func DefaultCatalog() *Catalog {
	rules := []Rule{
		conjugationRule("verb-to-be", "to be", [][]string{
			{"I", "am", "was"},
			{"you", "are", "were"},
			{"he/she/it", "is", "was"},
			{"we", "are", "were"},
			{"they", "are", "were"},
		}),
		conjugationRule("verb-to-have", "to have", [][]string{
			{"I", "have", "had"},
			{"you", "have", "had"},
			{"he/she/it", "has", "had"},
			{"we", "have", "had"},
			{"they", "have", "had"},
		}),
		conjugationRule("verb-to-go", "to go", [][]string{
			{"I", "go", "went"},
			{"you", "go", "went"},
			{"he/she/it", "goes", "went"},
			{"we", "go", "went"},
			{"they", "go", "went"},
		}),
		conjugationRule("verb-to-do", "to do", [][]string{
			{"I", "do", "did"},
			{"you", "do", "did"},
			{"he/she/it", "does", "did"},
			{"we", "do", "did"},
			{"they", "do", "did"},
		}),
		{
			Name:  "irregular-verbs",
			Match: func(s string) bool { return hasAll(s, "irregular", "verb") },
			Build: func() ArtifactSpec {
				return tableSpec("Common irregular verbs",
					[]string{"Base", "Past simple", "Past participle"},
					[][]string{
						{"be", "was/were", "been"},
						{"begin", "began", "begun"},
						{"break", "broke", "broken"},
						{"come", "came", "come"},
						{"eat", "ate", "eaten"},
						{"give", "gave", "given"},
						{"know", "knew", "known"},
						{"see", "saw", "seen"},
						{"take", "took", "taken"},
						{"write", "wrote", "written"},
					})
			},
		},
		{
			Name:  "personal-pronouns",
			Match: func(s string) bool { return hasAll(s, "pronoun") && has(s, "table", "list", "all") },
			Build: func() ArtifactSpec {
				return tableSpec("Personal pronouns",
					[]string{"Subject", "Object", "Possessive"},
					[][]string{
						{"I", "me", "my"},
						{"you", "you", "your"},
						{"he", "him", "his"},
						{"she", "her", "her"},
						{"it", "it", "its"},
						{"we", "us", "our"},
						{"they", "them", "their"},
					})
			},
		},

		elementRule("element-hydrogen", "hydrogen", "H", "1", "1.008", "1"),
		elementRule("element-oxygen", "oxygen", "O", "8", "15.999", "16"),
		elementRule("element-carbon", "carbon", "C", "6", "12.011", "14"),
		elementRule("element-nitrogen", "nitrogen", "N", "7", "14.007", "15"),
		elementRule("element-iron", "iron", "Fe", "26", "55.845", "8"),
		elementRule("element-gold", "gold", "Au", "79", "196.97", "11"),

		{
			Name:  "physics-constants",
			Match: func(s string) bool { return hasAll(s, "physics", "constant") },
			Build: func() ArtifactSpec {
				return tableSpec("Fundamental physics constants",
					[]string{"Constant", "Symbol", "Value"},
					[][]string{
						{"Speed of light", "c", "299 792 458 m/s"},
						{"Gravitational constant", "G", "6.674×10⁻¹¹ m³/(kg·s²)"},
						{"Planck constant", "h", "6.626×10⁻³⁴ J·s"},
						{"Elementary charge", "e", "1.602×10⁻¹⁹ C"},
						{"Boltzmann constant", "k", "1.381×10⁻²³ J/K"},
					})
			},
		},
		{
			Name:  "speed-of-light",
			Match: func(s string) bool { return has(s, "speed of light", "скорость света") },
			Build: func() ArtifactSpec {
				return tableSpec("Speed of light",
					[]string{"Medium", "Speed"},
					[][]string{
						{"Vacuum", "299 792 458 m/s"},
						{"Water", "≈225 000 000 m/s"},
						{"Glass", "≈200 000 000 m/s"},
					})
			},
		},
		{
			Name:  "gravitational-constant",
			Match: func(s string) bool { return has(s, "gravitational constant") },
			Build: func() ArtifactSpec {
				return tableSpec("Gravitational constant",
					[]string{"Property", "Value"},
					[][]string{
						{"Symbol", "G"},
						{"Value", "6.674×10⁻¹¹ m³/(kg·s²)"},
					})
			},
		},
		{
			Name:  "planck-constant",
			Match: func(s string) bool { return has(s, "planck") },
			Build: func() ArtifactSpec {
				return tableSpec("Planck constant",
					[]string{"Property", "Value"},
					[][]string{
						{"Symbol", "h"},
						{"Value", "6.626×10⁻³⁴ J·s"},
						{"Reduced (ħ)", "1.055×10⁻³⁴ J·s"},
					})
			},
		},

		{
			Name:  "multiplication-square",
			Match: func(s string) bool { return has(s, "multiplication square", "pythagoras table", "таблица пифагора") },
			Build: func() ArtifactSpec {
				headers := []string{"×"}
				for i := 1; i <= 10; i++ {
					headers = append(headers, fmt.Sprintf("%d", i))
				}
				var rows [][]string
				for i := 1; i <= 10; i++ {
					row := []string{fmt.Sprintf("%d", i)}
					for j := 1; j <= 10; j++ {
						row = append(row, fmt.Sprintf("%d", i*j))
					}
					rows = append(rows, row)
				}
				return tableSpec("Multiplication square 1–10", headers, rows)
			},
		},
		{
			Name:  "squares-table",
			Match: func(s string) bool { return hasAll(s, "squares") && has(s, "table", "list") },
			Build: func() ArtifactSpec {
				var rows [][]string
				for i := 1; i <= 20; i++ {
					rows = append(rows, []string{fmt.Sprintf("%d", i), fmt.Sprintf("%d", i*i)})
				}
				return tableSpec("Squares of 1–20", []string{"n", "n²"}, rows)
			},
		},
		{
			Name:  "primes-table",
			Match: func(s string) bool { return has(s, "prime number", "primes", "простые числа") },
			Build: func() ArtifactSpec {
				primes := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97}
				var rows [][]string
				for i := 0; i < len(primes); i += 5 {
					var row []string
					for j := i; j < i+5 && j < len(primes); j++ {
						row = append(row, fmt.Sprintf("%d", primes[j]))
					}
					rows = append(rows, row)
				}
				return tableSpec("Prime numbers up to 100", nil, rows)
			},
		},
		{
			Name:  "roman-numerals",
			Match: func(s string) bool { return has(s, "roman numeral", "римские цифры") },
			Build: func() ArtifactSpec {
				return tableSpec("Roman numerals",
					[]string{"Arabic", "Roman"},
					[][]string{
						{"1", "I"}, {"4", "IV"}, {"5", "V"}, {"9", "IX"}, {"10", "X"},
						{"40", "XL"}, {"50", "L"}, {"90", "XC"}, {"100", "C"},
						{"500", "D"}, {"1000", "M"},
					})
			},
		},
		{
			Name:  "powers-of-two",
			Match: func(s string) bool { return has(s, "powers of two", "powers of 2", "степени двойки") },
			Build: func() ArtifactSpec {
				var rows [][]string
				v := 1
				for i := 0; i <= 16; i++ {
					rows = append(rows, []string{fmt.Sprintf("2^%d", i), fmt.Sprintf("%d", v)})
					v *= 2
				}
				return tableSpec("Powers of two", []string{"Power", "Value"}, rows)
			},
		},
		{
			Name:  "fraction-decimals",
			Match: func(s string) bool { return hasAll(s, "fraction") && has(s, "decimal") },
			Build: func() ArtifactSpec {
				return tableSpec("Common fractions as decimals",
					[]string{"Fraction", "Decimal"},
					[][]string{
						{"1/2", "0.5"}, {"1/3", "0.333…"}, {"1/4", "0.25"},
						{"1/5", "0.2"}, {"1/8", "0.125"}, {"2/3", "0.667…"},
						{"3/4", "0.75"},
					})
			},
		},
		{
			Name:  "trig-special-angles",
			Match: func(s string) bool { return has(s, "special angles", "trig table", "таблица синусов") },
			Build: func() ArtifactSpec {
				return tableSpec("Trigonometric values of special angles",
					[]string{"Angle", "sin", "cos", "tan"},
					[][]string{
						{"0°", "0", "1", "0"},
						{"30°", "1/2", "√3/2", "√3/3"},
						{"45°", "√2/2", "√2/2", "1"},
						{"60°", "√3/2", "1/2", "√3"},
						{"90°", "1", "0", "—"},
					})
			},
		},

		{
			Name:  "planets-table",
			Match: func(s string) bool { return has(s, "planet", "solar system", "планет") },
			Build: func() ArtifactSpec {
				return tableSpec("Planets of the Solar System",
					[]string{"Planet", "Distance from Sun (AU)", "Year length"},
					[][]string{
						{"Mercury", "0.39", "88 days"},
						{"Venus", "0.72", "225 days"},
						{"Earth", "1.00", "365 days"},
						{"Mars", "1.52", "687 days"},
						{"Jupiter", "5.20", "11.9 years"},
						{"Saturn", "9.58", "29.4 years"},
						{"Uranus", "19.2", "84 years"},
						{"Neptune", "30.1", "165 years"},
					})
			},
		},
		{
			Name:  "continents-table",
			Match: func(s string) bool { return has(s, "continent", "континент") },
			Build: func() ArtifactSpec {
				return tableSpec("Continents by area",
					[]string{"Continent", "Area (million km²)"},
					[][]string{
						{"Asia", "44.6"}, {"Africa", "30.4"}, {"North America", "24.7"},
						{"South America", "17.8"}, {"Antarctica", "14.2"},
						{"Europe", "10.2"}, {"Australia", "8.6"},
					})
			},
		},
		{
			Name:  "longest-rivers",
			Match: func(s string) bool { return hasAll(s, "river") && has(s, "longest", "biggest", "largest") },
			Build: func() ArtifactSpec {
				return tableSpec("Longest rivers",
					[]string{"River", "Length (km)"},
					[][]string{
						{"Nile", "6650"}, {"Amazon", "6400"}, {"Yangtze", "6300"},
						{"Mississippi–Missouri", "6275"}, {"Yenisei", "5539"},
					})
			},
		},
		{
			Name:  "highest-mountains",
			Match: func(s string) bool { return hasAll(s, "mountain") && has(s, "highest", "tallest") },
			Build: func() ArtifactSpec {
				return tableSpec("Highest mountains",
					[]string{"Mountain", "Height (m)"},
					[][]string{
						{"Everest", "8849"}, {"K2", "8611"}, {"Kangchenjunga", "8586"},
						{"Lhotse", "8516"}, {"Makalu", "8485"},
					})
			},
		},

		{
			Name:  "blood-types",
			Match: func(s string) bool { return has(s, "blood type", "blood group", "группы крови") },
			Build: func() ArtifactSpec {
				return tableSpec("Blood types and compatibility",
					[]string{"Type", "Can donate to", "Can receive from"},
					[][]string{
						{"O−", "all", "O−"},
						{"O+", "O+, A+, B+, AB+", "O±"},
						{"A+", "A+, AB+", "A±, O±"},
						{"B+", "B+, AB+", "B±, O±"},
						{"AB+", "AB+", "all"},
					})
			},
		},
		{
			Name:  "cell-organelles",
			Match: func(s string) bool { return has(s, "organelle", "органоид") },
			Build: func() ArtifactSpec {
				return tableSpec("Cell organelles",
					[]string{"Organelle", "Function"},
					[][]string{
						{"Nucleus", "stores genetic material"},
						{"Mitochondrion", "produces energy (ATP)"},
						{"Ribosome", "synthesizes proteins"},
						{"Chloroplast", "photosynthesis (plants)"},
						{"Cell membrane", "controls what enters and leaves"},
					})
			},
		},

		{
			Name:  "ww2-timeline",
			Match: func(s string) bool { return has(s, "world war ii", "world war 2", "вторая мировая") },
			Build: func() ArtifactSpec {
				return tableSpec("World War II: key dates",
					[]string{"Date", "Event"},
					[][]string{
						{"1 Sep 1939", "Germany invades Poland"},
						{"22 Jun 1941", "Invasion of the Soviet Union"},
						{"7 Dec 1941", "Attack on Pearl Harbor"},
						{"6 Jun 1944", "D-Day landings in Normandy"},
						{"8 May 1945", "Victory in Europe"},
						{"2 Sep 1945", "Japan surrenders"},
					})
			},
		},
		{
			Name:  "ancient-rome-timeline",
			Match: func(s string) bool { return hasAll(s, "rome") && has(s, "timeline", "dates", "history") },
			Build: func() ArtifactSpec {
				return tableSpec("Ancient Rome: key dates",
					[]string{"Year", "Event"},
					[][]string{
						{"753 BC", "Legendary founding of Rome"},
						{"509 BC", "Republic established"},
						{"44 BC", "Assassination of Julius Caesar"},
						{"27 BC", "Augustus becomes first emperor"},
						{"476 AD", "Fall of the Western Empire"},
					})
			},
		},

		{
			Name:  "si-prefixes",
			Match: func(s string) bool { return has(s, "si prefix", "metric prefix") },
			Build: func() ArtifactSpec {
				return tableSpec("SI prefixes",
					[]string{"Prefix", "Symbol", "Factor"},
					[][]string{
						{"giga", "G", "10⁹"}, {"mega", "M", "10⁶"}, {"kilo", "k", "10³"},
						{"centi", "c", "10⁻²"}, {"milli", "m", "10⁻³"},
						{"micro", "µ", "10⁻⁶"}, {"nano", "n", "10⁻⁹"},
					})
			},
		},
		{
			Name:  "ascii-table",
			Match: func(s string) bool { return has(s, "ascii") },
			Build: func() ArtifactSpec {
				var rows [][]string
				for c := byte('A'); c <= 'J'; c++ {
					rows = append(rows, []string{string(c), fmt.Sprintf("%d", c), fmt.Sprintf("%08b", c)})
				}
				return tableSpec("ASCII codes (A–J)", []string{"Char", "Decimal", "Binary"}, rows)
			},
		},
		{
			Name:  "note-durations",
			Match: func(s string) bool { return hasAll(s, "note") && has(s, "duration", "length", "values") },
			Build: func() ArtifactSpec {
				return tableSpec("Note durations",
					[]string{"Note", "Relative length"},
					[][]string{
						{"Whole", "1"}, {"Half", "1/2"}, {"Quarter", "1/4"},
						{"Eighth", "1/8"}, {"Sixteenth", "1/16"},
					})
			},
		},
		{
			Name:  "unit-circle",
			Match: func(s string) bool { return has(s, "unit circle", "единичная окружность") },
			Build: func() ArtifactSpec {
				return ArtifactSpec{Kind: SpecGraph, Graph: &GraphSpec{
					Expressions: []string{"sin(x)", "cos(x)"},
					XMin:        -6.5, XMax: 6.5,
				}}
			},
		},
	}
	return &Catalog{rules: rules}
}
