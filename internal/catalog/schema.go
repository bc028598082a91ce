package catalog

import (
	"sort"
	"strings"
)

// Kind is the declared type of a schema field.
type Kind int

const (
	Text Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

// Field describes one column of the static schema and how it maps onto a Planet.
type Field struct {
	Name  string
	Kind  Kind
	Label string
	// Fallback names another source column read when this one is blank or absent.
	Fallback string

	getNum  func(*Planet) Num
	setNum  func(*Planet, Num)
	getText func(*Planet) Str
	setText func(*Planet, Str)
}

// Num returns the numeric value of f for p. Text fields always yield null.
func (f *Field) Num(p *Planet) Num {
	if f.getNum == nil {
		return Null
	}
	return f.getNum(p)
}

// Text returns the string value of f for p. Numeric fields always yield null.
func (f *Field) Text(p *Planet) Str {
	if f.getText == nil {
		return Str{}
	}
	return f.getText(p)
}

// Value returns the field as float64, string or nil.
func (f *Field) Value(p *Planet) any {
	if f.Kind == Numeric {
		if n := f.Num(p); n.Valid {
			return n.Value
		}
		return nil
	}
	if s := f.Text(p); s.Valid {
		return s.Value
	}
	return nil
}

func (f *Field) assign(p *Planet, cell string, present bool) {
	if f.Kind == Numeric {
		if !present {
			f.setNum(p, Null)
			return
		}
		f.setNum(p, ParseNumber(cell))
		return
	}
	if !present {
		f.setText(p, Str{})
		return
	}
	f.setText(p, S(strings.TrimSpace(cell)))
}

func numField(name, label string, ref func(*Planet) *Num) *Field {
	return &Field{
		Name:   name,
		Kind:   Numeric,
		Label:  label,
		getNum: func(p *Planet) Num { return *ref(p) },
		setNum: func(p *Planet, v Num) { *ref(p) = v },
	}
}

func textField(name, label string, ref func(*Planet) *Str) *Field {
	return &Field{
		Name:    name,
		Kind:    Text,
		Label:   label,
		getText: func(p *Planet) Str { return *ref(p) },
		setText: func(p *Planet, v Str) { *ref(p) = v },
	}
}

var schema = []*Field{
	{
		Name:    "pl_name",
		Kind:    Text,
		Label:   "Planet",
		getText: func(p *Planet) Str { return S(p.Name) },
		// a missing name becomes the empty string, never null
		setText: func(p *Planet, v Str) { p.Name = v.Value },
	},
	textField("hostname", "Host Star", func(p *Planet) *Str { return &p.Host }),
	numField("default_flag", "Default Flag", func(p *Planet) *Num { return &p.DefaultFlag }),
	textField("discoverymethod", "Discovery Method", func(p *Planet) *Str { return &p.DiscoveryMethod }),
	numField("disc_year", "Discovery Year", func(p *Planet) *Num { return &p.DiscYear }),
	textField("disc_refname", "Discovery Reference", func(p *Planet) *Str { return &p.DiscRefName }),
	textField("disc_pubdate", "Publication Date", func(p *Planet) *Str { return &p.DiscPubDate }),
	textField("disc_locale", "Discovery Locale", func(p *Planet) *Str { return &p.DiscLocale }),
	textField("disc_facility", "Discovery Facility", func(p *Planet) *Str { return &p.DiscFacility }),
	textField("disc_telescope", "Discovery Telescope", func(p *Planet) *Str { return &p.DiscTelescope }),
	numField("pl_orbper", "Period (days)", func(p *Planet) *Num { return &p.OrbPer }),
	numField("pl_orbsmax", "Semi-Major Axis (AU)", func(p *Planet) *Num { return &p.OrbSMax }),
	numField("pl_rade", "Radius (R⊕)", func(p *Planet) *Num { return &p.RadE }),
	numField("pl_radj", "Radius (RJ)", func(p *Planet) *Num { return &p.RadJ }),
	numField("pl_masse", "Mass (M⊕)", func(p *Planet) *Num { return &p.MassE }),
	withFallback(numField("pl_massj", "Mass (MJ)", func(p *Planet) *Num { return &p.MassJ }), "pl_bmassj"),
	numField("pl_orbeccen", "Eccentricity", func(p *Planet) *Num { return &p.OrbEccen }),
	numField("pl_orbincl", "Inclination (°)", func(p *Planet) *Num { return &p.OrbIncl }),
	numField("st_rad", "Stellar Radius (R☉)", func(p *Planet) *Num { return &p.StRad }),
	numField("st_mass", "Stellar Mass (M☉)", func(p *Planet) *Num { return &p.StMass }),
	numField("st_teff", "Stellar Teff (K)", func(p *Planet) *Num { return &p.StTeff }),
	numField("ra", "Right Ascension (°)", func(p *Planet) *Num { return &p.RA }),
	numField("dec", "Declination (°)", func(p *Planet) *Num { return &p.Dec }),
	numField("sy_dist", "Distance (pc)", func(p *Planet) *Num { return &p.SyDist }),
}

func withFallback(f *Field, column string) *Field {
	f.Fallback = column
	return f
}

var byName map[string]*Field

func init() {
	byName = make(map[string]*Field, len(schema))
	for _, f := range schema {
		byName[f.Name] = f
	}
}

// Schema returns the fields in declaration order.
func Schema() []*Field {
	out := make([]*Field, len(schema))
	copy(out, schema)
	return out
}

// Lookup resolves a field by its column name.
func Lookup(name string) (*Field, bool) {
	f, ok := byName[strings.TrimSpace(name)]
	return f, ok
}

// NumericFields returns the names of all numeric fields, sorted.
func NumericFields() []string {
	var out []string
	for _, f := range schema {
		if f.Kind == Numeric {
			out = append(out, f.Name)
		}
	}
	sort.Strings(out)
	return out
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func trim(s string) string { return strings.TrimSpace(s) }
