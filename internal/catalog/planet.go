package catalog

// Disposition is the confirmation status of a catalog entry.
type Disposition string

const (
	Confirmed     Disposition = "Confirmed"
	Candidate     Disposition = "Candidate"
	FalsePositive Disposition = "False Positive"
	Controversial Disposition = "Controversial"
)

// Dispositions lists every known disposition in display order.
var Dispositions = []Disposition{Confirmed, Candidate, FalsePositive, Controversial}

// ParseDisposition matches s case-insensitively against the known dispositions.
func ParseDisposition(s string) (Disposition, bool) {
	for _, d := range Dispositions {
		if equalFoldTrim(string(d), s) {
			return d, true
		}
	}
	return "", false
}

// Planet is one typed catalog record. The field set is fixed; cells that are
// missing or malformed in the source become null.
type Planet struct {
	Name            string `json:"pl_name"`
	Host            Str    `json:"hostname"`
	DefaultFlag     Num    `json:"default_flag"`
	DiscoveryMethod Str    `json:"discoverymethod"`
	DiscYear        Num    `json:"disc_year"`
	DiscRefName     Str    `json:"disc_refname"`
	DiscPubDate     Str    `json:"disc_pubdate"`
	DiscLocale      Str    `json:"disc_locale"`
	DiscFacility    Str    `json:"disc_facility"`
	DiscTelescope   Str    `json:"disc_telescope"`
	OrbPer          Num    `json:"pl_orbper"`
	OrbSMax         Num    `json:"pl_orbsmax"`
	RadE            Num    `json:"pl_rade"`
	RadJ            Num    `json:"pl_radj"`
	MassE           Num    `json:"pl_masse"`
	MassJ           Num    `json:"pl_massj"`
	OrbEccen        Num    `json:"pl_orbeccen"`
	OrbIncl         Num    `json:"pl_orbincl"`
	StRad           Num    `json:"st_rad"`
	StMass          Num    `json:"st_mass"`
	StTeff          Num    `json:"st_teff"`
	RA              Num    `json:"ra"`
	Dec             Num    `json:"dec"`
	SyDist          Num    `json:"sy_dist"`
}

// Disposition derives the confirmation status from default_flag.
func (p *Planet) Disposition() Disposition {
	if p.DefaultFlag.Valid && p.DefaultFlag.Value == 1 {
		return Confirmed
	}
	return Candidate
}

// SearchText is the haystack used by free-text search.
func (p *Planet) SearchText() string {
	return p.Name + " " + p.Host.Value
}
