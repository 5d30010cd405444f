package affiliation

import "regexp"

// The tables below are read-only after package initialisation.

type company struct {
	name string
	re   *regexp.Regexp
}

func word(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`)
}

// namedCompanies are pharmaceutical and biotech firms recognised by name.
// A hit is decisive even next to an academic word ("Novartis Institutes").
var namedCompanies = []company{
	{"Pfizer", word(`pfizer`)},
	{"Novartis", word(`novartis`)},
	{"Merck", word(`merck`)},
	{"Roche", word(`roche`)},
	{"Genentech", word(`genentech`)},
	{"Sanofi", word(`sanofi`)},
	{"AstraZeneca", word(`astra\s?zeneca`)},
	{"Johnson & Johnson", word(`johnson\s*(?:&|and)\s*johnson`)},
	{"Janssen", word(`janssen`)},
	{"AbbVie", word(`abbvie`)},
	{"Gilead", word(`gilead`)},
	{"Amgen", word(`amgen`)},
	{"GSK", word(`gsk|glaxo\s?smith\s?kline`)},
	{"Bayer", word(`bayer`)},
	{"Bristol-Myers Squibb", word(`bristol[- ]myers`)},
	{"Eli Lilly", word(`lilly`)},
	{"Boehringer Ingelheim", word(`boehringer`)},
	{"Takeda", word(`takeda`)},
	{"Novo Nordisk", word(`novo\s+nordisk`)},
	{"Biogen", word(`biogen`)},
	{"Celgene", word(`celgene`)},
	{"Regeneron", word(`regeneron`)},
	{"Vertex", word(`vertex`)},
	{"Alexion", word(`alexion`)},
	{"Incyte", word(`incyte`)},
	{"Moderna", word(`moderna`)},
	{"BioNTech", word(`biontech`)},
	{"CureVac", word(`curevac`)},
	{"Daiichi Sankyo", word(`daiichi`)},
	{"Astellas", word(`astellas`)},
	{"Eisai", word(`eisai`)},
	{"Otsuka", word(`otsuka`)},
	{"Teva", word(`teva`)},
	{"Servier", word(`servier`)},
	{"Ipsen", word(`ipsen`)},
}

// companyExceptions cover text where a hit for the named company is
// something else, such as the town of La Roche-sur-Yon.
var companyExceptions = map[string]*regexp.Regexp{
	"Roche": word(`la\s+roche-sur-\pL+`),
}

// academicIndicators override generic corporate words.
var academicIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\buniversi\pL*`),
	word(`college`),
	word(`school`),
	regexp.MustCompile(`(?i)\binstitu\pL*`),
	word(`academy`),
	regexp.MustCompile(`(?i)\bh(?:ospital|[oô]pital)\pL*`),
	word(`medical\s+cent(?:er|re)`),
	word(`faculty\s+of`),
	word(`klinikum`),
	word(`cnrs|inserm`),
}

// legalForms are corporate suffixes. They also mark the segment that holds
// the organisation name.
var legalForms = []*regexp.Regexp{
	word(`inc`),
	word(`corp`),
	word(`corporation`),
	word(`llc`),
	word(`ltd`),
	word(`limited`),
	word(`gmbh`),
	word(`ag`),
	word(`plc`),
	word(`company`),
	regexp.MustCompile(`(?i)&\s*co\b`),
	regexp.MustCompile(`(?i)(?:^|[\s,])s\.\s?a\.?(?:$|[\s,])`),
	regexp.MustCompile(`(?i)(?:^|[\s,])b\.\s?v\.?(?:$|[\s,])`),
	regexp.MustCompile(`(?i)(?:^|[\s,])k\.\s?k\.?(?:$|[\s,])`),
	regexp.MustCompile(`(?i)(?:^|[\s,])a/s(?:$|[\s,.])`),
	regexp.MustCompile(`\bApS\b`),
	// AB and Oy only count after a name; a bare "AB" is Alberta.
	regexp.MustCompile(`\pL{2,}\s+(AB|Oyj?)\b`),
}

// initialRe matches text ending in a single-letter initial such as "U.".
// A dotted legal form after it is part of an abbreviation ("U. S. A.").
var initialRe = regexp.MustCompile(`(?:^|[\s,.])\pL\.\s*$`)

// unitPrefix marks a segment naming a department rather than an organisation.
var unitPrefix = regexp.MustCompile(`(?i)^(?:dep(?:artmen)?t\.?|dept\.?|division|section|unit|laboratory|lab)\s+(?:of|for)\b`)

// industryTerms are words that name an industrial organisation.
var industryTerms = []*regexp.Regexp{
	word(`pharma`),
	word(`pharmaceuticals?`),
	word(`biopharma(?:ceuticals?)?`),
	word(`biotech`),
	word(`therapeutics`),
	word(`biosciences`),
	word(`biologics`),
	word(`laboratories`),
	word(`diagnostics`),
	word(`technologies`),
}

// rndTerms flag industrial research units but never name the organisation.
var rndTerms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\br\s?&\s?d\b`),
	word(`research\s+(?:and|&)\s+development`),
}

// trailingLegalForm strips one corporate suffix from the end of a name.
var trailingLegalForm = regexp.MustCompile(`(?i)[\s,&]*\b(?:inc|corp|corporation|llc|ltd|limited|gmbh|ag|plc|co|s\.\s?a|b\.\s?v|k\.\s?k|a/s|aps|ab|oyj?)\b\.?\s*$`)

var (
	electronicAddressRe = regexp.MustCompile(`(?i)\s*electronic\s+address\s*:\s*\S+`)
	emailRe             = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)
)
