package flightstats

import "strings"

// icaoToIATA maps 3-letter ICAO carrier codes to their 2-letter IATA
// equivalents. The schedule pages are inconsistent about which one they emit;
// logos and flight codes are keyed on IATA. Read-only after init.
var icaoToIATA = map[string]string{
	"AEA": "UX", // Air Europa
	"AFR": "AF", // Air France
	"AUA": "OS", // Austrian
	"AZA": "AZ", // ITA Airways
	"BAW": "BA", // British Airways
	"BEL": "SN", // Brussels Airlines
	"BCS": "QY", // European Air Transport
	"CFG": "DE", // Condor
	"DLH": "LH", // Lufthansa
	"EIN": "EI", // Aer Lingus
	"EJU": "EC", // easyJet Europe
	"EWG": "EW", // Eurowings
	"EZS": "DS", // easyJet Switzerland
	"EZY": "U2", // easyJet
	"FIN": "AY", // Finnair
	"IBE": "IB", // Iberia
	"IBS": "I2", // Iberia Express
	"JAF": "TB", // TUI fly Belgium
	"KLM": "KL", // KLM
	"LOT": "LO", // LOT Polish Airlines
	"MAC": "3O", // Air Arabia Maroc
	"NAX": "DY", // Norwegian
	"NOZ": "D8", // Norwegian Air Sweden
	"RYR": "FR", // Ryanair
	"SAS": "SK", // SAS
	"SWR": "LX", // Swiss
	"SXS": "XQ", // SunExpress
	"TAP": "TP", // TAP Air Portugal
	"THY": "TK", // Turkish Airlines
	"TRA": "HV", // Transavia
	"TVF": "TO", // Transavia France
	"TUI": "X3", // TUIfly
	"VLG": "VY", // Vueling
	"VOE": "V7", // Volotea
	"WZZ": "W6", // Wizz Air
}

// NormalizeCarrierCode strips every non-alphanumeric character and, when the
// remainder looks like an ICAO code (longer than two characters), maps it to
// IATA. Unknown over-length codes pass through unchanged.
func NormalizeCarrierCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	if len(stripped) > 2 {
		if iata, ok := icaoToIATA[stripped]; ok {
			return iata
		}
	}
	return stripped
}
