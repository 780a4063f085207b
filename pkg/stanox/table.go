package stanox

// builtinTable maps STANOX location identifiers to public CRS station
// codes. This information changes very infrequently; corrections and
// additions learned at runtime are layered on top via the override file.
// Alias entries cover providers that report non-standard identifiers for
// the same physical location.
func builtinTable() map[string]string {
	return map[string]string{
		"36201": "KGX", // London Kings Cross
		"36203": "KGX", // London Kings Cross (alias used by freight feeds)
		"87701": "EUS", // London Euston
		"31510": "STP", // London St Pancras International
		"87031": "WAT", // London Waterloo
		"87219": "VIC", // London Victoria
		"87261": "LBG", // London Bridge
		"87271": "CHX", // London Charing Cross
		"87011": "PAD", // London Paddington
		"87081": "LST", // London Liverpool Street
		"87501": "MYB", // London Marylebone
		"87451": "FST", // London Fenchurch Street
		"88486": "CLJ", // Clapham Junction
		"88489": "CLJ", // Clapham Junction (Windsor lines alias)
		"72277": "MAN", // Manchester Piccadilly
		"72410": "MCV", // Manchester Victoria
		"72215": "MCO", // Manchester Oxford Road
		"42152": "BHM", // Birmingham New Street
		"68269": "LDS", // Leeds
		"65311": "YRK", // York
		"51511": "NCL", // Newcastle
		"30511": "EDB", // Edinburgh Waverley
		"31511": "GLC", // Glasgow Central
		"31512": "GLQ", // Glasgow Queen Street
		"37201": "SHF", // Sheffield
		"56111": "LIV", // Liverpool Lime Street
		"38101": "NOT", // Nottingham
		"48201": "BRI", // Bristol Temple Meads
		"86981": "RDG", // Reading
		"86397": "OXF", // Oxford
		"89428": "BTN", // Brighton
		"89530": "GTW", // Gatwick Airport
		"87741": "SOU", // Southampton Central
		"82311": "CDF", // Cardiff Central
		"52215": "CAR", // Carlisle
		"24799": "PRE", // Preston
		"66341": "DON", // Doncaster
		"64309": "DAR", // Darlington
		"43211": "COV", // Coventry
		"61101": "PBO", // Peterborough
		"61512": "CBG", // Cambridge
		"40201": "LEI", // Leicester
		"83511": "EXD", // Exeter St Davids
		"78311": "PLY", // Plymouth
	}
}
