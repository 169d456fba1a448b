package scheme

// FormulaDescription is the client-facing view of one formula.
type FormulaDescription struct {
	Index       int    `json:"index"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Final       bool   `json:"final"`
	Definition  string `json:"definition"`
}

// Description is the client-facing view of a scheme, shared by the HTTP API,
// the MCP server and the describe command.
type Description struct {
	Alphabet    string               `json:"alphabet"`
	Extension   string               `json:"extension,omitempty"`
	Delimiter   string               `json:"delimiter"`
	FinalMarker string               `json:"final_marker"`
	Formulas    []FormulaDescription `json:"formulas"`
}

// Describe returns the scheme's Description.
func (s *Scheme) Describe() Description {
	d := Description{
		Alphabet:    string(s.alphabet.Main()),
		Extension:   string(s.alphabet.Extension()),
		Delimiter:   string(s.syntax.Delimiter),
		FinalMarker: string(s.syntax.FinalMarker),
		Formulas:    make([]FormulaDescription, 0, len(s.formulas)),
	}
	for i, f := range s.formulas {
		d.Formulas = append(d.Formulas, FormulaDescription{
			Index:       i,
			Pattern:     f.Pattern,
			Replacement: f.Replacement,
			Final:       f.Final,
			Definition:  f.Format(s.syntax),
		})
	}
	return d
}
