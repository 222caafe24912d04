package enhance

import "strings"

// synonymGroups is the built-in multilingual fallback table. Each group
// holds equivalent terms across English, Portuguese and Spanish for domains
// that recur in personal vaults (bills, receipts, appointments). When the
// language service is unavailable this table is the only bridge between
// query language and record language.
var synonymGroups = [][]string{
	{"bill", "invoice", "conta", "fatura", "factura", "boleto"},
	{"electricity", "luz", "energia", "electricidad"},
	{"water", "agua", "água"},
	{"receipt", "recibo", "comprovante", "voucher"},
	{"payment", "pagamento", "pago"},
	{"appointment", "consulta", "cita", "agendamento"},
	{"doctor", "medico", "médico", "dentista"},
	{"deadline", "prazo", "vencimento"},
	{"rent", "aluguel", "renta"},
	{"tax", "imposto", "impuesto"},
}

// synonymIndex maps each term to its group for O(1) expansion.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string][]string {
	idx := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, term := range group {
			idx[term] = group
		}
	}
	return idx
}

// expandSynonyms appends known synonyms of every query token to the text.
// Tokens without table entries pass through untouched; the original text is
// always a prefix of the result.
func expandSynonyms(text string) string {
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		seen[tok] = struct{}{}
	}

	var extra []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		group, ok := synonymIndex[tok]
		if !ok {
			continue
		}
		for _, syn := range group {
			if _, dup := seen[syn]; dup {
				continue
			}
			seen[syn] = struct{}{}
			extra = append(extra, syn)
		}
	}

	if len(extra) == 0 {
		return text
	}
	return text + " " + strings.Join(extra, " ")
}
