package server

import (
	"net/http"
)

func (s *Server) handleFigureCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.FigureCatalog()

	var families []map[string]interface{}
	for _, fam := range cat.Families() {
		var variants []map[string]interface{}
		for _, v := range cat.Variants(fam.Name) {
			required := make([]string, len(v.Required))
			for i, rc := range v.Required {
				required[i] = rc.Label()
			}
			variants = append(variants, map[string]interface{}{
				"key":      v.Key(),
				"name":     v.Name,
				"suit":     v.Suit.String(),
				"required": required,
				"produces": v.Produces,
				"requires": v.Requires,
			})
		}
		families = append(families, map[string]interface{}{
			"name":         fam.Name,
			"color":        fam.Color.String(),
			"field":        fam.Field.String(),
			"description":  fam.Description,
			"upgrade_only": fam.UpgradeOnly,
			"variants":     variants,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"families": families,
	})
}

func (s *Server) handleSpellCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.SpellCatalog()

	var families []map[string]interface{}
	for _, fam := range cat.Families() {
		var variants []map[string]interface{}
		for _, v := range cat.Variants(fam.Name) {
			specs := make([]string, len(v.Cards))
			for i, spec := range v.Cards {
				specs[i] = spec.Label()
			}
			variants = append(variants, map[string]interface{}{
				"primary_suit": v.PrimarySuit.String(),
				"cards":        specs,
			})
		}
		families = append(families, map[string]interface{}{
			"name":                      fam.Name,
			"type":                      fam.Type.String(),
			"description":               fam.Description,
			"counterable":               fam.Counterable,
			"counter_only":              fam.CounterOnly,
			"needs_target":              fam.NeedsTargetFigure,
			"possible_during_ceasefire": fam.PossibleDuringCeasefire,
			"variants":                  variants,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"families": families,
	})
}
