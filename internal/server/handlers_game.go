package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nepalkings/kings-server/internal/game/cards"
)

func parseSuit(name string) (cards.Suit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spades":
		return cards.Spades, nil
	case "hearts":
		return cards.Hearts, nil
	case "diamonds":
		return cards.Diamonds, nil
	case "clubs":
		return cards.Clubs, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", name)
	}
}

type createGameRequest struct {
	InvaderUserID  string `json:"invader_user_id"`
	DefenderUserID string `json:"defender_user_id"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	gameID, err := s.engine.CreateGame(req.InvaderUserID, req.DefenderUserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	invader, err := s.engine.PlayerByUser(gameID, req.InvaderUserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defender, err := s.engine.PlayerByUser(gameID, req.DefenderUserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":            true,
		"game_id":            gameID,
		"invader_player_id":  invader.ID,
		"defender_player_id": defender.ID,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.View(r.PathValue("id"), r.URL.Query().Get("player_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.CalculateResources(r.PathValue("id"), r.URL.Query().Get("player_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"produces": summary.Produces,
		"requires": summary.Requires,
		"deficits": summary.Deficits(),
	})
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *Server) handleStartTurn(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	report, err := s.engine.StartTurn(r.PathValue("id"), req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.engine.EndTurn(r.PathValue("id"), req.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type findBuildableRequest struct {
	PlayerID string `json:"player_id"`
	Family   string `json:"family,omitempty"`
}

func (s *Server) handleFindBuildable(w http.ResponseWriter, r *http.Request) {
	var req findBuildableRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	buildable, err := s.engine.FindBuildableFigures(r.PathValue("id"), req.PlayerID, req.Family)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := make(map[string][]map[string]interface{}, len(buildable))
	for family, variants := range buildable {
		for _, v := range variants {
			required := make([]string, len(v.Required))
			for i, rc := range v.Required {
				required[i] = rc.Label()
			}
			result[family] = append(result[family], map[string]interface{}{
				"key":      v.Key(),
				"name":     v.Name,
				"required": required,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"buildable": result,
	})
}

type buildFigureRequest struct {
	PlayerID   string `json:"player_id"`
	VariantKey string `json:"variant_key"`
}

func (s *Server) handleBuildFigure(w http.ResponseWriter, r *http.Request) {
	var req buildFigureRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	fig, err := s.engine.BuildFigure(r.PathValue("id"), req.PlayerID, req.VariantKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"figure_id":   fig.ID,
		"figure_name": fig.Name,
	})
}

type upgradeFigureRequest struct {
	PlayerID     string `json:"player_id"`
	FigureID     string `json:"figure_id"`
	UseExtension bool   `json:"use_extension,omitempty"`
}

func (s *Server) handleUpgradeFigure(w http.ResponseWriter, r *http.Request) {
	var req upgradeFigureRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	fig, err := s.engine.UpgradeFigure(r.PathValue("id"), req.PlayerID, req.FigureID, req.UseExtension)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"figure_id":   fig.ID,
		"figure_name": fig.Name,
	})
}

type pickupFigureRequest struct {
	PlayerID string `json:"player_id"`
	FigureID string `json:"figure_id"`
}

func (s *Server) handlePickupFigure(w http.ResponseWriter, r *http.Request) {
	var req pickupFigureRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.engine.PickupFigure(r.PathValue("id"), req.PlayerID, req.FigureID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type castSpellRequest struct {
	PlayerID       string `json:"player_id"`
	Spell          string `json:"spell"`
	PrimarySuit    string `json:"primary_suit"`
	TargetFigureID string `json:"target_figure_id,omitempty"`
}

func (s *Server) handleCastSpell(w http.ResponseWriter, r *http.Request) {
	var req castSpellRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	suit, err := parseSuit(req.PrimarySuit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	spell, err := s.engine.CastSpell(r.PathValue("id"), req.PlayerID, req.Spell, suit, req.TargetFigureID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"spell_id": spell.ID,
		"pending":  spell.Pending,
	})
}

type counterSpellRequest struct {
	PlayerID    string `json:"player_id"`
	PrimarySuit string `json:"primary_suit"`
}

func (s *Server) handleCounterSpell(w http.ResponseWriter, r *http.Request) {
	var req counterSpellRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	suit, err := parseSuit(req.PrimarySuit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := s.engine.CounterSpell(r.PathValue("id"), req.PlayerID, suit); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleAllowSpell(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.engine.AllowSpell(r.PathValue("id"), req.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleEndInfiniteHammer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.engine.EndInfiniteHammer(r.PathValue("id"), req.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type discardRequest struct {
	PlayerID string   `json:"player_id"`
	CardIDs  []string `json:"card_ids"`
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	var req discardRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.engine.Discard(r.PathValue("id"), req.PlayerID, req.CardIDs); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type chatRequest struct {
	PlayerID string `json:"player_id"`
	Message  string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.engine.PostChat(r.PathValue("id"), req.PlayerID, strings.TrimSpace(req.Message)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
