package handlers

import (
	"net/http"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/models"
	"github.com/Dosada05/tourney/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// PreviewHandler godoc
// @Summary Построить сетку без сохранения
// @Tags brackets
// @Accept json
// @Produce json
// @Param input body object true "Участники в порядке посева: {competitors: [{id, name}]}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Пустой список или повторяющиеся ID"
// @Router /brackets/preview [post]
func (h *BracketHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Competitors []models.Competitor `json:"competitors"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.PreviewBracket(r.Context(), input.Competitors)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	rounds := brackets.RoundsFor(len(input.Competitors))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches, "rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
