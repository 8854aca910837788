package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fantasy-ai/backend/internal/interfaces"
)

// CharacterHandler serves the public character catalog.
type CharacterHandler struct {
	service interfaces.CharacterService
}

func NewCharacterHandler(svc interfaces.CharacterService) *CharacterHandler {
	return &CharacterHandler{service: svc}
}

// GetCategories godoc
// @Summary      List categories
// @Description  Returns every assistant category shown on the home screen.
// @Tags         Characters
// @Produce      json
// @Success      200  {array}   model.Category
// @Router       /v1/categories [get]
func (h *CharacterHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Categories())
}

// GetCategoryCharacters godoc
// @Summary      List characters of a category
// @Tags         Characters
// @Produce      json
// @Param        category  path      string  true  "Category title"
// @Success      200       {array}   model.Character
// @Failure      500       {object}  ErrorResponse
// @Router       /v1/categories/{category}/characters [get]
func (h *CharacterHandler) GetCategoryCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := h.service.ByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chars)
}

// GetCharacter godoc
// @Summary      Get a character
// @Description  Resolves a character from the remote table, falling back to the built-in catalog.
// @Tags         Characters
// @Produce      json
// @Param        characterID  path      string  true  "Character ID"
// @Success      200          {object}  model.Character
// @Failure      400          {object}  ErrorResponse
// @Failure      404          {object}  ErrorResponse
// @Router       /v1/characters/{characterID} [get]
func (h *CharacterHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	ch, err := h.service.Get(r.Context(), chi.URLParam(r, "characterID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ch)
}
