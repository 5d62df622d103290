package api

import (
	"errors"
	"net/http"

	"circulation/internal/domain/rule"
	reqdto "circulation/internal/handler/dto/request"
	resdto "circulation/internal/handler/dto/response"
	"circulation/internal/usecase/commands"
	"circulation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	rules       commands.RuleCommands
	ruleQueries queries.RuleQueries
}

func NewRuleHandler(rules commands.RuleCommands, ruleQueries queries.RuleQueries) *RuleHandler {
	return &RuleHandler{
		rules:       rules,
		ruleQueries: ruleQueries,
	}
}

// @Summary List borrowing rules
// @Description List every borrowing policy rule
// @Tags rules
// @Produce json
// @Success 200 {array} resdto.RuleResponse
// @Router /rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	views, err := h.ruleQueries.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.RuleResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromRuleView(v)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get borrowing rule
// @Description Get one borrowing policy rule by key
// @Tags rules
// @Produce json
// @Param key path string true "Rule key"
// @Success 200 {object} resdto.RuleResponse
// @Failure 404 {object} map[string]string
// @Router /rules/{key} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	view, err := h.ruleQueries.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Rule not found",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRuleView(view))
}

// @Summary Update borrowing rule
// @Description Replace a rule's value, validating it under the declared type
// @Tags rules
// @Accept json
// @Produce json
// @Param key path string true "Rule key"
// @Param request body reqdto.UpdateRuleRequest true "Rule update"
// @Success 200 {object} resdto.RuleResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /rules/{key} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req reqdto.UpdateRuleRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	updated, err := h.rules.UpdateRule(c.Request.Context(), commands.UpdateRuleParams{
		Key:         c.Param("key"),
		Name:        req.Name,
		Description: req.Description,
		Value:       req.Value,
		ValueType:   rule.ValueType(req.ValueType),
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRuleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rule not found",
			})
		case errors.Is(err, commands.ErrInvalidRuleValue):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Rule value does not parse under its declared type",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromRule(updated))
}
