package request

type UpdateRuleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Value       string `json:"value" binding:"required"`
	ValueType   string `json:"value_type" binding:"required,oneof=INTEGER DECIMAL STRING BOOLEAN"`
}
