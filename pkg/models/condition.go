package models

// ConditionOperator is the comparison applied between a resolved field value
// and the condition's reference value.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "notEquals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greaterThan"
	OperatorLessThan    ConditionOperator = "lessThan"
)

// Condition is a single field/operator/value rule gating trigger automations.
// Field is a dotted path resolved against the event payload; a path that
// fails to resolve never matches.
type Condition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required,oneof=equals notEquals contains greaterThan lessThan"`
	Value    any               `json:"value"`
}
