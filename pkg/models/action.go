package models

// ActionType identifies which handler an action descriptor dispatches to.
type ActionType string

const (
	ActionTypeHTTPRequest       ActionType = "httpRequest"
	ActionTypeEmailNotification ActionType = "emailNotification"
	ActionTypeModuleFunction    ActionType = "moduleFunction"
	ActionTypeUpdateRecord      ActionType = "updateRecord"
	ActionTypeCreateRecord      ActionType = "createRecord"
	ActionTypeWebhook           ActionType = "webhook"
)

// ActionDescriptor is one typed side-effecting step within an automation's
// pipeline. Config is opaque to the scheduler core and forwarded verbatim
// to the handler registered for Type.
type ActionDescriptor struct {
	Type   ActionType     `json:"type"   validate:"required,oneof=httpRequest emailNotification moduleFunction updateRecord createRecord webhook"`
	Config map[string]any `json:"config"`
}
