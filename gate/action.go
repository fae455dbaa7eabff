package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionList   Action = "list"
	ActionExport Action = "export"
)
