package nodes

const (
	NodeContextLoader  = "ContextLoader"
	NodeAssistantModel = "AssistantModel"
	NodeToolDispatcher = "ToolDispatcher"
	NodeSummaryModel   = "SummaryModel"
	NodeFinalizer      = "Finalizer"
)
