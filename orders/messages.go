package orders

// Message is a user-facing toast/alert.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Icon  string `json:"icon"` // "success", "error", "warning"
}

var statusMessages = map[Status]Message{
	StatusDispatched: {Title: "Order Dispatched!", Text: "The order has been dispatched", Icon: "success"},
	StatusCancelled:  {Title: "Order Cancelled!", Text: "The order has been cancelled", Icon: "error"},
	StatusCompleted:  {Title: "Order Completed!", Text: "The order has been completed", Icon: "success"},
	StatusProcessing: {Title: "Order Processing!", Text: "The order is being processed", Icon: "success"},
	StatusPending:    {Title: "Order Pending!", Text: "The order is pending", Icon: "success"},
}

var (
	MsgStatusFailed  = Message{Title: "Error!", Text: "Failed to update status.", Icon: "error"}
	MsgDeleted       = Message{Title: "Deleted!", Text: "The order has been removed.", Icon: "success"}
	MsgDeleteFailed  = Message{Title: "Error!", Text: "Failed to delete the order.", Icon: "error"}
	MsgLoginFailed   = Message{Title: "Login failed", Text: "Invalid email or password", Icon: "error"}
	MsgConfirmDelete = Message{Title: "Are you sure?", Text: "This action cannot be undone!", Icon: "warning"}
)

// StatusMessage returns the confirmation shown after a successful change to s.
func StatusMessage(s Status) Message {
	if m, ok := statusMessages[s]; ok {
		return m
	}
	return MsgStatusFailed
}
