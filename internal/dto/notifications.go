package dto

// MarkNotificationsRequest marks either the listed notifications or, with
// markAll, every unread notification of the caller.
type MarkNotificationsRequest struct {
	NotificationIDs []string `json:"notificationIds"`
	MarkAll         bool     `json:"markAll"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
