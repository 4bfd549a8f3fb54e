package dto

// CreateEditRequestBody is the optional body of an edit-access request
type CreateEditRequestBody struct {
	Reason string `json:"reason" validate:"max=2000"`
}

// ResolveEditRequestBody carries the owner's decision
type ResolveEditRequestBody struct {
	Action string `json:"action" validate:"required,oneof=approved rejected"`
}
