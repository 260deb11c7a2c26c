package dto

// UpdateParameterRequest carries a new flag value.
type UpdateParameterRequest struct {
	Value string `json:"value"`
}
