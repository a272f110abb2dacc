package models

// UserRecord is one entry of the terminal's user table.
//
// InternalID is the terminal's own numeric index for the record;
// ExternalID is the caller-assigned employee identifier and is the key
// every API operation uses. The two must not be confused: the terminal
// enforces uniqueness on InternalID, the reconciler enforces it on
// ExternalID.
type UserRecord struct {
	InternalID int       `json:"uid"`
	ExternalID string    `json:"user_id"`
	Name       string    `json:"name"`
	Privilege  Privilege `json:"privilege"`
	Password   string    `json:"password,omitempty"`
	GroupID    string    `json:"group_id,omitempty"`
}
