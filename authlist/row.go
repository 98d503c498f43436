package authlist

// RowView is one rendered record with its revoke trigger. Revoking only
// reports the client id to OnRevoke; the row neither changes nor talks to
// the server itself.
type RowView struct {
	Record   Record
	OnRevoke func(clientID string)
}

// Revoke invokes OnRevoke with the row's client id.
func (v RowView) Revoke() {
	if v.OnRevoke != nil {
		v.OnRevoke(v.Record.ClientID)
	}
}
