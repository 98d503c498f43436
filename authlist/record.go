// Package authlist keeps the list of applications a user has authorized,
// loads it from the account API and revokes entries on request.
//
// A List owns the state and runs every request as its own task; a Row
// renders one record together with its revoke control.
package authlist

// Record is one authorized application as returned by the list endpoint.
// Fields other than these three are dropped on decode.
type Record struct {
	ClientID   string `json:"clientId" yaml:"clientId"`
	ClientName string `json:"clientName" yaml:"clientName"`
	Issued     string `json:"issued" yaml:"issued"` // display only, never parsed
}
