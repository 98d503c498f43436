package mongodb

const (
	ClientsCollection = "oauth_clients" // OAuth clients
	TokensCollection  = "oauth_tokens"  // User OAuth tokens
)
