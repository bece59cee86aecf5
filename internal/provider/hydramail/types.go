package hydramail

// domainsResponse is the payload of GET /domains.
type domainsResponse struct {
	Members []domainEntry `json:"hydra:member"`
}

type domainEntry struct {
	Domain string `json:"domain"`
}

// accountRequest is the body of POST /accounts and POST /token.
type accountRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// tokenResponse is the payload of POST /token.
type tokenResponse struct {
	Token string `json:"token"`
}

// listResponse is the payload of GET /messages.
type listResponse struct {
	Members []messageSummary `json:"hydra:member"`
}

type messageSummary struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	From      fromAddr `json:"from"`
	CreatedAt string   `json:"createdAt"`
}

type fromAddr struct {
	Address string `json:"address"`
}

// messageDetail is the payload of GET /messages/{id}. The html field is
// a list of fragments on these services.
type messageDetail struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	From      fromAddr `json:"from"`
	CreatedAt string   `json:"createdAt"`
	Text      string   `json:"text"`
	HTML      []string `json:"html"`
	Size      int64    `json:"size"`
}
