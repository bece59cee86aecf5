package guerrilla

import "encoding/json"

// createResponse is the payload of f=get_email_address.
type createResponse struct {
	EmailAddr string `json:"email_addr"`
	SidToken  string `json:"sid_token"`
}

// listResponse is the payload of f=get_email_list.
type listResponse struct {
	List []listEntry `json:"list"`
}

// listEntry is one message summary. Mail ids arrive as either JSON
// numbers or strings depending on the endpoint, so json.Number covers
// both.
type listEntry struct {
	MailID        json.Number `json:"mail_id"`
	MailFrom      string      `json:"mail_from"`
	MailSubject   string      `json:"mail_subject"`
	MailTimestamp json.Number `json:"mail_timestamp"`
	MailDate      string      `json:"mail_date"`
}

// fetchResponse is the payload of f=fetch_email.
type fetchResponse struct {
	MailID        json.Number `json:"mail_id"`
	MailFrom      string      `json:"mail_from"`
	MailSubject   string      `json:"mail_subject"`
	MailTimestamp json.Number `json:"mail_timestamp"`
	MailDate      string      `json:"mail_date"`
	MailBody      string      `json:"mail_body"`
	MailSize      json.Number `json:"mail_size"`
}
