package dropmail

// introduceSessionData is the data payload of the introduceSession
// mutation.
type introduceSessionData struct {
	IntroduceSession struct {
		ID        string `json:"id"`
		ExpiresAt string `json:"expiresAt"`
		Addresses []struct {
			Address string `json:"address"`
		} `json:"addresses"`
	} `json:"introduceSession"`
}

// sessionData is the data payload of the session query. The session is
// null once it has expired.
type sessionData struct {
	Session *struct {
		Mails []mailEntry `json:"mails"`
	} `json:"session"`
}

type mailEntry struct {
	ID            string `json:"id"`
	FromAddr      string `json:"fromAddr"`
	HeaderSubject string `json:"headerSubject"`
	Text          string `json:"text"`
	ReceivedAt    string `json:"receivedAt"`
}
