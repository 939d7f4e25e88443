package mail

// SMTPSender envia pelo servidor SMTP configurado (fallback quando não há API).
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// APISender envia pela API HTTP de e-mail transacional.
type APISender struct {
	apiKey   string
	url      string
	from     string
	fromName string
	http     httpDoer
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendEmailResponse struct {
	ID string `json:"id"`
}
