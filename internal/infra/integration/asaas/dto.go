package asaas

// --- DTOs públicos: o que o resto do sistema manda/recebe ---

type CustomerInput struct {
	Name        string
	Email       string
	CpfCnpj     string
	Phone       string
	MobilePhone string
	// ExternalReference costuma ser o id do lead no CRM
	ExternalReference string
}

type SubscriptionInput struct {
	CustomerID        string
	ValueCents        int64
	Cycle             string // MONTHLY, YEARLY
	BillingType       string // UNDEFINED, PIX, BOLETO, CREDIT_CARD
	Description       string
	ExternalReference string
}

type SubscriptionOutput struct {
	ID     string
	Status string
}

type PaymentInput struct {
	CustomerID        string
	ValueCents        int64
	BillingType       string
	Description       string
	DueDate           string // YYYY-MM-DD; vazio = hoje
	ExternalReference string
}

type PaymentOutput struct {
	ID         string
	Status     string
	InvoiceURL string
}

// WebhookEvent é o corpo que o Asaas manda para o nosso webhook.
type WebhookEvent struct {
	ID      string         `json:"id"`
	Event   string         `json:"event"`
	Payment WebhookPayment `json:"payment"`
}

type WebhookPayment struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	Subscription      string  `json:"subscription"`
	Value             float64 `json:"value"`
	NetValue          float64 `json:"netValue"`
	BillingType       string  `json:"billingType"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"externalReference"`
	InvoiceURL        string  `json:"invoiceUrl"`
}

// Eventos de webhook que confirmam pagamento
const (
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
	EventPaymentReceived  = "PAYMENT_RECEIVED"
)

// --- PAYLOADS internos: o que mandamos pro Asaas ---

type createCustomerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	CpfCnpj              string `json:"cpfCnpj"`
	Phone                string `json:"phone,omitempty"`
	MobilePhone          string `json:"mobilePhone,omitempty"`
	ExternalReference    string `json:"externalReference,omitempty"`
	NotificationDisabled bool   `json:"notificationDisabled"`
}

type createSubscriptionRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	NextDueDate       string  `json:"nextDueDate"`
	Cycle             string  `json:"cycle"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

type createPaymentRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

// --- RESPONSES: o que o Asaas devolve ---

type customerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type customerListResponse struct {
	Data       []customerResponse `json:"data"`
	TotalCount int                `json:"totalCount"`
}

type subscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paymentResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	InvoiceURL string `json:"invoiceUrl"`
}

type paymentListResponse struct {
	Data []paymentResponse `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}
