package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	ProductionURL = "https://api.asaas.com/v3"
	SandboxURL    = "https://api-sandbox.asaas.com/v3"

	productionKeyPrefix = "$aact_prod_"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

// NewClient escolhe a URL pelo formato da chave; baseURL não vazio sobrescreve.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURLForKey(apiKey)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// BaseURLForKey: chaves de produção começam com $aact_prod_, o resto é sandbox.
func BaseURLForKey(apiKey string) string {
	if strings.HasPrefix(apiKey, productionKeyPrefix) {
		return ProductionURL
	}
	return SandboxURL
}

// FindOrCreateCustomer busca o cliente pelo CPF/CNPJ e só cria se não existir.
func (c *Client) FindOrCreateCustomer(ctx context.Context, input CustomerInput) (string, error) {
	cpfCnpj := onlyDigits(input.CpfCnpj)

	if cpfCnpj != "" {
		var list customerListResponse
		path := "/customers?cpfCnpj=" + url.QueryEscape(cpfCnpj)
		if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
			return "", fmt.Errorf("erro ao buscar cliente asaas: %w", err)
		}
		if len(list.Data) > 0 {
			return list.Data[0].ID, nil
		}
	}

	payload := createCustomerRequest{
		Name:                 input.Name,
		Email:                input.Email,
		CpfCnpj:              cpfCnpj,
		Phone:                input.Phone,
		MobilePhone:          input.MobilePhone,
		ExternalReference:    input.ExternalReference,
		NotificationDisabled: true, // os e-mails saem do portal, não do Asaas
	}

	var response customerResponse
	if err := c.do(ctx, http.MethodPost, "/customers", payload, &response); err != nil {
		return "", fmt.Errorf("erro criar cliente asaas: %w", err)
	}
	return response.ID, nil
}

func (c *Client) CreateSubscription(ctx context.Context, input SubscriptionInput) (*SubscriptionOutput, error) {
	cycle := input.Cycle
	if cycle == "" {
		cycle = "MONTHLY"
	}
	billing := input.BillingType
	if billing == "" {
		billing = "UNDEFINED"
	}

	payload := createSubscriptionRequest{
		Customer:          input.CustomerID,
		BillingType:       billing,
		Value:             CentsToReais(input.ValueCents),
		NextDueDate:       c.now().Format("2006-01-02"),
		Cycle:             cycle,
		Description:       input.Description,
		ExternalReference: input.ExternalReference,
	}

	var response subscriptionResponse
	if err := c.do(ctx, http.MethodPost, "/subscriptions", payload, &response); err != nil {
		return nil, fmt.Errorf("erro criar assinatura asaas: %w", err)
	}
	return &SubscriptionOutput{ID: response.ID, Status: response.Status}, nil
}

// CreatePayment cria uma cobrança avulsa (inscrição paga em evento).
func (c *Client) CreatePayment(ctx context.Context, input PaymentInput) (*PaymentOutput, error) {
	billing := input.BillingType
	if billing == "" {
		billing = "UNDEFINED"
	}
	due := input.DueDate
	if due == "" {
		due = c.now().Format("2006-01-02")
	}

	payload := createPaymentRequest{
		Customer:          input.CustomerID,
		BillingType:       billing,
		Value:             CentsToReais(input.ValueCents),
		DueDate:           due,
		Description:       input.Description,
		ExternalReference: input.ExternalReference,
	}

	var response paymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments", payload, &response); err != nil {
		return nil, fmt.Errorf("erro criar cobrança asaas: %w", err)
	}
	return &PaymentOutput{ID: response.ID, Status: response.Status, InvoiceURL: response.InvoiceURL}, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	path := "/subscriptions/" + url.PathEscape(subscriptionID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("erro cancelar assinatura asaas: %w", err)
	}
	return nil
}

// SubscriptionInvoiceURL devolve a fatura da primeira cobrança da assinatura.
func (c *Client) SubscriptionInvoiceURL(ctx context.Context, subscriptionID string) (string, error) {
	var list paymentListResponse
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/payments"
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return "", fmt.Errorf("erro buscar cobranças da assinatura: %w", err)
	}
	if len(list.Data) == 0 {
		return "", nil
	}
	return list.Data[0].InvoiceURL, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erro ao gerar json: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro na conexão com asaas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		log.WithFields(log.Fields{"status": resp.StatusCode, "path": path}).
			Errorf("❌ ERRO API ASAAS: %s", string(raw))
		return &APIError{StatusCode: resp.StatusCode, Message: describe(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erro ao ler resposta asaas: %w", err)
	}
	return nil
}

// setHeaders centraliza os headers obrigatórios
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PortalMulheres/1.0")
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api asaas rejeitou (status %d): %s", e.StatusCode, e.Message)
}

func describe(raw []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && len(parsed.Errors) > 0 {
		return parsed.Errors[0].Description
	}
	return strings.TrimSpace(string(raw))
}

// CentsToReais converte para o float que a API espera.
func CentsToReais(cents int64) float64 {
	return float64(cents) / 100
}

// ReaisToCents arredonda para o centavo mais próximo.
func ReaisToCents(value float64) int64 {
	if value < 0 {
		return int64(value*100 - 0.5)
	}
	return int64(value*100 + 0.5)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
