package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

const DefaultAPIURL = "https://api.resend.com/emails"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewAPISender(apiKey, url, from, fromName string) *APISender {
	if url == "" {
		url = DefaultAPIURL
	}
	return &APISender{
		apiKey:   apiKey,
		url:      url,
		from:     from,
		fromName: fromName,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send faz uma chamada HTTP por e-mail. Qualquer status fora de 2xx é erro,
// e a outbox decide se tenta de novo.
func (s *APISender) Send(ctx context.Context, email entity.EmailTask) error {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	payload, err := json.Marshal(sendEmailRequest{
		From:    from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao chamar API de e-mail: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API de e-mail respondeu %d: %s", resp.StatusCode, string(body))
	}

	var out sendEmailResponse
	_ = json.Unmarshal(body, &out)
	log.WithFields(log.Fields{"to": email.To, "template": email.Template, "message_id": out.ID}).Debug("📨 e-mail aceito pela API")
	return nil
}
