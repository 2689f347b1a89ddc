package painel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// Client fala com a API de push do painel dos agentes.
type Client struct {
	apiToken string
	baseURL  string
	http     *http.Client
}

func NewClient() *Client {
	baseURL := os.Getenv("PAINEL_URL")
	if baseURL == "" {
		baseURL = "https://painel.liguemedicina.com/api/v1"
	}
	return &Client{
		apiToken: os.Getenv("PAINEL_API_TOKEN"),
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.apiToken != ""
}

func (c *Client) NotifyAssignment(ctx context.Context, payload queue.AssignmentPayload) error {
	if c.apiToken == "" {
		log.Println("⚠️ Painel: API_TOKEN não configurado")
		return fmt.Errorf("painel não configurado")
	}

	notif := NotificationRequest{
		AgentID:  payload.AgentID,
		Title:    "Novo lead para você",
		Message:  fmt.Sprintf("%s está aguardando contato", payload.LeadName),
		DeepLink: payload.PanelLink,
		Tag:      "novo_lead",
	}
	if payload.Reassigned {
		notif.Title = "Lead reatribuído para você"
		notif.Tag = "lead_reatribuido"
	}

	body, _ := json.Marshal(notif)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/notifications", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erro ao enviar push: %d - %s", resp.StatusCode, string(raw))
	}

	log.Printf("📲 Painel: push enviado para %s (lead %s)", payload.AgentName, payload.LeadID)
	return nil
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
