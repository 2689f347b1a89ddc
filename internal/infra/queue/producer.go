package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AssignmentPayload é o evento "lead atribuído" que o notificador consome.
type AssignmentPayload struct {
	LeadID     string `json:"lead_id"`
	LeadName   string `json:"lead_name"`
	CategoryID string `json:"category_id"`
	SiteID     int    `json:"site_id"` // 0 = sem unidade
	AgentID    string `json:"agent_id"`
	AgentName  string `json:"agent_name"`
	AgentEmail string `json:"agent_email,omitempty"`
	PanelLink  string `json:"panel_link"`
	Origin     string `json:"origin"` // CAPTURA, MANUAL, LOTE, REATRIBUICAO
	Reassigned bool   `json:"reassigned"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishAssignment(ctx context.Context, payload AssignmentPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName, // ex.leads
		RoutingKey,   // k.assignment
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %v", err)
	}

	return nil
}
