package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
)

// PushNotifier define o contrato do push para o painel do agente.
type PushNotifier interface {
	NotifyAssignment(ctx context.Context, payload AssignmentPayload) error
}

// AgentMailer é o canal secundário: e-mail para o agente quando ele tem um.
type AgentMailer interface {
	SendNewLead(to, agentName, leadName, panelLink string) error
}

type Worker struct {
	Channel *amqp.Channel
	Push    PushNotifier
	Mailer  AgentMailer
}

func NewWorker(ch *amqp.Channel, push PushNotifier, mailer AgentMailer) *Worker {
	return &Worker{
		Channel: ch,
		Push:    push,
		Mailer:  mailer,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload AssignmentPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [NOTIFICADOR] JSON inválido: %s", err)
				// Mensagem podre. Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [NOTIFICADOR] Lead %s → agente %s (%s)", payload.LeadID, payload.AgentName, payload.Origin)

			if err := w.Push.NotifyAssignment(context.Background(), payload); err != nil {
				// Falha de notificação nunca volta para a atribuição;
				// vai para a DLQ e fica registrada.
				log.Printf("⚠️ [NOTIFICADOR] Push falhou para %s: %s", payload.AgentName, err)
				middleware.RecordNotificationError("painel")
				d.Nack(false, false)
				continue
			}

			if payload.AgentEmail != "" && w.Mailer != nil {
				if err := w.Mailer.SendNewLead(payload.AgentEmail, payload.AgentName, payload.LeadName, payload.PanelLink); err != nil {
					log.Printf("⚠️ [NOTIFICADOR] E-mail falhou para %s: %s", payload.AgentEmail, err)
					middleware.RecordNotificationError("email")
					// push já foi, então o evento conta como entregue
				}
			}

			d.Ack(false)
		}
	}()

	log.Printf(" [*] Notificador rodando e aguardando na fila '%s'", queueName)
	<-forever
}
