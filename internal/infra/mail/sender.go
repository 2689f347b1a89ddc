package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
}

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

type newLeadEmailData struct {
	AgentName string
	LeadName  string
	PanelLink string
}

// Aviso curto, sem template em disco: duas linhas e o link do painel.
var newLeadTmpl = template.Must(template.New("novo-lead").Parse(`
<p>Olá, {{.AgentName}}!</p>
<p>O lead <strong>{{.LeadName}}</strong> acabou de entrar na sua fila.</p>
<p><a href="{{.PanelLink}}">Abrir no painel</a></p>
`))

func (s *EmailSender) SendNewLead(to, agentName, leadName, panelLink string) error {
	var body bytes.Buffer
	err := newLeadTmpl.Execute(&body, newLeadEmailData{
		AgentName: agentName,
		LeadName:  leadName,
		PanelLink: panelLink,
	})
	if err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "nao-responda@liguemedicina.com")
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Novo lead na sua fila: %s", leadName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
