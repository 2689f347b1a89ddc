package painel

type NotificationRequest struct {
	AgentID  string `json:"agent_id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	DeepLink string `json:"deep_link"`
	Tag      string `json:"tag"` // novo_lead | lead_reatribuido
}
