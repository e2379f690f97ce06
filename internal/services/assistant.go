package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

const (
	assistantHistoryLimit = 50
	assistantContextSize  = 10
)

// AssistantMessage is one turn of an assistant conversation.
type AssistantMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AssistantReply is the answer plus where it came from: "webhook" when the
// configured workflow answered, "local" otherwise.
type AssistantReply struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}

type AssistantService interface {
	// Chat forwards the message to the configured webhook when one is set and
	// falls back to canned guidance when it is not, or when the webhook fails.
	Chat(ctx context.Context, contributor *types.Contributor, message string) (*AssistantReply, error)
	History(ctx context.Context, contributorID uuid.UUID) []AssistantMessage
	ClearHistory(ctx context.Context, contributorID uuid.UUID)
}

type assistantService struct {
	log        *logger.Logger
	webhookURL string
	apiKey     string
	client     *http.Client
	now        func() time.Time

	mu            sync.Mutex
	conversations map[uuid.UUID][]AssistantMessage
}

func NewAssistantService(log *logger.Logger, webhookURL, apiKey string) AssistantService {
	serviceLog := log.With("service", "AssistantService")
	return &assistantService{
		log:           serviceLog,
		webhookURL:    strings.TrimSpace(webhookURL),
		apiKey:        strings.TrimSpace(apiKey),
		client:        &http.Client{Timeout: 30 * time.Second},
		now:           time.Now,
		conversations: map[uuid.UUID][]AssistantMessage{},
	}
}

func (as *assistantService) Chat(ctx context.Context, contributor *types.Contributor, message string) (*AssistantReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, types.ValidationError("message is required")
	}

	as.append(contributor.ID, AssistantMessage{Role: "user", Content: message, Timestamp: as.now()})

	reply := &AssistantReply{Source: "local"}
	if as.webhookURL != "" {
		if answer, err := as.callWebhook(ctx, contributor, message); err != nil {
			as.log.Warn("Assistant webhook failed, using local reply", "error", err)
		} else {
			reply.Response = answer
			reply.Source = "webhook"
		}
	}
	if reply.Response == "" {
		reply.Response = localAssistantReply(message, contributor)
	}

	as.append(contributor.ID, AssistantMessage{Role: "assistant", Content: reply.Response, Timestamp: as.now()})
	return reply, nil
}

func (as *assistantService) callWebhook(ctx context.Context, contributor *types.Contributor, message string) (string, error) {
	payload := map[string]any{
		"message": message,
		"user": map[string]any{
			"id":    contributor.ID,
			"name":  contributor.Name,
			"email": contributor.Email,
			"role":  contributor.Role,
		},
		"history":   as.recent(contributor.ID, assistantContextSize),
		"timestamp": as.now().Format(time.RFC3339),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, as.webhookURL, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if as.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+as.apiKey)
	}

	resp, err := as.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var body struct {
		Response string `json:"response"`
		Output   string `json:"output"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	for _, candidate := range []string{body.Response, body.Output, body.Message} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("webhook returned an empty reply")
}

func (as *assistantService) History(ctx context.Context, contributorID uuid.UUID) []AssistantMessage {
	as.mu.Lock()
	defer as.mu.Unlock()
	history := as.conversations[contributorID]
	out := make([]AssistantMessage, len(history))
	copy(out, history)
	return out
}

func (as *assistantService) ClearHistory(ctx context.Context, contributorID uuid.UUID) {
	as.mu.Lock()
	defer as.mu.Unlock()
	delete(as.conversations, contributorID)
}

func (as *assistantService) append(contributorID uuid.UUID, msg AssistantMessage) {
	as.mu.Lock()
	defer as.mu.Unlock()
	history := append(as.conversations[contributorID], msg)
	if len(history) > assistantHistoryLimit {
		history = history[len(history)-assistantHistoryLimit:]
	}
	as.conversations[contributorID] = history
}

func (as *assistantService) recent(contributorID uuid.UUID, n int) []AssistantMessage {
	as.mu.Lock()
	defer as.mu.Unlock()
	history := as.conversations[contributorID]
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]AssistantMessage, len(history))
	copy(out, history)
	return out
}

// localAssistantReply answers common questions without any external workflow.
func localAssistantReply(message string, contributor *types.Contributor) string {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "bonjour", "salut", "hello", "hi"):
		return fmt.Sprintf("Bonjour %s ! Je suis votre assistant. Je peux vous aider avec la gestion des entités, les changements d'état, les versions et les statistiques.", contributor.Name)
	case containsAny(lower, "aide", "help"):
		return "Je peux vous aider avec : la création et la modification d'entités, les changements d'état du workflow, la gestion des versions et des fichiers, et les statistiques du dashboard. Que souhaitez-vous faire ?"
	case containsAny(lower, "état", "etat", "status", "workflow"):
		return "Les états du cycle de vie : Brouillon, Soumis, En révision, Validé, Publié (final) et Rejeté. Pour changer l'état d'une entité, ouvrez-la et utilisez \"Changer l'état\"."
	case containsAny(lower, "créer", "creer", "nouvelle", "ajouter"):
		return "Pour créer une entité : renseignez un nom, un type, une description et une priorité, ajoutez des contributeurs si nécessaire, puis validez. L'entité démarre en état Brouillon avec une version 1."
	case containsAny(lower, "version"):
		return "Chaque entité garde un historique de versions numérotées. Créez une nouvelle version pour figer le contenu, attachez des fichiers, et restaurez une version précédente si besoin."
	case containsAny(lower, "statistique", "stats", "dashboard"):
		return "Le dashboard montre le nombre total d'entités, la répartition par état et par type, les contributeurs actifs et l'activité récente."
	case containsAny(lower, "merci", "thanks"):
		return "De rien ! N'hésitez pas si vous avez d'autres questions."
	default:
		return "Je ne suis pas sûr de comprendre. Je peux vous renseigner sur la création d'entités, les états du workflow, les versions, les fichiers et les statistiques. Pouvez-vous reformuler ?"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
