package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func assistantContributor() *types.Contributor {
	return &types.Contributor{
		ID:    uuid.New(),
		Name:  "Marie",
		Email: "marie@example.com",
		Role:  types.ContributorRoleContributor,
	}
}

func TestChatAnswersLocallyWithoutWebhook(t *testing.T) {
	log := testutil.Logger(t)
	assistant := NewAssistantService(log, "", "")
	ctx := context.Background()
	contributor := assistantContributor()

	reply, err := assistant.Chat(ctx, contributor, "Bonjour !")
	require.NoError(t, err)
	require.Equal(t, "local", reply.Source)
	require.Contains(t, reply.Response, "Marie")

	reply, err = assistant.Chat(ctx, contributor, "Comment créer une entité ?")
	require.NoError(t, err)
	require.Contains(t, reply.Response, "Brouillon")

	reply, err = assistant.Chat(ctx, contributor, "xyzzy")
	require.NoError(t, err)
	require.Contains(t, reply.Response, "reformuler")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	log := testutil.Logger(t)
	assistant := NewAssistantService(log, "", "")

	_, err := assistant.Chat(context.Background(), assistantContributor(), "   ")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestChatForwardsToWebhook(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"output":"webhook answer"}`)
	}))
	defer server.Close()

	log := testutil.Logger(t)
	assistant := NewAssistantService(log, server.URL, "hook-key")
	contributor := assistantContributor()

	reply, err := assistant.Chat(context.Background(), contributor, "question")
	require.NoError(t, err)
	require.Equal(t, "webhook", reply.Source)
	require.Equal(t, "webhook answer", reply.Response)

	require.Equal(t, "Bearer hook-key", gotAuth)
	require.Equal(t, "question", gotPayload["message"])
	user, ok := gotPayload["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, contributor.Email, user["email"])
}

func TestChatFallsBackWhenWebhookFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	log := testutil.Logger(t)
	assistant := NewAssistantService(log, server.URL, "")

	reply, err := assistant.Chat(context.Background(), assistantContributor(), "aide")
	require.NoError(t, err)
	require.Equal(t, "local", reply.Source)
	require.NotEmpty(t, reply.Response)
}

func TestHistoryIsPerContributorCappedAndClearable(t *testing.T) {
	log := testutil.Logger(t)
	assistant := NewAssistantService(log, "", "")
	ctx := context.Background()
	first := assistantContributor()
	second := assistantContributor()

	for i := 0; i < assistantHistoryLimit; i++ {
		_, err := assistant.Chat(ctx, first, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}
	_, err := assistant.Chat(ctx, second, "autre conversation")
	require.NoError(t, err)

	// Each exchange stores two turns, so old ones roll off the cap.
	history := assistant.History(ctx, first.ID)
	require.Len(t, history, assistantHistoryLimit)
	require.Equal(t, "assistant", history[len(history)-1].Role)
	require.False(t, strings.Contains(history[0].Content, "message 0"))

	require.Len(t, assistant.History(ctx, second.ID), 2)

	assistant.ClearHistory(ctx, first.ID)
	require.Empty(t, assistant.History(ctx, first.ID))
	require.Len(t, assistant.History(ctx, second.ID), 2)
}
