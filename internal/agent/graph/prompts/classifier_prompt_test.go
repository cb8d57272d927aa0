package prompts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenerd/server/internal/agent/model"
)

func TestRenderClassifierSystemSubstitutesTokens(t *testing.T) {
	out, err := RenderClassifierSystem(context.Background(), &model.PromptConfig{
		AssistantName: "GameNerd",
		Domain:        "sports and gaming",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "GameNerd")
	assert.Contains(t, out, "sports and gaming")
	assert.NotContains(t, out, "{assistant_name}")
	assert.NotContains(t, out, "{domain}")
	assert.NotContains(t, out, "{sport_id_table}")
}

func TestRenderClassifierSystemSportIDsMatchModel(t *testing.T) {
	out, err := RenderClassifierSystem(context.Background(), &model.PromptConfig{
		AssistantName: "GameNerd",
		Domain:        "sports and gaming",
	})
	require.NoError(t, err)

	// every id the pipeline resolves must be offered to the classifier with
	// the exact same label
	for id, name := range model.SportNames {
		assert.Contains(t, out, fmt.Sprintf("%d=%s", id, name))
	}
}

func TestRenderClassifierSystemNilConfig(t *testing.T) {
	_, err := RenderClassifierSystem(context.Background(), nil)
	assert.Error(t, err)
}
