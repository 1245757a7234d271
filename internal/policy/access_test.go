package policy

import (
	"testing"
	"time"

	"llm_gateway/internal/model"

	"github.com/stretchr/testify/assert"
)

func testCatalog() *model.Catalog {
	return model.NewCatalog(
		model.ModelDescriptor{ID: "free", Name: "Free"},
		model.ModelDescriptor{ID: "paid", Name: "Paid", Premium: true},
	)
}

func TestAuthorize_Matrix(t *testing.T) {
	p := New(testCatalog())

	tests := []struct {
		name       string
		subscribed bool
		modelID    string
		allowed    bool
		reason     Reason
	}{
		{"free model, not subscribed", false, "free", true, ReasonNone},
		{"premium model, not subscribed", false, "paid", false, ReasonSubscriptionRequired},
		{"premium model, subscribed", true, "paid", true, ReasonNone},
		{"free model, subscribed", true, "free", true, ReasonNone},
		{"unknown model, not subscribed", false, "gpt-9", false, ReasonUnknownModel},
		{"unknown model, subscribed", true, "gpt-9", false, ReasonUnknownModel},
		{"empty model id", true, "", false, ReasonUnknownModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Authorize(&model.Account{Phone: "+15550001111", Subscribed: tt.subscribed}, tt.modelID)
			assert.Equal(t, tt.allowed, got.Allowed)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestAuthorize_NilAccount(t *testing.T) {
	p := New(testCatalog())

	got := p.Authorize(nil, "free")
	assert.False(t, got.Allowed)
	assert.Equal(t, ReasonUnknownUser, got.Reason)
}

func TestAuthorize_IsPure(t *testing.T) {
	catalog := testCatalog()
	p := New(catalog)
	before := catalog.List()
	account := &model.Account{Phone: "+15550001111", Subscribed: false, CreatedAt: time.Unix(1700000000, 0)}
	snapshot := *account

	first := p.Authorize(account, "paid")
	second := p.Authorize(account, "paid")

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, *account)
	assert.Equal(t, before, catalog.List())
}

func TestAuthorize_ReturnsDescriptor(t *testing.T) {
	p := New(model.DefaultCatalog())

	got := p.Authorize(&model.Account{Subscribed: true}, "deepseek-r1:1.5b")
	assert.True(t, got.Allowed)
	assert.Equal(t, "DeepSeek R1 (1.5b)", got.Model.Name)
}
