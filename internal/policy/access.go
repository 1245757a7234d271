// Package policy decides whether an account may use a model.
package policy

import "llm_gateway/internal/model"

// Reason explains a denied decision.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonUnknownUser          Reason = "unknown_user"
	ReasonUnknownModel         Reason = "unknown_model"
	ReasonSubscriptionRequired Reason = "subscription_required"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
	Model   model.ModelDescriptor // zero unless the model was found
}

func allow(m model.ModelDescriptor) Decision { return Decision{Allowed: true, Model: m} }

func deny(r Reason, m model.ModelDescriptor) Decision { return Decision{Reason: r, Model: m} }

// Policy evaluates access against a static catalog.
type Policy struct {
	catalog *model.Catalog
}

func New(catalog *model.Catalog) *Policy {
	return &Policy{catalog: catalog}
}

// Authorize is pure: it reads the catalog and the account snapshot and
// never mutates either.
func (p *Policy) Authorize(account *model.Account, modelID string) Decision {
	if account == nil {
		return deny(ReasonUnknownUser, model.ModelDescriptor{})
	}
	m, ok := p.catalog.Lookup(modelID)
	if !ok {
		return deny(ReasonUnknownModel, model.ModelDescriptor{})
	}
	if m.Premium && !account.Subscribed {
		return deny(ReasonSubscriptionRequired, m)
	}
	return allow(m)
}
