package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing is the USD cost per 1M text tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

var modelPricing = map[string]Pricing{
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.0-flash":      {InputPerM: 0.10, OutputPerM: 0.40},
}

// Usage is the cost of a single model call.
type Usage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	InputCostUSD     float64
	OutputCostUSD    float64
}

func (u Usage) TotalUSD() float64 { return u.InputCostUSD + u.OutputCostUSD }

// PricingFor returns zero pricing for unknown models.
func PricingFor(model string) Pricing {
	return modelPricing[model]
}

// CostOf converts a response's token usage into a Usage entry.
func CostOf(model string, usage *schema.TokenUsage) Usage {
	u := Usage{Model: model}
	if usage == nil {
		return u
	}
	p := PricingFor(model)
	u.PromptTokens = usage.PromptTokens
	u.CompletionTokens = usage.CompletionTokens
	u.InputCostUSD = p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0
	u.OutputCostUSD = p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0
	return u
}
