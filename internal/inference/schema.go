package inference

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"

	"signal-desk/internal/domain"
)

// noExtra marshals as `false`, which strict structured output requires for additionalProperties.
var noExtra = &jsonschema.Schema{Not: &jsonschema.Schema{}}

var analysisSchema = func() *jsonschema.Schema {
	verdicts := make([]any, len(domain.Verdicts))
	for i, v := range domain.Verdicts {
		verdicts[i] = string(v)
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"nextCandle":         {Type: "string", Enum: verdicts},
			"confidence":         {Type: "number"},
			"patternsIdentified": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"reasoning":          {Type: "string"},
		},
		Required:             []string{"nextCandle", "confidence", "patternsIdentified", "reasoning"},
		AdditionalProperties: noExtra,
	}
}()

var signalBatchSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"signals": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"pair":        {Type: "string"},
					"time":        {Type: "string", Description: "HH:mm, 24-hour local time"},
					"type":        {Type: "string", Enum: []any{"CALL", "PUT"}},
					"probability": {Type: "number"},
					"logic":       {Type: "string"},
				},
				Required:             []string{"pair", "time", "type", "probability", "logic"},
				AdditionalProperties: noExtra,
			},
		},
	},
	Required:             []string{"signals"},
	AdditionalProperties: noExtra,
}

func jsonSchemaFormat(name string, schema *jsonschema.Schema) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
}
