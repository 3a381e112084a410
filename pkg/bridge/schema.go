package bridge

import (
	"github.com/invopop/jsonschema"
)

// SchemaID identifies the wire-contract document.
const SchemaID = "https://folio.dev/schemas/bridge.v1.json"

const nodeRef = "#/$defs/FileTreeNode"

// Schema describes every channel's argument tuple and success payload as a
// JSON Schema document. Each channel is a property whose value holds an
// "args" and a "result" schema; x-mode and x-procedure carry the catalogue
// metadata.
func Schema() *jsonschema.Schema {
	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          jsonschema.ID(SchemaID),
		Title:       "folio bridge",
		Description: "Channels served by the privileged agent",
		Type:        "object",
		Definitions: jsonschema.Definitions{
			"FileTreeNode": nodeSchema(),
		},
		Properties: jsonschema.NewProperties(),
	}
	for _, spec := range Catalogue {
		props := jsonschema.NewProperties()
		props.Set("args", argsSchema(spec.Args))
		props.Set("result", resultSchema(spec.Channel))
		root.Properties.Set(string(spec.Channel), &jsonschema.Schema{
			Type:        "object",
			Description: "Fails when " + spec.Failure,
			Properties:  props,
			Required:    []string{"args", "result"},
			Extras: map[string]any{
				"x-mode":      string(spec.Mode),
				"x-procedure": spec.Channel.Procedure(),
			},
		})
	}
	return root
}

func argsSchema(names []string) *jsonschema.Schema {
	n := uint64(len(names))
	s := &jsonschema.Schema{
		Type:     "array",
		MinItems: &n,
		MaxItems: &n,
	}
	for _, name := range names {
		s.PrefixItems = append(s.PrefixItems, &jsonschema.Schema{Type: "string", Title: name})
	}
	return s
}

func resultSchema(c Channel) *jsonschema.Schema {
	switch c {
	case ChannelOpenFolder:
		return &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{{Type: "string"}, {Type: "null"}},
		}
	case ChannelReadFolder:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Ref: nodeRef}}
	case ChannelReadFile:
		return reflectResult(&ReadFileResult{})
	case ChannelCreateFile, ChannelCreateFolder, ChannelRename:
		return reflectResult(&PathResult{})
	default:
		return reflectResult(&Result{})
	}
}

func reflectResult(v any) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)
	s.Version = ""
	return s
}

func nodeSchema() *jsonschema.Schema {
	str := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
	props := jsonschema.NewProperties()
	props.Set("id", str())
	props.Set("name", str())
	props.Set("path", str())
	props.Set("type", &jsonschema.Schema{Type: "string", Enum: []any{"file", "folder"}})
	props.Set("extension", str())
	props.Set("children", &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Ref: nodeRef}})
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{"id", "name", "path", "type"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}
