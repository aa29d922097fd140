package fleetapi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Response schemas only pin down the fields the console dereferences. Unknown
// fields are allowed so server upgrades do not break the console.
const (
	schemaActivities = `{
  "type": "object",
  "required": ["activities"],
  "properties": {
    "activities": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["type", "created_at"],
        "properties": {
          "id": {"type": "integer"},
          "uuid": {"type": "string"},
          "type": {"type": "string"},
          "created_at": {"type": "string"},
          "actor_email": {"type": ["string", "null"]},
          "actor_full_name": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

	schemaAppConfig = `{
  "type": "object",
  "required": ["mdm"],
  "properties": {
    "license": {"type": "object", "properties": {"tier": {"type": "string"}}},
    "mdm": {
      "type": "object",
      "properties": {
        "enabled_and_configured": {"type": "boolean"},
        "windows_enabled_and_configured": {"type": "boolean"}
      }
    }
  }
}`

	schemaTeam = `{
  "type": "object",
  "required": ["team"],
  "properties": {
    "team": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}
    }
  }
}`

	schemaMe = `{
  "type": "object",
  "required": ["user"],
  "properties": {
    "user": {
      "type": "object",
      "required": ["id", "email"],
      "properties": {
        "id": {"type": "integer"},
        "email": {"type": "string"},
        "global_role": {"type": ["string", "null"]},
        "teams": {"type": ["array", "null"]}
      }
    }
  }
}`

	schemaLogin = `{
  "type": "object",
  "required": ["user", "token"],
  "properties": {
    "token": {"type": "string", "minLength": 1},
    "user": {"type": "object", "required": ["id", "email"]}
  }
}`

	schemaHost = `{
  "type": "object",
  "required": ["host"],
  "properties": {
    "host": {
      "type": "object",
      "required": ["id", "platform"],
      "properties": {
        "id": {"type": "integer"},
        "platform": {"type": "string"},
        "team_id": {"type": ["integer", "null"]},
        "policies": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "required": ["id", "name"],
            "properties": {"response": {"type": "string"}}
          }
        }
      }
    }
  }
}`

	schemaSoftwareTitle = `{
  "type": "object",
  "required": ["software_title"],
  "properties": {
    "software_title": {
      "type": "object",
      "required": ["id", "name", "source"],
      "properties": {
        "id": {"type": "integer"},
        "name": {"type": "string"},
        "source": {"type": "string"},
        "hosts_count": {"type": "integer"},
        "versions": {"type": ["array", "null"]},
        "software_package": {"type": ["object", "null"]},
        "app_store_app": {"type": ["object", "null"]}
      }
    }
  }
}`

	schemaQueries = `{
  "type": "object",
  "required": ["queries"],
  "properties": {
    "queries": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string"},
          "team_id": {"type": ["integer", "null"]}
        }
      }
    },
    "count": {"type": "integer"}
  }
}`

	schemaOSVersions = `{
  "type": "object",
  "required": ["os_versions"],
  "properties": {
    "os_versions": {
      "type": ["array", "null"],
      "items": {"type": "object", "required": ["name"]}
    }
  }
}`

	schemaPolicy = `{
  "type": "object",
  "required": ["policy"],
  "properties": {
    "policy": {"type": "object", "required": ["id", "name"]}
  }
}`

	schemaDeletedQueries = `{
  "type": "object",
  "required": ["deleted"],
  "properties": {"deleted": {"type": "integer"}}
}`
)

var compiledSchemas sync.Map // string -> *gojsonschema.Schema

func validatePayload(schema string, body []byte) error {
	compiled, err := loadSchema(schema)
	if err != nil {
		return err
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

func loadSchema(schema string) (*gojsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema); ok {
		return cached.(*gojsonschema.Schema), nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	actual, _ := compiledSchemas.LoadOrStore(schema, compiled)
	return actual.(*gojsonschema.Schema), nil
}
