package config

import (
	"encoding/json"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/osp-containers/materializer/internal/errors"
	"github.com/osp-containers/materializer/internal/target"
)

// AppendSettings configures the append entrypoint (oslo service flavor).
type AppendSettings struct {
	SecretsDir   string `envconfig:"OSLO_SECRETS_DIR" default:"/etc/oslo-secrets"`
	ConfigFile   string `envconfig:"OSLO_CONFIG_FILE"`
	ServiceTable string `envconfig:"OSLO_SERVICE_TABLE"`
	TokenFile    string `envconfig:"OP_TOKEN_FILE" default:"/etc/op-token"`
}

// GenerateSettings configures the oidc entrypoint (web server flavor).
type GenerateSettings struct {
	SecretsDir string `envconfig:"OIDC_SECRETS_DIR" default:"/etc/keystone/oidc"`
	OutputFile string `envconfig:"OIDC_CONFIG_FILE" default:"/tmp/oidc-secrets.conf"`
	HTTPDBin   string `envconfig:"OIDC_HTTPD_BIN" default:"/usr/sbin/httpd"`
	TokenFile  string `envconfig:"OP_TOKEN_FILE" default:"/etc/op-token"`
}

func LoadAppend() (*AppendSettings, error) {
	var s AppendSettings
	if err := envconfig.Process("", &s); err != nil {
		return nil, errors.ConfigError("Reading environment", "Failed to process environment variables", err)
	}
	return &s, nil
}

func LoadGenerate() (*GenerateSettings, error) {
	var s GenerateSettings
	if err := envconfig.Process("", &s); err != nil {
		return nil, errors.ConfigError("Reading environment", "Failed to process environment variables", err)
	}
	return &s, nil
}

// Table returns the service-to-config-path table, extended by the optional
// JSON override file. Override entries take precedence over the built-ins.
func (s *AppendSettings) Table() (target.Table, error) {
	if s.ServiceTable == "" {
		return target.DefaultTable, nil
	}

	data, err := os.ReadFile(s.ServiceTable)
	if err != nil {
		return nil, errors.ConfigError("Loading service table override",
			"Failed to read table file: "+s.ServiceTable, err)
	}

	var override struct {
		Table target.Table `json:"table"`
	}
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, errors.ConfigError("Loading service table override",
			"Failed to parse table file: "+s.ServiceTable, err)
	}

	table := make(target.Table, 0, len(override.Table)+len(target.DefaultTable))
	table = append(table, override.Table...)
	table = append(table, target.DefaultTable...)
	return table, nil
}
