package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with snake_case JSON tags
// and string-friendly durations for the optional config file.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey              string   `json:"token_sign_key"`
		TokenIssuer               string   `json:"token_issuer"`
		AccessTokenDuration       Duration `json:"access_token_duration"`
		RefreshTokenDuration      Duration `json:"refresh_token_duration"`
		VerificationTokenDuration Duration `json:"verification_token_duration"`
		Version                   string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		KV struct {
			DSN string `json:"dsn"`
		} `json:"kv,omitempty"`

		Blob struct {
			Endpoint  string `json:"endpoint"`
			Region    string `json:"region"`
			Bucket    string `json:"bucket"`
			AccessKey string `json:"access_key"`
			SecretKey string `json:"secret_key"`
		} `json:"blob,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Push struct {
		RelayURI        string `json:"relay_uri"`
		IdentityURI     string `json:"identity_uri"`
		InstallationID  string `json:"installation_id"`
		InstallationKey string `json:"installation_key"`
	} `json:"push,omitempty"`

	Mail struct {
		Host     string `json:"smtp_host"`
		Port     int    `json:"smtp_port"`
		From     string `json:"from"`
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"mail,omitempty"`

	Workers struct {
		PruneInterval Duration `json:"prune_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:              jsonCfg.App.TokenSignKey,
			TokenIssuer:               jsonCfg.App.TokenIssuer,
			AccessTokenDuration:       time.Duration(jsonCfg.App.AccessTokenDuration),
			RefreshTokenDuration:      time.Duration(jsonCfg.App.RefreshTokenDuration),
			VerificationTokenDuration: time.Duration(jsonCfg.App.VerificationTokenDuration),
			Version:                   jsonCfg.App.Version,
		},
		Storage: Storage{
			KV: KV{
				DSN: jsonCfg.Storage.KV.DSN,
			},
			Blob: Blob{
				Endpoint:  jsonCfg.Storage.Blob.Endpoint,
				Region:    jsonCfg.Storage.Blob.Region,
				Bucket:    jsonCfg.Storage.Blob.Bucket,
				AccessKey: jsonCfg.Storage.Blob.AccessKey,
				SecretKey: jsonCfg.Storage.Blob.SecretKey,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Push: Push{
			RelayURI:        jsonCfg.Push.RelayURI,
			IdentityURI:     jsonCfg.Push.IdentityURI,
			InstallationID:  jsonCfg.Push.InstallationID,
			InstallationKey: jsonCfg.Push.InstallationKey,
		},
		Mail: Mail{
			Host:     jsonCfg.Mail.Host,
			Port:     jsonCfg.Mail.Port,
			From:     jsonCfg.Mail.From,
			Username: jsonCfg.Mail.Username,
			Password: jsonCfg.Mail.Password,
		},
		Workers: Workers{
			PruneInterval: time.Duration(jsonCfg.Workers.PruneInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
