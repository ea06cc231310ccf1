package gcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const scopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"

const (
	SourceRawKey    = "GCP_SA_KEY"
	SourceBase64Key = "GCP_SA_KEY_B64"
	SourceADC       = "application_default"
)

var (
	ErrMalformedKey = errors.New("malformed service account key")
	ErrNoProject    = errors.New("gcp project id is not set")
)

// Credentials is what the GCP clients are built from.
type Credentials struct {
	ProjectID string
	Source    string
	Options   []option.ClientOption
}

type keyInfo struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// LoadCredentials resolves credentials in priority order: raw JSON key, base64
// JSON key, Application Default Credentials. A key that is present but cannot be
// decoded is an error; ADC problems surface later when a client is created.
// The project id embedded in a key wins over fallbackProject.
func LoadCredentials(ctx context.Context, rawKey, b64Key, fallbackProject string) (*Credentials, error) {
	var (
		data   []byte
		source string
	)

	switch {
	case strings.TrimSpace(rawKey) != "":
		data, source = []byte(rawKey), SourceRawKey
	case strings.TrimSpace(b64Key) != "":
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64Key))
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not valid base64: %v", ErrMalformedKey, SourceBase64Key, err)
		}
		data, source = decoded, SourceBase64Key
	default:
		if fallbackProject == "" {
			return nil, ErrNoProject
		}
		return &Credentials{ProjectID: fallbackProject, Source: SourceADC}, nil
	}

	info, err := parseKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedKey, source, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopeCloudPlatform)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedKey, source, err)
	}

	projectID := fallbackProject
	if info.ProjectID != "" {
		projectID = info.ProjectID
	}
	if projectID == "" {
		return nil, ErrNoProject
	}

	return &Credentials{
		ProjectID: projectID,
		Source:    source,
		Options:   []option.ClientOption{option.WithCredentials(creds)},
	}, nil
}

func parseKey(data []byte) (keyInfo, error) {
	var info keyInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return keyInfo{}, err
	}
	if info.Type == "" {
		return keyInfo{}, errors.New(`key has no "type" field`)
	}
	return info, nil
}
