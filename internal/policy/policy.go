// Package policy loads clients and scope definitions from a YAML file and
// upserts them into the store at startup.
package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mepla/Enchilada/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingClientID     = errors.New("policy: client without client_id")
	ErrMissingClientSecret = errors.New("policy: client without secret")
	ErrMissingScopeName    = errors.New("policy: scope without name")
	ErrEmptyScope          = errors.New("policy: scope without patterns")
)

// Writer is the subset of the store the policy file writes to.
type Writer interface {
	UpsertClient(ctx context.Context, client *models.OAuthClient) error
	UpsertScopeDefinition(ctx context.Context, def *models.ScopeDefinition) error
}

// File is the on-disk document.
//
//	clients:
//	  - client_id: mobile
//	    secret: s3cret
//	    scopes: [self_only]
//	scopes:
//	  - name: self_only
//	    patterns:
//	      - get /users/{self}
type File struct {
	Clients []Client `yaml:"clients"`
	Scopes  []Scope  `yaml:"scopes"`
}

type Client struct {
	ClientID    string   `yaml:"client_id"`
	Secret      string   `yaml:"secret"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Scopes      []string `yaml:"scopes"`
	Disabled    bool     `yaml:"disabled"`
}

type Scope struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Patterns    []string `yaml:"patterns"`
}

// Load reads and validates a policy file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a policy document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) Validate() error {
	for i, c := range f.Clients {
		if strings.TrimSpace(c.ClientID) == "" {
			return fmt.Errorf("%w (entry %d)", ErrMissingClientID, i)
		}
		if c.Secret == "" {
			return fmt.Errorf("%w: %s", ErrMissingClientSecret, c.ClientID)
		}
	}
	for i, s := range f.Scopes {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w (entry %d)", ErrMissingScopeName, i)
		}
		if len(s.Patterns) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyScope, s.Name)
		}
	}
	return nil
}

// Apply upserts every scope, then every client. Client secrets are stored as
// bcrypt hashes.
func (f *File) Apply(ctx context.Context, w Writer) error {
	for _, s := range f.Scopes {
		def := models.NewScopeDefinition(s.Name, s.Description, s.Patterns...)
		if err := w.UpsertScopeDefinition(ctx, def); err != nil {
			return fmt.Errorf("failed to upsert scope %s: %w", s.Name, err)
		}
	}

	for _, c := range f.Clients {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Secret), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash secret for %s: %w", c.ClientID, err)
		}
		name := c.Name
		if name == "" {
			name = c.ClientID
		}
		client := &models.OAuthClient{
			ClientID:     c.ClientID,
			ClientSecret: string(hash),
			ClientName:   name,
			Description:  c.Description,
			Scopes:       strings.Join(c.Scopes, " "),
			IsActive:     !c.Disabled,
		}
		if err := w.UpsertClient(ctx, client); err != nil {
			return fmt.Errorf("failed to upsert client %s: %w", c.ClientID, err)
		}
	}

	log.Printf("[Policy] Applied %d clients and %d scopes", len(f.Clients), len(f.Scopes))
	return nil
}

// LoadAndApply is a no-op for an empty path.
func LoadAndApply(ctx context.Context, path string, w Writer) error {
	if path == "" {
		return nil
	}
	f, err := Load(path)
	if err != nil {
		return err
	}
	return f.Apply(ctx, w)
}
