package blobstore

import "fmt"

// BackendType tags which concrete Store construction to use (spec.md §6).
type BackendType string

const (
	BackendFileSystem   BackendType = "FileSystem"
	BackendS3           BackendType = "S3"
	BackendS3Compatible BackendType = "S3Compatible"
	BackendOss          BackendType = "Oss"
	BackendCos          BackendType = "Cos"
	BackendAzBlob       BackendType = "AzBlob"
)

// redactedValue replaces a sensitive field on read-back through the config
// API (spec.md §6).
const redactedValue = "***"

// BackendConfig is the tagged-union backend configuration read from
// storage_config.json. Exactly the fields relevant to Type are populated;
// the rest are the zero value.
type BackendConfig struct {
	Type BackendType `json:"type"`

	// FileSystem
	RootPath string `json:"root_path,omitempty"`

	// S3 / S3Compatible / Oss / Cos (all four speak the S3 protocol; see
	// New for how each tag maps onto the shared s3Store).
	Bucket          string `json:"bucket,omitempty"`
	Region          string `json:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	AccessKeySecret string `json:"access_key_secret,omitempty"` // Oss
	SecretID        string `json:"secret_id,omitempty"`         // Cos
	SecretKey       string `json:"secret_key,omitempty"`        // Cos

	// AzBlob
	Container   string `json:"container,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	AccountKey  string `json:"account_key,omitempty"`
}

// defaultS3CompatibleRegion is used when S3Compatible omits region
// (spec.md §6).
const defaultS3CompatibleRegion = "us-east-1"

// Validate checks that the required fields for Type are present.
func (c BackendConfig) Validate() error {
	missing := func(fields ...string) error {
		return fmt.Errorf("blobstore: backend %q missing required field(s): %v", c.Type, fields)
	}

	switch c.Type {
	case BackendFileSystem:
		if c.RootPath == "" {
			return missing("root_path")
		}
	case BackendS3:
		if c.Bucket == "" || c.Region == "" || c.AccessKeyID == "" || c.SecretAccessKey == "" {
			return missing("bucket", "region", "access_key_id", "secret_access_key")
		}
	case BackendS3Compatible:
		if c.Bucket == "" || c.Endpoint == "" || c.AccessKeyID == "" || c.SecretAccessKey == "" {
			return missing("bucket", "endpoint", "access_key_id", "secret_access_key")
		}
	case BackendOss:
		if c.Bucket == "" || c.Endpoint == "" || c.AccessKeyID == "" || c.AccessKeySecret == "" {
			return missing("bucket", "endpoint", "access_key_id", "access_key_secret")
		}
	case BackendCos:
		if c.Bucket == "" || c.Endpoint == "" || c.SecretID == "" || c.SecretKey == "" {
			return missing("bucket", "endpoint", "secret_id", "secret_key")
		}
	case BackendAzBlob:
		if c.Container == "" || c.AccountName == "" || c.AccountKey == "" {
			return missing("container", "account_name", "account_key")
		}
	default:
		return fmt.Errorf("blobstore: unknown backend type %q", c.Type)
	}

	return nil
}

// Redacted returns a copy of c with sensitive credential fields replaced by
// "***", suitable for the config Show/read-back path (spec.md §6).
func (c BackendConfig) Redacted() BackendConfig {
	r := c
	if r.AccessKeyID != "" {
		r.AccessKeyID = redactedValue
	}

	if r.SecretAccessKey != "" {
		r.SecretAccessKey = redactedValue
	}

	if r.AccessKeySecret != "" {
		r.AccessKeySecret = redactedValue
	}

	if r.SecretID != "" {
		r.SecretID = redactedValue
	}

	if r.SecretKey != "" {
		r.SecretKey = redactedValue
	}

	if r.AccountKey != "" {
		r.AccountKey = redactedValue
	}

	return r
}

// New builds the concrete Store for c's Type.
func New(c BackendConfig) (Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Type {
	case BackendFileSystem:
		return NewFileSystemStore(c.RootPath)
	case BackendS3:
		return newS3Store(c, false)
	case BackendS3Compatible, BackendOss, BackendCos:
		return newS3Store(c, true)
	case BackendAzBlob:
		return newAzBlobStore(c)
	default:
		return nil, fmt.Errorf("blobstore: unknown backend type %q", c.Type)
	}
}
